package gamma

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTokenIDsUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"double encoded pair", `"[\"111\", \"222\"]"`, []string{"111", "222"}, false},
		{"empty array", `"[]"`, []string{}, false},
		{"not a string", `[1, 2]`, nil, true},
		{"inner not json", `"oops"`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got TokenIDs
			err := json.Unmarshal([]byte(tt.input), &got)

			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr = %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestGetMarketBySlug(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets/slug/btc-updown-15m-1700000000" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		io.WriteString(w, `{
			"id": "42",
			"question": "Bitcoin Up or Down?",
			"slug": "btc-updown-15m-1700000000",
			"outcomes": "[\"Up\", \"Down\"]",
			"clobTokenIds": "[\"111\", \"222\"]"
		}`)
	}))
	defer srv.Close()

	c := New(srv.URL)

	m, err := c.GetMarketBySlug(context.Background(), "btc-updown-15m-1700000000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Question != "Bitcoin Up or Down?" {
		t.Errorf("question = %q", m.Question)
	}
	if len(m.ClobTokenIDs) != 2 || m.ClobTokenIDs[0] != "111" || m.ClobTokenIDs[1] != "222" {
		t.Errorf("token ids = %v", m.ClobTokenIDs)
	}

	if _, err := c.GetMarketBySlug(context.Background(), "unknown-slug"); err == nil {
		t.Error("expected error for unknown slug")
	}
}
