package websocket

import (
	"testing"

	"github.com/Pei01/updown-collector/internal/price"
)

func TestMillisUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Millis
		wantErr bool
	}{
		{"quoted", `"1700000005000"`, 1700000005000, false},
		{"raw number", `1700000005000`, 1700000005000, false},
		{"null", `null`, 0, false},
		{"empty string", `""`, 0, false},
		{"garbage", `"soon"`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Millis
			err := got.UnmarshalJSON([]byte(tt.input))

			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr = %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseBook(t *testing.T) {
	raw := []byte(`{
		"event_type": "book",
		"asset_id": "111",
		"timestamp": "1700000005000",
		"bids": [{"price": "0.62", "size": "10"}, {"price": "0.60", "size": "5"}],
		"asks": [{"price": "0.63", "size": "7"}]
	}`)

	book, ok := ParseBook(raw)
	if !ok {
		t.Fatal("expected a book event")
	}
	if book.AssetID != "111" {
		t.Errorf("asset id = %q", book.AssetID)
	}
	if book.Timestamp != 1700000005000 {
		t.Errorf("timestamp = %d", book.Timestamp)
	}
	if len(book.Bids) != 2 {
		t.Fatalf("bids = %d, want 2", len(book.Bids))
	}
	if book.Bids[0].Price != price.Price(620_000) || book.Bids[0].Size != price.Size(10_000_000) {
		t.Errorf("best bid = %d/%d", book.Bids[0].Price, book.Bids[0].Size)
	}
}

func TestParseBookIgnored(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"initial dump array", `[{"event_type":"book","asset_id":"111"}]`},
		{"other event type", `{"event_type":"price_change","asset_id":"111"}`},
		{"empty frame", ``},
		{"whitespace", `   `},
		{"malformed json", `{"event_type":"book",`},
		{"plain text", `pong`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := ParseBook([]byte(tt.raw)); ok {
				t.Errorf("frame %q should have been ignored", tt.raw)
			}
		})
	}
}
