package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

type payload struct {
	Name string `json:"name"`
}

func TestGetResource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte(`{"name":"hello"}`))
		case "/bad-json":
			w.Write([]byte(`{`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	t.Run("decodes resource", func(t *testing.T) {
		got, err := GetResource[*payload](context.Background(), srv.Client(), srv.URL, "/ok", []int{200})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Name != "hello" {
			t.Errorf("name = %q, want hello", got.Name)
		}
	})

	t.Run("unexpected status", func(t *testing.T) {
		if _, err := GetResource[*payload](context.Background(), srv.Client(), srv.URL, "/missing", []int{200}); err == nil {
			t.Error("expected error for 404")
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		if _, err := GetResource[*payload](context.Background(), srv.Client(), srv.URL, "/bad-json", []int{200}); err == nil {
			t.Error("expected error for malformed body")
		}
	})
}
