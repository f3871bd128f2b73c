package websocket

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Pei01/updown-collector/internal/price"
)

const BookEvent = "book"

// Millis is a feed-side epoch-milliseconds timestamp that arrives either
// quoted or as a raw number.
type Millis int64

func (m *Millis) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("couldn't parse timestamp: %w", err)
	}
	*m = Millis(v)
	return nil
}

type OrderSummary struct {
	Price price.Price `json:"price"`
	Size  price.Size  `json:"size"`
}

// Book is an order book update event.
type Book struct {
	EventType string         `json:"event_type"`
	AssetID   string         `json:"asset_id"`
	Market    string         `json:"market"`
	Timestamp Millis         `json:"timestamp"`
	Bids      []OrderSummary `json:"bids"`
	Asks      []OrderSummary `json:"asks"`
}

// ParseBook extracts a book event from a raw feed frame. Array frames
// (initial dumps), other event types and malformed payloads are expected on
// the stream and simply yield false.
func ParseBook(raw []byte) (*Book, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}

	var book Book
	if err := json.Unmarshal(trimmed, &book); err != nil {
		return nil, false
	}
	if book.EventType != BookEvent {
		return nil, false
	}
	return &book, true
}
