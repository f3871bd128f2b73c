// Package gamma consumes Polymarket gamma catalog endpoints.
package gamma

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/Pei01/updown-collector/pkg/httpclient"
)

const requestTimeout = 5 * time.Second

type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// New creates a catalog client. Requests are rate limited so rotation
// retries can't hammer the API before a market is listed.
func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(2), 1),
	}
}

// TokenIDs handles the double-encoded JSON array from the API.
type TokenIDs []string

func (t *TokenIDs) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return json.Unmarshal([]byte(s), (*[]string)(t))
}

type Market struct {
	ID           string   `json:"id"`
	Question     string   `json:"question"`
	Slug         string   `json:"slug"`
	Outcomes     string   `json:"outcomes"` // JSON-encoded array of label strings
	ClobTokenIDs TokenIDs `json:"clobTokenIds"`
}

func (c *Client) GetMarketBySlug(ctx context.Context, slug string) (*Market, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return httpclient.GetResource[*Market](ctx, c.httpClient, c.baseURL, "/markets/slug/"+slug, []int{200})
}
