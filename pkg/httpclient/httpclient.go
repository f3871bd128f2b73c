// Package httpclient provides small helpers shared by the REST API clients.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
)

// GetResource performs a GET against baseURL+endpoint and decodes the JSON
// response into T. Any status code outside okStatuses is an error.
func GetResource[T any](ctx context.Context, client *http.Client, baseURL, endpoint string, okStatuses []int) (T, error) {
	var zero T

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+endpoint, nil)
	if err != nil {
		return zero, fmt.Errorf("couldn't create request for %s: %w", endpoint, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return zero, fmt.Errorf("couldn't get %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if !slices.Contains(okStatuses, resp.StatusCode) {
		return zero, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, endpoint)
	}

	var resource T
	if err := json.NewDecoder(resp.Body).Decode(&resource); err != nil {
		return zero, fmt.Errorf("couldn't decode %s response: %w", endpoint, err)
	}

	return resource, nil
}
