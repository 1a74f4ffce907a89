package search

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kirillkom/vendor-finder/internal/infrastructure/resilience"
)

// DefaultTimeout bounds a single provider request.
const DefaultTimeout = 10 * time.Second

const maxResponseBytes = 4 << 20

// FetchBody executes req and returns the body of a 2xx response.
// Non-2xx responses become *resilience.HTTPStatusError so the executor can classify them.
func FetchBody(client *http.Client, req *http.Request, provider string) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s search request: %w", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, resilience.NewHTTPStatusError(provider, "search", resp)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s search response: %w", provider, err)
	}
	return body, nil
}
