// Package venueclient implements the uniform REST surface (place
// order, cancel order, get order, get balance, withdraw) against all
// four venues, satisfying executor.Client, recovery.OrderPlacer, and
// transfer.VenueClient with real HTTP calls authenticated the way each
// venue's REST auth style (internal/auth) requires.
package venueclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/s2ungeda/kac/internal/errkind"
	"github.com/s2ungeda/kac/pkg/ratelimiter"
)

// DefaultTimeout bounds a single REST round trip.
const DefaultTimeout = 10 * time.Second

// restClient is the shared HTTP plumbing every venue client embeds:
// a base URL, an http.Client, and a per-venue rate limiter. It knows
// nothing about authentication — each venue signs its own requests
// before handing them to do().
type restClient struct {
	baseURL string
	http    *http.Client
	limiter *ratelimiter.Limiter
}

func newRestClient(baseURL string, limiter *ratelimiter.Limiter) restClient {
	return restClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
		limiter: limiter,
	}
}

// do issues method against path with the given query string already
// encoded (may be empty), an optional body, and headers, returning the
// raw response body on any 2xx status. Non-2xx responses and transport
// failures are classified into kac.Error kinds.
func (c restClient) do(ctx context.Context, method, path, rawQuery string, body io.Reader, headers map[string]string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.AcquireFor(ctx, 1); err != nil {
			return nil, errkind.RateLimited("rate limit wait canceled", err)
		}
	}

	u := c.baseURL + path
	if rawQuery != "" {
		u += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, errkind.InvalidRequest("build request", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errkind.Network("rest call failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errkind.Network("read response body", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, errkind.Auth(fmt.Sprintf("venue rejected credentials (status %d)", resp.StatusCode), fmt.Errorf("%s", data))
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errkind.RateLimited("venue rate limit hit", fmt.Errorf("%s", data))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errkind.Exchange(fmt.Sprintf("venue returned status %d", resp.StatusCode), fmt.Errorf("%s", data))
	}

	return data, nil
}

func decodeJSON(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return errkind.Parse("decode venue response", err)
	}
	return nil
}

func formEncode(values url.Values) io.Reader {
	return bytes.NewBufferString(values.Encode())
}
