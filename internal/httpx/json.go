package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/biomcp/biomcp/internal/domain"
)

// DecodeJSON converts a Response into out, producing the flat error taxonomy:
// non-2xx becomes APIError with a body excerpt, a 2xx body that fails to
// parse becomes APIJSONError.
func DecodeJSON(api string, resp *Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.NewAPIError(api, "HTTP %d: %s", resp.StatusCode, BodyExcerpt(resp.Body))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &domain.APIJSONError{API: api, Err: err}
	}
	return nil
}

// GetJSON is the common GET-and-decode path for source clients.
func (c *Client) GetJSON(ctx context.Context, api, rawURL string, query url.Values, ttl time.Duration, out any) error {
	resp, err := c.Do(ctx, Request{API: api, URL: rawURL, Query: query, CacheTTL: ttl})
	if err != nil {
		return err
	}
	return DecodeJSON(api, resp, out)
}

// GetJSONStatus is GetJSON for callers that must branch on specific statuses
// (e.g. 404 → NotFound, PubTator3 indexing lag). It returns the status code
// alongside the decode error.
func (c *Client) GetJSONStatus(ctx context.Context, api, rawURL string, query url.Values, ttl time.Duration, out any) (int, error) {
	resp, err := c.Do(ctx, Request{API: api, URL: rawURL, Query: query, CacheTTL: ttl})
	if err != nil {
		return 0, err
	}
	return resp.StatusCode, DecodeJSON(api, resp, out)
}

// PostJSON sends a JSON body and decodes a JSON response. POSTs are never
// cached.
func (c *Client) PostJSON(ctx context.Context, api, rawURL string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return domain.NewAPIError(api, "failed to encode request body: %v", err)
	}
	resp, err := c.Do(ctx, Request{
		API:    api,
		Method: http.MethodPost,
		URL:    rawURL,
		Body:   raw,
		Header: http.Header{"Content-Type": []string{"application/json"}},
	})
	if err != nil {
		return err
	}
	return DecodeJSON(api, resp, out)
}

// PostForm sends a url-encoded form and decodes a JSON response.
func (c *Client) PostForm(ctx context.Context, api, rawURL string, form url.Values, out any) error {
	resp, err := c.Do(ctx, Request{
		API:    api,
		Method: http.MethodPost,
		URL:    rawURL,
		Body:   []byte(form.Encode()),
		Header: http.Header{"Content-Type": []string{"application/x-www-form-urlencoded"}},
	})
	if err != nil {
		return err
	}
	return DecodeJSON(api, resp, out)
}
