package sources

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/httpx"
)

const enrichrAPI = "enrichr"

// EnrichrClient wraps the two-step Enrichr flow: upload a gene list, then
// query it against one or more libraries.
type EnrichrClient struct {
	h    *httpx.Client
	base string
	ttl  TTLs
}

// AddList uploads a gene list and returns the user list ID.
func (c *EnrichrClient) AddList(ctx context.Context, genes []string) (int64, error) {
	form := url.Values{}
	form.Set("list", strings.Join(genes, "\n"))
	form.Set("description", "biomcp gene enrichment")

	var resp struct {
		UserListID int64 `json:"userListId"`
	}
	if err := c.h.PostForm(ctx, enrichrAPI, c.base+"/addList", form, &resp); err != nil {
		return 0, err
	}
	if resp.UserListID == 0 {
		return 0, domain.NewAPIError(enrichrAPI, "addList returned no userListId")
	}
	return resp.UserListID, nil
}

// Enrich queries a previously uploaded list against one library. The raw
// payload is returned because Enrichr encodes rows as positional arrays
// keyed by library name.
func (c *EnrichrClient) Enrich(ctx context.Context, listID int64, library string) (gjson.Result, error) {
	q := url.Values{}
	q.Set("userListId", strconv.FormatInt(listID, 10))
	q.Set("backgroundType", library)

	resp, err := c.h.Do(ctx, httpx.Request{
		API:   enrichrAPI,
		URL:   c.base + "/enrich",
		Query: q,
	})
	if err != nil {
		return gjson.Result{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, domain.NewAPIError(enrichrAPI, "HTTP %d: %s", resp.StatusCode, httpx.BodyExcerpt(resp.Body))
	}
	if !gjson.ValidBytes(resp.Body) {
		return gjson.Result{}, domain.NewAPIError(enrichrAPI, "invalid JSON response")
	}
	return gjson.ParseBytes(resp.Body), nil
}
