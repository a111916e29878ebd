package sources

import (
	"context"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/httpx"
)

const monarchAPI = "monarch"

// MonarchClient queries the Monarch Initiative knowledge graph for disease
// and phenotype records.
type MonarchClient struct {
	h    *httpx.Client
	base string
	ttl  TTLs
}

func (c *MonarchClient) parse(resp *httpx.Response, entity, id string, suggestion string) (gjson.Result, error) {
	if resp.StatusCode == 404 && entity != "" {
		return gjson.Result{}, domain.NewNotFound(entity, id, suggestion)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, domain.NewAPIError(monarchAPI, "HTTP %d: %s", resp.StatusCode, httpx.BodyExcerpt(resp.Body))
	}
	if !gjson.ValidBytes(resp.Body) {
		return gjson.Result{}, domain.NewAPIError(monarchAPI, "invalid JSON response")
	}
	return gjson.ParseBytes(resp.Body), nil
}

// Search runs a category-scoped entity search. Category is a biolink class
// name such as biolink:Disease or biolink:PhenotypicFeature.
func (c *MonarchClient) Search(ctx context.Context, query, category string, limit, offset int) (gjson.Result, error) {
	q := url.Values{}
	q.Set("q", strings.TrimSpace(query))
	if category != "" {
		q.Set("category", category)
	}
	q.Set("limit", itoa(limit))
	q.Set("offset", itoa(offset))

	resp, err := c.h.Do(ctx, httpx.Request{
		API:      monarchAPI,
		URL:      c.base + "/search",
		Query:    q,
		CacheTTL: c.ttl.Search,
	})
	if err != nil {
		return gjson.Result{}, err
	}
	return c.parse(resp, "", "", "")
}

// GetEntity fetches one node by CURIE (MONDO:..., HP:..., DOID:...).
func (c *MonarchClient) GetEntity(ctx context.Context, curie string) (gjson.Result, error) {
	id := strings.TrimSpace(curie)
	resp, err := c.h.Do(ctx, httpx.Request{
		API:      monarchAPI,
		URL:      c.base + "/entity/" + url.PathEscape(id),
		CacheTTL: c.ttl.Annotation,
	})
	if err != nil {
		return gjson.Result{}, err
	}
	return c.parse(resp, "disease", id, "Try searching: biomcp search disease -q "+id)
}

// Associations lists graph edges touching an entity, filtered by biolink
// association category when given.
func (c *MonarchClient) Associations(ctx context.Context, curie, category string, limit int) (gjson.Result, error) {
	q := url.Values{}
	q.Set("entity", strings.TrimSpace(curie))
	if category != "" {
		q.Set("category", category)
	}
	q.Set("limit", itoa(limit))

	resp, err := c.h.Do(ctx, httpx.Request{
		API:      monarchAPI,
		URL:      c.base + "/association",
		Query:    q,
		CacheTTL: c.ttl.Annotation,
	})
	if err != nil {
		return gjson.Result{}, err
	}
	return c.parse(resp, "", "", "")
}
