package sources

import (
	"context"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/httpx"
)

const openFDAAPI = "openfda"

// OpenFDAClient covers the openFDA drug endpoints: adverse events, product
// labels, Drugs@FDA approvals, and shortages.
type OpenFDAClient struct {
	h    *httpx.Client
	base string
	ttl  TTLs
}

func (c *OpenFDAClient) query(ctx context.Context, path string, q url.Values) (gjson.Result, error) {
	resp, err := c.h.Do(ctx, httpx.Request{
		API:      openFDAAPI,
		URL:      c.base + path,
		Query:    q,
		CacheTTL: c.ttl.Search,
	})
	if err != nil {
		return gjson.Result{}, err
	}
	// openFDA answers an empty result set with a 404 NOT_FOUND envelope
	// rather than results:[].
	if resp.StatusCode == 404 {
		return gjson.Result{}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, domain.NewAPIError(openFDAAPI, "HTTP %d: %s", resp.StatusCode, httpx.BodyExcerpt(resp.Body))
	}
	if !gjson.ValidBytes(resp.Body) {
		return gjson.Result{}, domain.NewAPIError(openFDAAPI, "invalid JSON response")
	}
	return gjson.ParseBytes(resp.Body), nil
}

// AdverseEvents searches FAERS case reports.
func (c *OpenFDAClient) AdverseEvents(ctx context.Context, search string, limit, skip int) (gjson.Result, error) {
	q := url.Values{}
	q.Set("search", search)
	q.Set("limit", itoa(limit))
	if skip > 0 {
		q.Set("skip", itoa(skip))
	}
	return c.query(ctx, "/drug/event.json", q)
}

// AdverseEventCounts aggregates FAERS reports over one field, typically
// patient.reaction.reactionmeddrapt.exact.
func (c *OpenFDAClient) AdverseEventCounts(ctx context.Context, search, countField string, limit int) (gjson.Result, error) {
	q := url.Values{}
	q.Set("search", search)
	q.Set("count", countField)
	q.Set("limit", itoa(limit))
	return c.query(ctx, "/drug/event.json", q)
}

// Labels searches structured product labels.
func (c *OpenFDAClient) Labels(ctx context.Context, search string, limit int) (gjson.Result, error) {
	q := url.Values{}
	q.Set("search", search)
	q.Set("limit", itoa(limit))
	return c.query(ctx, "/drug/label.json", q)
}

// DrugsFDA searches approval records in Drugs@FDA.
func (c *OpenFDAClient) DrugsFDA(ctx context.Context, search string, limit int) (gjson.Result, error) {
	q := url.Values{}
	q.Set("search", search)
	q.Set("limit", itoa(limit))
	return c.query(ctx, "/drug/drugsfda.json", q)
}

// Shortages searches the drug shortage feed.
func (c *OpenFDAClient) Shortages(ctx context.Context, search string, limit int) (gjson.Result, error) {
	q := url.Values{}
	q.Set("search", search)
	q.Set("limit", itoa(limit))
	return c.query(ctx, "/drug/shortages.json", q)
}
