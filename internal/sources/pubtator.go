package sources

import (
	"context"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/httpx"
)

const pubTatorAPI = "pubtator3"

// PubTatorClient queries the PubTator3 API for entity-annotated article
// payloads.
type PubTatorClient struct {
	h    *httpx.Client
	base string
	ttl  TTLs
}

// ExportBioCJSON fetches the BioC-JSON export for one PMID. The raw document
// and the HTTP status are both returned: PubTator3 answers 400 or 404 for
// PMIDs it has not indexed yet, which callers treat as a fallback trigger,
// not a hard failure.
func (c *PubTatorClient) ExportBioCJSON(ctx context.Context, pmid string) (gjson.Result, int, error) {
	q := url.Values{}
	q.Set("pmids", strings.TrimSpace(pmid))

	resp, err := c.h.Do(ctx, httpx.Request{
		API:      pubTatorAPI,
		URL:      c.base + "/publications/export/biocjson",
		Query:    q,
		CacheTTL: c.ttl.Annotation,
	})
	if err != nil {
		return gjson.Result{}, 0, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, resp.StatusCode,
			domain.NewAPIError(pubTatorAPI, "HTTP %d: %s", resp.StatusCode, httpx.BodyExcerpt(resp.Body))
	}
	if !gjson.ValidBytes(resp.Body) {
		return gjson.Result{}, resp.StatusCode, domain.NewAPIError(pubTatorAPI, "invalid JSON response")
	}
	return gjson.ParseBytes(resp.Body), resp.StatusCode, nil
}

// IsLagError reports whether err is the known PubTator3 indexing-lag shape: a
// 400 or 404 for a PMID that exists but has not been annotated yet.
func IsLagError(status int, err error) bool {
	if err == nil {
		return false
	}
	if _, ok := domain.IsAPIError(err); !ok {
		return false
	}
	return status == 400 || status == 404
}

// Search runs a PubTator3 free-text/entity search page.
func (c *PubTatorClient) Search(ctx context.Context, text string, page int) (gjson.Result, error) {
	q := url.Values{}
	q.Set("text", text)
	q.Set("page", itoa(page))

	resp, err := c.h.Do(ctx, httpx.Request{
		API:      pubTatorAPI,
		URL:      c.base + "/search/",
		Query:    q,
		CacheTTL: c.ttl.Search,
	})
	if err != nil {
		return gjson.Result{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, domain.NewAPIError(pubTatorAPI, "HTTP %d: %s", resp.StatusCode, httpx.BodyExcerpt(resp.Body))
	}
	if !gjson.ValidBytes(resp.Body) {
		return gjson.Result{}, domain.NewAPIError(pubTatorAPI, "invalid JSON response")
	}
	return gjson.ParseBytes(resp.Body), nil
}
