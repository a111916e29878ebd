package sources

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/httpx"
)

const oncoKBAPI = "oncokb"

// OncoKBClient annotates variants against the OncoKB precision oncology
// knowledge base. Access requires a license token; calls fail with a remedy
// message when none is configured.
type OncoKBClient struct {
	h     *httpx.Client
	base  string
	ttl   TTLs
	token string
}

// HasToken reports whether a token is configured. Callers use it to skip the
// OncoKB section instead of surfacing an error in optional enrichment paths.
func (c *OncoKBClient) HasToken() bool { return strings.TrimSpace(c.token) != "" }

func (c *OncoKBClient) requireToken() error {
	if !c.HasToken() {
		return domain.NewInvalidArgument("OncoKB requires an API token. Set BIOMCP_ONCOKB_TOKEN (see https://www.oncokb.org/apiAccess).")
	}
	return nil
}

// AnnotateProteinChange annotates one gene/alteration pair, e.g. BRAF V600E.
func (c *OncoKBClient) AnnotateProteinChange(ctx context.Context, hugoSymbol, alteration string) (gjson.Result, error) {
	if err := c.requireToken(); err != nil {
		return gjson.Result{}, err
	}

	q := url.Values{}
	q.Set("hugoSymbol", strings.TrimSpace(hugoSymbol))
	q.Set("alteration", strings.TrimSpace(alteration))
	q.Set("referenceGenome", "GRCh38")

	resp, err := c.h.Do(ctx, httpx.Request{
		API:      oncoKBAPI,
		URL:      c.base + "/annotate/mutations/byProteinChange",
		Query:    q,
		Header:   http.Header{"Authorization": []string{"Bearer " + c.token}},
		CacheTTL: c.ttl.Annotation,
	})
	if err != nil {
		return gjson.Result{}, err
	}
	if resp.StatusCode == 401 || resp.StatusCode == 403 {
		return gjson.Result{}, domain.NewInvalidArgument("OncoKB rejected the configured token. Check BIOMCP_ONCOKB_TOKEN.")
	}
	if resp.StatusCode == 404 {
		return gjson.Result{}, domain.NewNotFound("variant", hugoSymbol+" "+alteration,
			"Try searching: biomcp search variant -g "+strings.TrimSpace(hugoSymbol))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, domain.NewAPIError(oncoKBAPI, "HTTP %d: %s", resp.StatusCode, httpx.BodyExcerpt(resp.Body))
	}
	if !gjson.ValidBytes(resp.Body) {
		return gjson.Result{}, domain.NewAPIError(oncoKBAPI, "invalid JSON response")
	}
	return gjson.ParseBytes(resp.Body), nil
}

// CuratedGenes lists the OncoKB curated gene set.
func (c *OncoKBClient) CuratedGenes(ctx context.Context) (gjson.Result, error) {
	if err := c.requireToken(); err != nil {
		return gjson.Result{}, err
	}
	resp, err := c.h.Do(ctx, httpx.Request{
		API:      oncoKBAPI,
		URL:      c.base + "/utils/allCuratedGenes",
		Header:   http.Header{"Authorization": []string{"Bearer " + c.token}},
		CacheTTL: c.ttl.Annotation,
	})
	if err != nil {
		return gjson.Result{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, domain.NewAPIError(oncoKBAPI, "HTTP %d: %s", resp.StatusCode, httpx.BodyExcerpt(resp.Body))
	}
	if !gjson.ValidBytes(resp.Body) {
		return gjson.Result{}, domain.NewAPIError(oncoKBAPI, "invalid JSON response")
	}
	return gjson.ParseBytes(resp.Body), nil
}
