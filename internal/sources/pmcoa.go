package sources

import (
	"context"
	"net/url"
	"strings"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/httpx"
)

const pmcOAAPI = "pmc_oa"

// PMCOAClient fetches open-access full text from the NCBI BioNLP PMC-OA
// service. It is the fallback when Europe PMC does not serve the XML.
type PMCOAClient struct {
	h    *httpx.Client
	base string
	ttl  TTLs
}

// FullTextXML downloads the BioC XML for a PMC article.
func (c *PMCOAClient) FullTextXML(ctx context.Context, pmcid string) ([]byte, error) {
	pmcid = strings.TrimSpace(pmcid)
	resp, err := c.h.Do(ctx, httpx.Request{
		API:      pmcOAAPI,
		URL:      c.base + "/BioC_xml/" + url.PathEscape(pmcid) + "/unicode",
		Header:   map[string][]string{"Accept": {"application/xml"}},
		CacheTTL: c.ttl.Annotation,
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == 404 {
		return nil, domain.NewNotFound("fulltext", pmcid, "Article not in PubMed Central")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.NewAPIError(pmcOAAPI, "HTTP %d: %s", resp.StatusCode, httpx.BodyExcerpt(resp.Body))
	}
	return resp.Body, nil
}
