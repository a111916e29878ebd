package sources

import (
	"context"
	"net/url"
	"strings"

	"github.com/biomcp/biomcp/internal/httpx"
)

const idConvAPI = "idconv"

// IDConvClient wraps the NCBI PMC ID converter, used to resolve PMIDs to
// PMCIDs (and back) before full-text fetches.
type IDConvClient struct {
	h      *httpx.Client
	base   string
	ttl    TTLs
	apiKey string
}

// IDConvRecord is one converted identifier row.
type IDConvRecord struct {
	PMID   string `json:"pmid"`
	PMCID  string `json:"pmcid"`
	DOI    string `json:"doi"`
	Status string `json:"status"`
}

type idConvResponse struct {
	Records []IDConvRecord `json:"records"`
}

// Convert resolves up to 200 identifiers in one call.
func (c *IDConvClient) Convert(ctx context.Context, ids []string) ([]IDConvRecord, error) {
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("format", "json")
	q.Set("tool", "biomcp")
	if c.apiKey != "" {
		q.Set("api_key", c.apiKey)
	}

	var resp idConvResponse
	if err := c.h.GetJSON(ctx, idConvAPI, c.base+"/", q, c.ttl.Annotation, &resp); err != nil {
		return nil, err
	}
	return resp.Records, nil
}

// PMCIDForPMID returns the PMCID for one PMID, empty when the article is not
// in PubMed Central.
func (c *IDConvClient) PMCIDForPMID(ctx context.Context, pmid string) (string, error) {
	records, err := c.Convert(ctx, []string{strings.TrimSpace(pmid)})
	if err != nil {
		return "", err
	}
	for _, r := range records {
		if v := strings.TrimSpace(r.PMCID); v != "" {
			return v, nil
		}
	}
	return "", nil
}
