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

const cBioPortalAPI = "cbioportal"

// CBioPortalClient pulls tumor mutation occurrence data from the public
// cBioPortal instance. Variant results use it to report how often a protein
// change is seen across the curated MSK-IMPACT cohort.
type CBioPortalClient struct {
	h    *httpx.Client
	base string
	ttl  TTLs
}

const (
	cbioStudyID          = "msk_impact_2017"
	cbioMutationProfile  = cbioStudyID + "_mutations"
	cbioSampleList       = cbioStudyID + "_all"
	cbioMaxMutationsPage = 1000
)

// GeneID resolves a Hugo symbol to its Entrez ID via the cBioPortal gene
// table.
func (c *CBioPortalClient) GeneID(ctx context.Context, symbol string) (int64, error) {
	var gene struct {
		EntrezGeneID int64  `json:"entrezGeneId"`
		HugoSymbol   string `json:"hugoGeneSymbol"`
	}
	status, err := c.h.GetJSONStatus(ctx, cBioPortalAPI,
		c.base+"/genes/"+url.PathEscape(strings.TrimSpace(symbol)),
		nil, c.ttl.Annotation, &gene)
	if status == 404 {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return gene.EntrezGeneID, nil
}

// Mutations lists mutation rows for a gene in the default cohort. The rows
// are loose JSON; callers aggregate proteinChange counts.
func (c *CBioPortalClient) Mutations(ctx context.Context, entrezGeneID int64) ([]gjson.Result, error) {
	q := url.Values{}
	q.Set("sampleListId", cbioSampleList)
	q.Set("entrezGeneId", strconv.FormatInt(entrezGeneID, 10))
	q.Set("projection", "SUMMARY")
	q.Set("pageSize", itoa(cbioMaxMutationsPage))

	resp, err := c.h.Do(ctx, httpx.Request{
		API:      cBioPortalAPI,
		URL:      c.base + "/molecular-profiles/" + cbioMutationProfile + "/mutations",
		Query:    q,
		CacheTTL: c.ttl.Annotation,
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == 404 {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.NewAPIError(cBioPortalAPI, "HTTP %d: %s", resp.StatusCode, httpx.BodyExcerpt(resp.Body))
	}
	if !gjson.ValidBytes(resp.Body) {
		return nil, domain.NewAPIError(cBioPortalAPI, "invalid JSON response")
	}
	return gjson.ParseBytes(resp.Body).Array(), nil
}

// MutationSummary counts cohort occurrences of one protein change for a gene.
// Matching is case-insensitive on the normalized change (V600E, not p.V600E).
func (c *CBioPortalClient) MutationSummary(ctx context.Context, symbol, proteinChange string) (total, matching int, err error) {
	entrez, err := c.GeneID(ctx, symbol)
	if err != nil || entrez == 0 {
		return 0, 0, err
	}
	rows, err := c.Mutations(ctx, entrez)
	if err != nil {
		return 0, 0, err
	}
	want := strings.ToLower(strings.TrimSpace(proteinChange))
	for _, row := range rows {
		total++
		if want != "" && strings.ToLower(row.Get("proteinChange").String()) == want {
			matching++
		}
	}
	return total, matching, nil
}
