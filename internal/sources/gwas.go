package sources

import (
	"context"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/httpx"
)

const gwasAPI = "gwas"

// GWASCatalogClient queries the NHGRI-EBI GWAS Catalog REST API for trait
// associations.
type GWASCatalogClient struct {
	h    *httpx.Client
	base string
	ttl  TTLs
}

func (c *GWASCatalogClient) get(ctx context.Context, path string, q url.Values) (gjson.Result, error) {
	resp, err := c.h.Do(ctx, httpx.Request{
		API:      gwasAPI,
		URL:      c.base + path,
		Query:    q,
		CacheTTL: c.ttl.Search,
	})
	if err != nil {
		return gjson.Result{}, err
	}
	// The catalog answers unknown rsIDs and genes with 404.
	if resp.StatusCode == 404 {
		return gjson.Result{}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, domain.NewAPIError(gwasAPI, "HTTP %d: %s", resp.StatusCode, httpx.BodyExcerpt(resp.Body))
	}
	if !gjson.ValidBytes(resp.Body) {
		return gjson.Result{}, domain.NewAPIError(gwasAPI, "invalid JSON response")
	}
	return gjson.ParseBytes(resp.Body), nil
}

// AssociationsByGene lists associations for all SNPs mapped to a gene symbol.
func (c *GWASCatalogClient) AssociationsByGene(ctx context.Context, symbol string, size int) (gjson.Result, error) {
	q := url.Values{}
	q.Set("geneName", strings.TrimSpace(symbol))
	q.Set("size", itoa(size))
	return c.get(ctx, "/associations/search/findByGene", q)
}

// AssociationsByRsID lists associations for one SNP.
func (c *GWASCatalogClient) AssociationsByRsID(ctx context.Context, rsID string, size int) (gjson.Result, error) {
	q := url.Values{}
	q.Set("size", itoa(size))
	return c.get(ctx, "/singleNucleotidePolymorphisms/"+url.PathEscape(strings.TrimSpace(rsID))+"/associations", q)
}

// TraitForAssociation resolves the EFO trait linked to an association. The
// association feed carries traits only as HAL links, so this is a second hop.
func (c *GWASCatalogClient) TraitForAssociation(ctx context.Context, traitHref string) (gjson.Result, error) {
	if traitHref == "" {
		return gjson.Result{}, nil
	}
	if _, err := url.Parse(traitHref); err != nil {
		return gjson.Result{}, domain.NewAPIError(gwasAPI, "bad trait link: %v", err)
	}
	resp, err := c.h.Do(ctx, httpx.Request{
		API:      gwasAPI,
		URL:      traitHref,
		CacheTTL: c.ttl.Annotation,
	})
	if err != nil {
		return gjson.Result{}, err
	}
	if resp.StatusCode == 404 {
		return gjson.Result{}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, domain.NewAPIError(gwasAPI, "HTTP %d: %s", resp.StatusCode, httpx.BodyExcerpt(resp.Body))
	}
	if !gjson.ValidBytes(resp.Body) {
		return gjson.Result{}, domain.NewAPIError(gwasAPI, "invalid JSON response")
	}
	return gjson.ParseBytes(resp.Body), nil
}
