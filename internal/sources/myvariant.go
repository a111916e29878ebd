package sources

import (
	"context"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/httpx"
)

const myVariantAPI = "myvariant"

// myVariantFields is the superset of fields the variant transforms read,
// covering dbSNP, ClinVar, gnomAD, CADD, dbNSFP, COSMIC, and CGI blocks.
const myVariantFields = "dbsnp,clinvar,gnomad_genome.af,gnomad_exome.af,cadd.phred,dbnsfp.genename,dbnsfp.hgvsp,dbnsfp.hgvsc,dbnsfp.revel.score,dbnsfp.gerp++_rs,dbnsfp.sift,dbnsfp.polyphen2,dbnsfp.clinpred,cosmic,cgi,civic,snpeff,vcf,chrom,hg19"

// MyVariantClient queries MyVariant.info. The response shape is deeply
// nested and source-dependent, so methods return the raw JSON for gjson
// extraction in the transform layer.
type MyVariantClient struct {
	h    *httpx.Client
	base string
	ttl  TTLs
}

// Get fetches one variant annotation by rsID or HGVS genomic ID.
func (c *MyVariantClient) Get(ctx context.Context, id string) (gjson.Result, error) {
	q := url.Values{}
	q.Set("fields", myVariantFields)

	resp, err := c.h.Do(ctx, httpx.Request{
		API:      myVariantAPI,
		URL:      c.base + "/variant/" + url.PathEscape(strings.TrimSpace(id)),
		Query:    q,
		CacheTTL: c.ttl.Annotation,
	})
	if err != nil {
		return gjson.Result{}, err
	}
	if resp.StatusCode == 404 {
		return gjson.Result{}, domain.NewNotFound("variant", id,
			"Try searching: biomcp search variant -g GENE")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, domain.NewAPIError(myVariantAPI, "HTTP %d: %s", resp.StatusCode, httpx.BodyExcerpt(resp.Body))
	}
	if !gjson.ValidBytes(resp.Body) {
		return gjson.Result{}, domain.NewAPIError(myVariantAPI, "invalid JSON response")
	}
	return gjson.ParseBytes(resp.Body), nil
}

// Query runs a Lucene query (e.g. dbnsfp.genename:BRAF AND dbnsfp.hgvsp:...)
// and returns the raw hit envelope.
func (c *MyVariantClient) Query(ctx context.Context, queryTerm string, size, from int) (gjson.Result, error) {
	q := url.Values{}
	q.Set("q", queryTerm)
	q.Set("fields", myVariantFields)
	q.Set("size", itoa(size))
	q.Set("from", itoa(from))

	resp, err := c.h.Do(ctx, httpx.Request{
		API:      myVariantAPI,
		URL:      c.base + "/query",
		Query:    q,
		CacheTTL: c.ttl.Search,
	})
	if err != nil {
		return gjson.Result{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, domain.NewAPIError(myVariantAPI, "HTTP %d: %s", resp.StatusCode, httpx.BodyExcerpt(resp.Body))
	}
	if !gjson.ValidBytes(resp.Body) {
		return gjson.Result{}, domain.NewAPIError(myVariantAPI, "invalid JSON response")
	}
	return gjson.ParseBytes(resp.Body), nil
}
