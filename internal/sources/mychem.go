package sources

import (
	"context"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/httpx"
)

const myChemAPI = "mychem"

const myChemFields = "chembl.pref_name,chembl.molecule_chembl_id,chembl.molecule_type,chembl.max_phase,chembl.first_approval,chembl.indication_class,chembl.molecule_synonyms,chembl.drug_mechanisms,drugbank.id,drugbank.name,drugbank.targets,drugbank.drug_interactions,drugcentral.approval,drugcentral.drug_use,unii.unii,chebi.id,pubchem.cid"

// MyChemClient queries MyChem.info. Like MyVariant, the payload shape varies
// by source block, so raw JSON is returned for gjson extraction.
type MyChemClient struct {
	h    *httpx.Client
	base string
	ttl  TTLs
}

// Get fetches one drug annotation by name, ChEMBL ID, or DrugBank ID.
func (c *MyChemClient) Get(ctx context.Context, id string) (gjson.Result, error) {
	// Name lookups go through /query so synonyms resolve.
	q := url.Values{}
	q.Set("q", `chembl.pref_name:"`+EscapeQueryValue(strings.TrimSpace(id))+`" OR chembl.molecule_synonyms.molecule_synonym:"`+EscapeQueryValue(strings.TrimSpace(id))+`"`)
	q.Set("fields", myChemFields)
	q.Set("size", "1")

	resp, err := c.h.Do(ctx, httpx.Request{
		API:      myChemAPI,
		URL:      c.base + "/query",
		Query:    q,
		CacheTTL: c.ttl.Annotation,
	})
	if err != nil {
		return gjson.Result{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, domain.NewAPIError(myChemAPI, "HTTP %d: %s", resp.StatusCode, httpx.BodyExcerpt(resp.Body))
	}
	if !gjson.ValidBytes(resp.Body) {
		return gjson.Result{}, domain.NewAPIError(myChemAPI, "invalid JSON response")
	}
	parsed := gjson.ParseBytes(resp.Body)
	hits := parsed.Get("hits")
	if !hits.Exists() || len(hits.Array()) == 0 {
		return gjson.Result{}, domain.NewNotFound("drug", id,
			"Try searching: biomcp search drug -q "+strings.TrimSpace(id))
	}
	return hits.Array()[0], nil
}

// Query runs a Lucene query against /query and returns the raw envelope.
func (c *MyChemClient) Query(ctx context.Context, queryTerm string, size, from int) (gjson.Result, error) {
	q := url.Values{}
	q.Set("q", queryTerm)
	q.Set("fields", myChemFields)
	q.Set("size", itoa(size))
	q.Set("from", itoa(from))

	resp, err := c.h.Do(ctx, httpx.Request{
		API:      myChemAPI,
		URL:      c.base + "/query",
		Query:    q,
		CacheTTL: c.ttl.Search,
	})
	if err != nil {
		return gjson.Result{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, domain.NewAPIError(myChemAPI, "HTTP %d: %s", resp.StatusCode, httpx.BodyExcerpt(resp.Body))
	}
	if !gjson.ValidBytes(resp.Body) {
		return gjson.Result{}, domain.NewAPIError(myChemAPI, "invalid JSON response")
	}
	return gjson.ParseBytes(resp.Body), nil
}
