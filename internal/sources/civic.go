package sources

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/httpx"
)

const civicAPI = "civic"

// CIViCClient queries the CIViC GraphQL endpoint for clinical evidence on
// genes and variants.
type CIViCClient struct {
	h    *httpx.Client
	base string
	ttl  TTLs
}

const civicGeneQuery = `query geneEvidence($name: String!) {
  genes(name: $name, first: 1) {
    nodes {
      id
      name
      description
      variants(first: 25) {
        nodes {
          id
          name
          link
        }
      }
    }
  }
}`

const civicVariantQuery = `query variantEvidence($geneName: String!, $variantName: String!) {
  molecularProfiles(name: $variantName, geneName: $geneName, first: 5) {
    nodes {
      id
      name
      description
      evidenceItems(first: 10, status: ACCEPTED) {
        nodes {
          id
          name
          description
          evidenceType
          evidenceLevel
          significance
          disease { name }
          therapies { name }
        }
      }
    }
  }
}`

func (c *CIViCClient) post(ctx context.Context, query string, variables map[string]any) (gjson.Result, error) {
	body := map[string]any{"query": query, "variables": variables}
	var raw json.RawMessage
	if err := c.h.PostJSON(ctx, civicAPI, c.base, body, &raw); err != nil {
		return gjson.Result{}, err
	}
	parsed := gjson.ParseBytes(raw)
	if errs := parsed.Get("errors"); errs.Exists() && len(errs.Array()) > 0 {
		return gjson.Result{}, domain.NewAPIError(civicAPI, "GraphQL error: %s", errs.Array()[0].Get("message").String())
	}
	return parsed.Get("data"), nil
}

// GeneEvidence fetches the CIViC gene record with its curated variants.
func (c *CIViCClient) GeneEvidence(ctx context.Context, symbol string) (gjson.Result, error) {
	data, err := c.post(ctx, civicGeneQuery, map[string]any{"name": strings.TrimSpace(symbol)})
	if err != nil {
		return gjson.Result{}, err
	}
	return data.Get("genes.nodes.0"), nil
}

// VariantEvidence fetches accepted evidence items for molecular profiles
// matching a gene plus variant name (e.g. BRAF / V600E).
func (c *CIViCClient) VariantEvidence(ctx context.Context, geneSymbol, variantName string) (gjson.Result, error) {
	data, err := c.post(ctx, civicVariantQuery, map[string]any{
		"geneName":    strings.TrimSpace(geneSymbol),
		"variantName": strings.TrimSpace(variantName),
	})
	if err != nil {
		return gjson.Result{}, err
	}
	return data.Get("molecularProfiles.nodes"), nil
}
