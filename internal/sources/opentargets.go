package sources

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/httpx"
)

const openTargetsAPI = "opentargets"

// OpenTargetsClient queries the Open Targets Platform GraphQL endpoint for
// target-disease and target-drug context.
type OpenTargetsClient struct {
	h    *httpx.Client
	base string
	ttl  TTLs
}

// TargetClinicalContext is the clinical framing attached to gene results:
// top associated diseases and known drugs for the target.
type TargetClinicalContext struct {
	TargetID string              `json:"target_id"`
	Symbol   string              `json:"symbol"`
	Diseases []TargetDiseaseLink `json:"diseases,omitempty"`
	Drugs    []TargetDrugLink    `json:"drugs,omitempty"`
}

type TargetDiseaseLink struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type TargetDrugLink struct {
	Name        string `json:"name"`
	Phase       int    `json:"max_phase"`
	Mechanism   string `json:"mechanism,omitempty"`
	DiseaseName string `json:"disease,omitempty"`
}

const openTargetsContextQuery = `query targetContext($symbol: String!, $size: Int!) {
  search(queryString: $symbol, entityNames: ["target"], page: {index: 0, size: 1}) {
    hits {
      id
      name
      object {
        ... on Target {
          id
          approvedSymbol
          associatedDiseases(page: {index: 0, size: $size}) {
            rows {
              disease { name }
              score
            }
          }
          knownDrugs(size: $size) {
            rows {
              drug { name maximumClinicalTrialPhase }
              mechanismOfAction
              disease { name }
            }
          }
        }
      }
    }
  }
}`

func (c *OpenTargetsClient) post(ctx context.Context, query string, variables map[string]any) (gjson.Result, error) {
	body := map[string]any{"query": query, "variables": variables}
	var raw json.RawMessage
	if err := c.h.PostJSON(ctx, openTargetsAPI, c.base, body, &raw); err != nil {
		return gjson.Result{}, err
	}
	parsed := gjson.ParseBytes(raw)
	if errs := parsed.Get("errors"); errs.Exists() && len(errs.Array()) > 0 {
		return gjson.Result{}, domain.NewAPIError(openTargetsAPI, "GraphQL error: %s", errs.Array()[0].Get("message").String())
	}
	return parsed.Get("data"), nil
}

// TargetContext resolves a gene symbol to an Ensembl target and pulls its
// top associated diseases and known drugs, size rows each.
func (c *OpenTargetsClient) TargetContext(ctx context.Context, symbol string, size int) (*TargetClinicalContext, error) {
	data, err := c.post(ctx, openTargetsContextQuery, map[string]any{
		"symbol": strings.TrimSpace(symbol),
		"size":   size,
	})
	if err != nil {
		return nil, err
	}

	target := data.Get("search.hits.0.object")
	if !target.Exists() || target.Get("id").String() == "" {
		return nil, nil
	}

	out := &TargetClinicalContext{
		TargetID: target.Get("id").String(),
		Symbol:   target.Get("approvedSymbol").String(),
	}
	for _, row := range target.Get("associatedDiseases.rows").Array() {
		name := row.Get("disease.name").String()
		if name == "" {
			continue
		}
		out.Diseases = append(out.Diseases, TargetDiseaseLink{
			Name:  name,
			Score: row.Get("score").Float(),
		})
	}
	for _, row := range target.Get("knownDrugs.rows").Array() {
		name := row.Get("drug.name").String()
		if name == "" {
			continue
		}
		out.Drugs = append(out.Drugs, TargetDrugLink{
			Name:        name,
			Phase:       int(row.Get("drug.maximumClinicalTrialPhase").Int()),
			Mechanism:   row.Get("mechanismOfAction").String(),
			DiseaseName: row.Get("disease.name").String(),
		})
	}
	return out, nil
}
