package sources

import (
	"context"
	"net/url"
	"strings"

	"github.com/biomcp/biomcp/internal/httpx"
)

const pharmGKBAPI = "pharmgkb"

// PharmGKBClient queries the PharmGKB public API for clinical annotations.
// PharmGKB is an optional enrichment source; its callers run it under a
// timeout and degrade to CPIC-only content.
type PharmGKBClient struct {
	h    *httpx.Client
	base string
	ttl  TTLs
}

// PharmGKBAnnotation is one clinical annotation row.
type PharmGKBAnnotation struct {
	ID              string   `json:"id"`
	Gene            string   `json:"gene,omitempty"`
	Drugs           []string `json:"drugs,omitempty"`
	LevelOfEvidence string   `json:"level_of_evidence,omitempty"`
	Phenotype       string   `json:"phenotype,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	URL             string   `json:"url,omitempty"`
}

type pharmGKBEnvelope struct {
	Data []struct {
		ID              FlexString `json:"id"`
		LevelOfEvidence *struct {
			Term string `json:"term"`
		} `json:"levelOfEvidence"`
		Location *struct {
			Genes []struct {
				Symbol string `json:"symbol"`
			} `json:"genes"`
		} `json:"location"`
		RelatedChemicals []struct {
			Name string `json:"name"`
		} `json:"relatedChemicals"`
		Phenotypes []struct {
			Name string `json:"name"`
		} `json:"phenotypes"`
		Summary *struct {
			HTML string `json:"html"`
		} `json:"summary"`
	} `json:"data"`
}

func (c *PharmGKBClient) annotations(ctx context.Context, key, value string, limit int) ([]PharmGKBAnnotation, error) {
	q := url.Values{}
	q.Set(key, strings.TrimSpace(value))
	q.Set("view", "max")

	var envelope pharmGKBEnvelope
	if err := c.h.GetJSON(ctx, pharmGKBAPI, c.base+"/data/clinicalAnnotation", q, c.ttl.Annotation, &envelope); err != nil {
		return nil, err
	}

	out := make([]PharmGKBAnnotation, 0, len(envelope.Data))
	for _, row := range envelope.Data {
		if len(out) >= limit {
			break
		}
		a := PharmGKBAnnotation{ID: row.ID.String()}
		if row.LevelOfEvidence != nil {
			a.LevelOfEvidence = strings.TrimSpace(row.LevelOfEvidence.Term)
		}
		if row.Location != nil && len(row.Location.Genes) > 0 {
			a.Gene = strings.TrimSpace(row.Location.Genes[0].Symbol)
		}
		for _, chem := range row.RelatedChemicals {
			if v := strings.TrimSpace(chem.Name); v != "" {
				a.Drugs = append(a.Drugs, v)
			}
		}
		if len(row.Phenotypes) > 0 {
			a.Phenotype = strings.TrimSpace(row.Phenotypes[0].Name)
		}
		if row.Summary != nil {
			a.Summary = strings.TrimSpace(row.Summary.HTML)
		}
		if a.ID != "" {
			a.URL = "https://www.pharmgkb.org/clinicalAnnotation/" + a.ID
		}
		out = append(out, a)
	}
	return out, nil
}

// AnnotationsByGene lists clinical annotations located on a gene.
func (c *PharmGKBClient) AnnotationsByGene(ctx context.Context, gene string, limit int) ([]PharmGKBAnnotation, error) {
	return c.annotations(ctx, "location.genes.symbol", strings.ToUpper(gene), limit)
}

// AnnotationsByDrug lists clinical annotations related to a chemical.
func (c *PharmGKBClient) AnnotationsByDrug(ctx context.Context, drug string, limit int) ([]PharmGKBAnnotation, error) {
	return c.annotations(ctx, "relatedChemicals.name", drug, limit)
}
