package sources

import (
	"context"
	"net/url"
	"strings"

	"github.com/biomcp/biomcp/internal/httpx"
)

const quickGOAPI = "quickgo"

// QuickGOClient queries the EBI QuickGO annotation and ontology services.
type QuickGOClient struct {
	h    *httpx.Client
	base string
	ttl  TTLs
}

// QuickGOAnnotation is one GO annotation row. Names can be absent from the
// annotation feed; callers backfill them via Terms.
type QuickGOAnnotation struct {
	GOID         string `json:"goId"`
	GOName       string `json:"goName"`
	GOAspect     string `json:"goAspect"`
	EvidenceCode string `json:"goEvidence"`
}

// QuickGOTerm is one ontology term.
type QuickGOTerm struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Aspect string `json:"aspect"`
}

// Annotations lists GO annotations for a UniProt accession.
func (c *QuickGOClient) Annotations(ctx context.Context, accession string, limit int) ([]QuickGOAnnotation, error) {
	q := url.Values{}
	q.Set("geneProductId", strings.TrimSpace(accession))
	q.Set("limit", itoa(limit))

	var resp struct {
		Results []QuickGOAnnotation `json:"results"`
	}
	if err := c.h.GetJSON(ctx, quickGOAPI, c.base+"/annotation/search", q, c.ttl.Annotation, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Terms fetches term names and aspects for a set of GO IDs.
func (c *QuickGOClient) Terms(ctx context.Context, ids []string) ([]QuickGOTerm, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var resp struct {
		Results []QuickGOTerm `json:"results"`
	}
	err := c.h.GetJSON(ctx, quickGOAPI,
		c.base+"/ontology/go/terms/"+url.PathEscape(strings.Join(ids, ",")),
		nil, c.ttl.Annotation, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}
