package sources

import (
	"context"
	"net/url"
	"strings"

	"github.com/biomcp/biomcp/internal/httpx"
)

const interProAPI = "interpro"

// InterProClient lists the InterPro entries matched on a UniProt protein.
type InterProClient struct {
	h    *httpx.Client
	base string
	ttl  TTLs
}

// InterProDomain is one matched entry.
type InterProDomain struct {
	Accession  string `json:"accession"`
	Name       string `json:"name"`
	DomainType string `json:"type,omitempty"`
}

type interProResponse struct {
	Results []struct {
		Metadata struct {
			Accession string `json:"accession"`
			Name      string `json:"name"`
			Type      string `json:"type"`
		} `json:"metadata"`
	} `json:"results"`
}

// Domains lists InterPro entries for an accession, capped at limit.
func (c *InterProClient) Domains(ctx context.Context, accession string, limit int) ([]InterProDomain, error) {
	q := url.Values{}
	q.Set("page_size", itoa(limit))

	var resp interProResponse
	err := c.h.GetJSON(ctx, interProAPI,
		c.base+"/entry/interpro/protein/uniprot/"+url.PathEscape(strings.TrimSpace(accession)),
		q, c.ttl.Annotation, &resp)
	if err != nil {
		return nil, err
	}

	var out []InterProDomain
	for _, row := range resp.Results {
		if len(out) >= limit {
			break
		}
		acc := strings.TrimSpace(row.Metadata.Accession)
		name := strings.TrimSpace(row.Metadata.Name)
		if acc == "" || name == "" {
			continue
		}
		out = append(out, InterProDomain{
			Accession:  acc,
			Name:       name,
			DomainType: strings.TrimSpace(row.Metadata.Type),
		})
	}
	return out, nil
}
