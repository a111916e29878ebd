package sources

import (
	"context"
	"net/url"
	"strings"

	"github.com/biomcp/biomcp/internal/httpx"
)

const stringAPI = "string"

// STRINGClient queries STRING-DB functional interaction partners.
type STRINGClient struct {
	h    *httpx.Client
	base string
	ttl  TTLs
}

// STRINGInteraction is one partner row. Names carry the preferred symbols
// for both endpoints; callers pick whichever side is not the query protein.
type STRINGInteraction struct {
	PreferredNameA string   `json:"preferredName_A"`
	PreferredNameB string   `json:"preferredName_B"`
	Score          *float64 `json:"score"`
}

// Interactions lists up to limit partners for a protein symbol or accession
// in the given species.
func (c *STRINGClient) Interactions(ctx context.Context, identifier string, species, limit int) ([]STRINGInteraction, error) {
	q := url.Values{}
	q.Set("identifiers", strings.TrimSpace(identifier))
	q.Set("species", itoa(species))
	q.Set("limit", itoa(limit))
	q.Set("caller_identity", "biomcp")

	var rows []STRINGInteraction
	if err := c.h.GetJSON(ctx, stringAPI, c.base+"/json/interaction_partners", q, c.ttl.Annotation, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
