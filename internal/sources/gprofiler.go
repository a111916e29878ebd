package sources

import (
	"context"

	"github.com/biomcp/biomcp/internal/httpx"
)

const gProfilerAPI = "gprofiler"

// GProfilerClient runs g:Profiler functional enrichment (g:GOSt).
type GProfilerClient struct {
	h    *httpx.Client
	base string
	ttl  TTLs
}

// GProfilerRow is one enrichment hit.
type GProfilerRow struct {
	Source string  `json:"source"`
	Native string  `json:"native"`
	Name   string  `json:"name"`
	PValue float64 `json:"p_value"`
}

type gProfilerResponse struct {
	Result []GProfilerRow `json:"result"`
}

// EnrichGenes profiles a gene list against human annotation sources and
// returns up to limit rows.
func (c *GProfilerClient) EnrichGenes(ctx context.Context, genes []string, limit int) ([]GProfilerRow, error) {
	body := map[string]any{
		"organism": "hsapiens",
		"query":    genes,
	}

	var resp gProfilerResponse
	if err := c.h.PostJSON(ctx, gProfilerAPI, c.base+"/gost/profile/", body, &resp); err != nil {
		return nil, err
	}
	rows := resp.Result
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
