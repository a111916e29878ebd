package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/httpx"
)

const alphaGenomeAPI = "alphagenome"

// AlphaGenomeClient requests regulatory effect predictions for variants.
// Access requires an API key; calls fail with a remedy message when none is
// configured.
type AlphaGenomeClient struct {
	h      *httpx.Client
	base   string
	ttl    TTLs
	apiKey string
}

// AlphaGenomeRequest describes one variant to score. Coordinates are GRCh38,
// 1-based.
type AlphaGenomeRequest struct {
	Chromosome string `json:"chromosome"`
	Position   int64  `json:"position"`
	Reference  string `json:"reference_bases"`
	Alternate  string `json:"alternate_bases"`
	// Interval is the sequence window centered on the variant. The service
	// accepts 2048 through 1048576; zero means service default.
	Interval int `json:"sequence_length,omitempty"`
}

// HasKey reports whether an API key is configured.
func (c *AlphaGenomeClient) HasKey() bool { return strings.TrimSpace(c.apiKey) != "" }

// PredictVariantEffects scores one variant. The payload is returned loose
// because track scores vary by model version.
func (c *AlphaGenomeClient) PredictVariantEffects(ctx context.Context, req *AlphaGenomeRequest) (gjson.Result, error) {
	if !c.HasKey() {
		return gjson.Result{}, domain.NewInvalidArgument("AlphaGenome requires an API key. Set BIOMCP_ALPHAGENOME_API_KEY.")
	}
	if req.Chromosome == "" || req.Reference == "" || req.Alternate == "" {
		return gjson.Result{}, domain.NewInvalidArgument("AlphaGenome prediction requires chromosome, position, reference, and alternate alleles.")
	}

	raw, err := json.Marshal(req)
	if err != nil {
		return gjson.Result{}, domain.NewAPIError(alphaGenomeAPI, "failed to encode request body: %v", err)
	}
	resp, err := c.h.Do(ctx, httpx.Request{
		API:    alphaGenomeAPI,
		Method: http.MethodPost,
		URL:    c.base + "/predict_variant",
		Body:   raw,
		Header: http.Header{
			"Content-Type":   []string{"application/json"},
			"X-Goog-Api-Key": []string{c.apiKey},
		},
	})
	if err != nil {
		return gjson.Result{}, err
	}
	if resp.StatusCode == 401 || resp.StatusCode == 403 {
		return gjson.Result{}, domain.NewInvalidArgument("AlphaGenome rejected the configured key. Check BIOMCP_ALPHAGENOME_API_KEY.")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, domain.NewAPIError(alphaGenomeAPI, "HTTP %d: %s", resp.StatusCode, httpx.BodyExcerpt(resp.Body))
	}
	if !gjson.ValidBytes(resp.Body) {
		return gjson.Result{}, domain.NewAPIError(alphaGenomeAPI, "invalid JSON response")
	}
	return gjson.ParseBytes(resp.Body), nil
}
