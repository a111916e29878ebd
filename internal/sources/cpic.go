package sources

import (
	"context"
	"net/url"
	"strings"

	"github.com/biomcp/biomcp/internal/httpx"
)

const cpicAPI = "cpic"

// CPICClient queries the CPIC PostgREST API for gene-drug pairs,
// recommendations, allele frequencies, and guideline summaries.
type CPICClient struct {
	h    *httpx.Client
	base string
	ttl  TTLs
}

// CPICPairRow is one gene-drug pair with its evidence level.
type CPICPairRow struct {
	GeneSymbol    string `json:"genesymbol"`
	DrugName      string `json:"drugname"`
	CPICLevel     string `json:"cpiclevel"`
	PGxTesting    string `json:"pgxtesting"`
	GuidelineName string `json:"guidelinename"`
	GuidelineURL  string `json:"guidelineurl"`
}

// CPICRecommendationRow is one dosing recommendation. The lookup maps are
// keyed by gene symbol because multi-gene guidelines carry one value per
// gene.
type CPICRecommendationRow struct {
	DrugName           string            `json:"drugname"`
	Phenotypes         map[string]string `json:"phenotypes"`
	ActivityScore      map[string]string `json:"activityscore"`
	Implications       map[string]string `json:"implications"`
	DrugRecommendation string            `json:"drugrecommendation"`
	Classification     string            `json:"classification"`
	Population         string            `json:"population"`
	GuidelineName      string            `json:"guidelinename"`
	GuidelineURL       string            `json:"guidelineurl"`
}

// CPICFrequencyRow is one allele frequency observation.
type CPICFrequencyRow struct {
	GeneSymbol      string   `json:"genesymbol"`
	Name            string   `json:"name"`
	PopulationGroup string   `json:"population_group"`
	SubjectCount    *int64   `json:"subjectcount"`
	FreqWeightedAvg *float64 `json:"freq_weighted_avg"`
	FreqAvg         *float64 `json:"freq_avg"`
	FreqMax         *float64 `json:"freq_max"`
	FreqMin         *float64 `json:"freq_min"`
}

// CPICGuidelineSummaryRow is one guideline with its gene and drug lists.
type CPICGuidelineSummaryRow struct {
	GuidelineName string `json:"guideline_name"`
	GuidelineURL  string `json:"guideline_url"`
	Genes         []struct {
		Symbol string `json:"symbol"`
	} `json:"genes"`
	Drugs []string `json:"drugs"`
}

func (c *CPICClient) rows(ctx context.Context, path string, q url.Values, out any) error {
	return c.h.GetJSON(ctx, cpicAPI, c.base+path, q, c.ttl.Annotation, out)
}

// PairsByGene lists gene-drug pairs for a gene symbol.
func (c *CPICClient) PairsByGene(ctx context.Context, gene string, limit int) ([]CPICPairRow, error) {
	q := url.Values{}
	q.Set("genesymbol", "eq."+strings.ToUpper(strings.TrimSpace(gene)))
	q.Set("limit", itoa(limit))

	var rows []CPICPairRow
	if err := c.rows(ctx, "/pair_view", q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// PairsByDrug lists gene-drug pairs for a drug name (case-insensitive).
func (c *CPICClient) PairsByDrug(ctx context.Context, drug string, limit int) ([]CPICPairRow, error) {
	q := url.Values{}
	q.Set("drugname", "ilike."+strings.TrimSpace(drug))
	q.Set("limit", itoa(limit))

	var rows []CPICPairRow
	if err := c.rows(ctx, "/pair_view", q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// RecommendationsByGene lists dosing recommendations mentioning a gene.
func (c *CPICClient) RecommendationsByGene(ctx context.Context, gene string, limit int) ([]CPICRecommendationRow, error) {
	q := url.Values{}
	q.Set("phenotypes", "cs."+jsonKeyFilter(gene))
	q.Set("limit", itoa(limit))

	var rows []CPICRecommendationRow
	if err := c.rows(ctx, "/recommendation_view", q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// RecommendationsByDrug lists dosing recommendations for a drug.
func (c *CPICClient) RecommendationsByDrug(ctx context.Context, drug string, limit int) ([]CPICRecommendationRow, error) {
	q := url.Values{}
	q.Set("drugname", "ilike."+strings.TrimSpace(drug))
	q.Set("limit", itoa(limit))

	var rows []CPICRecommendationRow
	if err := c.rows(ctx, "/recommendation_view", q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// FrequenciesByGene lists allele frequency rows for a gene.
func (c *CPICClient) FrequenciesByGene(ctx context.Context, gene string, limit int) ([]CPICFrequencyRow, error) {
	q := url.Values{}
	q.Set("genesymbol", "eq."+strings.ToUpper(strings.TrimSpace(gene)))
	q.Set("limit", itoa(limit))

	var rows []CPICFrequencyRow
	if err := c.rows(ctx, "/population_frequency_view", q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GuidelinesByGene lists guideline summaries mentioning a gene.
func (c *CPICClient) GuidelinesByGene(ctx context.Context, gene string, limit int) ([]CPICGuidelineSummaryRow, error) {
	q := url.Values{}
	q.Set("genes", "cs."+jsonKeyFilter(gene))
	q.Set("limit", itoa(limit))

	var rows []CPICGuidelineSummaryRow
	if err := c.rows(ctx, "/guideline_summary_view", q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// jsonKeyFilter builds the PostgREST "contains" operand for a JSON key match.
func jsonKeyFilter(gene string) string {
	return `{"` + strings.ToUpper(strings.TrimSpace(gene)) + `"}`
}
