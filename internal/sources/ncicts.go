package sources

import (
	"context"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/httpx"
)

const nciCTSAPI = "nci_cts"

// NCICTSClient queries the NCI Clinical Trials Search API, the alternate
// trial registry behind --source nci.
type NCICTSClient struct {
	h    *httpx.Client
	base string
	ttl  TTLs
}

// NCISearchParams mirrors the subset of the CTS query surface the trial
// orchestrator uses.
type NCISearchParams struct {
	Diseases          []string
	Interventions     []string
	SitesOrgName      string
	RecruitmentStatus string
	Phase             string
	Latitude          *float64
	Longitude         *float64
	Distance          *float64
	Biomarkers        []string
	Size              int
	From              int
}

// NCISearchResponse is the raw /trials envelope with the parsed total.
type NCISearchResponse struct {
	Total *int
	Raw   gjson.Result
}

// Hits returns the trial rows.
func (r *NCISearchResponse) Hits() []gjson.Result {
	return r.Raw.Get("data").Array()
}

// Search runs one offset-paged trial query.
func (c *NCICTSClient) Search(ctx context.Context, params *NCISearchParams) (*NCISearchResponse, error) {
	q := url.Values{}
	set := func(key, value string) {
		if v := strings.TrimSpace(value); v != "" {
			q.Set(key, v)
		}
	}
	addAll := func(key string, values []string) {
		for _, value := range values {
			if v := strings.TrimSpace(value); v != "" {
				q.Add(key, v)
			}
		}
	}
	addAll("diseases.name._fulltext", params.Diseases)
	addAll("arms.interventions.name._fulltext", params.Interventions)
	set("sites.org_name._fulltext", params.SitesOrgName)
	set("current_trial_status", params.RecruitmentStatus)
	set("phase", params.Phase)
	addAll("biomarkers.name._fulltext", params.Biomarkers)
	if params.Latitude != nil && params.Longitude != nil && params.Distance != nil {
		q.Set("sites.org_coordinates_lat", floatString(*params.Latitude))
		q.Set("sites.org_coordinates_lon", floatString(*params.Longitude))
		q.Set("sites.org_coordinates_dist", floatString(*params.Distance)+"mi")
	}
	q.Set("size", itoa(params.Size))
	q.Set("from", itoa(params.From))

	resp, err := c.h.Do(ctx, httpx.Request{
		API:      nciCTSAPI,
		URL:      c.base + "/trials",
		Query:    q,
		CacheTTL: c.ttl.Search,
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.NewAPIError(nciCTSAPI, "HTTP %d: %s", resp.StatusCode, httpx.BodyExcerpt(resp.Body))
	}
	if !gjson.ValidBytes(resp.Body) {
		return nil, domain.NewAPIError(nciCTSAPI, "invalid JSON response")
	}

	parsed := gjson.ParseBytes(resp.Body)
	out := &NCISearchResponse{Raw: parsed}
	if total := parsed.Get("total"); total.Exists() {
		n := int(total.Int())
		out.Total = &n
	}
	return out, nil
}

// Get fetches one trial by NCT ID.
func (c *NCICTSClient) Get(ctx context.Context, nctID string) (gjson.Result, error) {
	resp, err := c.h.Do(ctx, httpx.Request{
		API:      nciCTSAPI,
		URL:      c.base + "/trials/" + url.PathEscape(strings.TrimSpace(nctID)),
		CacheTTL: c.ttl.Annotation,
	})
	if err != nil {
		return gjson.Result{}, err
	}
	if resp.StatusCode == 404 {
		return gjson.Result{}, domain.NewNotFound("trial", nctID,
			"Try searching: biomcp search trial -c \""+nctID+"\"")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, domain.NewAPIError(nciCTSAPI, "HTTP %d: %s", resp.StatusCode, httpx.BodyExcerpt(resp.Body))
	}
	if !gjson.ValidBytes(resp.Body) {
		return gjson.Result{}, domain.NewAPIError(nciCTSAPI, "invalid JSON response")
	}
	return gjson.ParseBytes(resp.Body), nil
}
