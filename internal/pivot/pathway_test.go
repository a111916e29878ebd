package pivot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomcp/biomcp/internal/domain"
)

func newReactomeServer(t *testing.T, participants string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/data/query/R-HSA-5673001":
			_, _ = w.Write([]byte(`{
				"stId": "R-HSA-5673001",
				"displayName": "RAF/MAP kinase cascade",
				"speciesName": "Homo sapiens"
			}`))
		case "/data/participants/R-HSA-5673001/participatingPhysicalEntities":
			_, _ = w.Write([]byte(participants))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestPathwayDrugs(t *testing.T) {
	reactome := newReactomeServer(t, `[
		{"displayName": "BRAF [cytosol]"},
		{"displayName": "RAF1 [cytosol]"}
	]`)
	defer reactome.Close()

	mychem := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		q := r.URL.Query().Get("q")
		switch {
		case strings.Contains(q, `"BRAF"`):
			_, _ = w.Write([]byte(`{"total": 2, "hits": [
				{"chembl": {"pref_name": "SORAFENIB", "molecule_chembl_id": "CHEMBL1336"}},
				{"chembl": {"pref_name": "VEMURAFENIB", "molecule_chembl_id": "CHEMBL1229517"}}
			]}`))
		default:
			_, _ = w.Write([]byte(`{"total": 1, "hits": [
				{"chembl": {"pref_name": "Sorafenib", "molecule_chembl_id": "CHEMBL1336"}}
			]}`))
		}
	}))
	defer mychem.Close()

	p := newTestPivot(t, map[string]string{"REACTOME": reactome.URL, "MYCHEM": mychem.URL})

	page, err := p.PathwayDrugs(context.Background(), "R-HSA-5673001", 10)
	require.NoError(t, err)
	// Sorafenib appears for both genes; the case-insensitive merge keeps the
	// first spelling.
	require.Len(t, page.Results, 2)
	names := []string{page.Results[0].Name, page.Results[1].Name}
	assert.Contains(t, names, "SORAFENIB")
	assert.Contains(t, names, "VEMURAFENIB")
	assert.NotContains(t, names, "Sorafenib")
}

func TestPathwayDrugsNoGenes(t *testing.T) {
	reactome := newReactomeServer(t, `[{"displayName": "ATP [cytosol]"}]`)
	defer reactome.Close()
	p := newTestPivot(t, map[string]string{"REACTOME": reactome.URL})

	page, err := p.PathwayDrugs(context.Background(), "R-HSA-5673001", 10)
	require.NoError(t, err)
	assert.Empty(t, page.Results)
	require.NotNil(t, page.Total)
	assert.Equal(t, 0, *page.Total)
}

func TestPathwayDrugsMajorityFailure(t *testing.T) {
	reactome := newReactomeServer(t, `[
		{"displayName": "BRAF [cytosol]"},
		{"displayName": "RAF1 [cytosol]"}
	]`)
	defer reactome.Close()

	mychem := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "boom"}`, http.StatusInternalServerError)
	}))
	defer mychem.Close()

	p := newTestPivot(t, map[string]string{"REACTOME": reactome.URL, "MYCHEM": mychem.URL})

	_, err := p.PathwayDrugs(context.Background(), "R-HSA-5673001", 10)
	require.Error(t, err)
	api, ok := domain.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "pathway-drugs", api)
}

func TestPathwayTrialsBiomarkerFallback(t *testing.T) {
	reactome := newReactomeServer(t, `[{"displayName": "BRAF [cytosol]"}]`)
	defer reactome.Close()

	ctgov := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/studies/NCT00000001" {
			_, _ = w.Write([]byte(`{"protocolSection": {
				"identificationModule": {"nctId": "NCT00000001"},
				"eligibilityModule": {"eligibilityCriteria": "Inclusion Criteria:\n- BRAF mutation\nExclusion Criteria:\n- Pregnancy"}
			}}`))
			return
		}
		if r.URL.Query().Get("query.cond") != "" {
			_, _ = w.Write([]byte(`{"studies": [], "totalCount": 0}`))
			return
		}
		_, _ = w.Write([]byte(`{"totalCount": 1, "studies": [{
			"protocolSection": {
				"identificationModule": {"nctId": "NCT00000001", "briefTitle": "BRAF Study"},
				"statusModule": {"overallStatus": "RECRUITING"}
			}
		}]}`))
	}))
	defer ctgov.Close()

	p := newTestPivot(t, map[string]string{"REACTOME": reactome.URL, "CTGOV": ctgov.URL})

	page, note, err := p.PathwayTrials(context.Background(), "R-HSA-5673001", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "fallback_biomarker=BRAF", note)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "NCT00000001", page.Results[0].NCTID)
}

func TestPathwayTrialsNoFallbackNeeded(t *testing.T) {
	reactome := newReactomeServer(t, `[]`)
	defer reactome.Close()

	ctgov := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "RAF/MAP kinase cascade", r.URL.Query().Get("query.cond"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"totalCount": 1, "studies": [{
			"protocolSection": {
				"identificationModule": {"nctId": "NCT00000002", "briefTitle": "Cascade Study"},
				"statusModule": {"overallStatus": "RECRUITING"}
			}
		}]}`))
	}))
	defer ctgov.Close()

	p := newTestPivot(t, map[string]string{"REACTOME": reactome.URL, "CTGOV": ctgov.URL})

	page, note, err := p.PathwayTrials(context.Background(), "R-HSA-5673001", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, note)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "NCT00000002", page.Results[0].NCTID)
}
