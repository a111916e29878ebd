package entity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomcp/biomcp/internal/domain"
)

func TestSearchOrganizations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trials", r.URL.Path)
		assert.Equal(t, "Dana-Farber", r.URL.Query().Get("sites.org_name._fulltext"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total": 2, "data": [
			{
				"nct_id": "NCT11111111",
				"sites": [
					{"org_name": "Dana-Farber Cancer Institute", "org_city": "Boston", "org_country": "United States"},
					{"org_name": "Dana-Farber Cancer Institute", "org_city": "Boston", "org_country": "United States"},
					{"org_name": "Other Hospital", "org_city": "Denver", "org_country": "United States"}
				]
			},
			{
				"nct_id": "NCT22222222",
				"sites": [
					{"org_name": "Dana-Farber Cancer Institute", "org_city": "Boston", "org_country": "United States"}
				]
			}
		]}`))
	}))
	defer srv.Close()
	svc := newTestService(t, map[string]string{"NCI_CTS": srv.URL})

	page, err := svc.SearchOrganizations(context.Background(), &domain.OrganizationSearchFilters{Name: "Dana-Farber"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	org := page.Results[0]
	assert.Equal(t, "Dana-Farber Cancer Institute", org.Name)
	assert.Equal(t, "Boston", org.City)
	// Two trials; duplicate sites within one trial count once.
	assert.Equal(t, 2, org.TrialCount)
}

func TestSearchOrganizationsRequiresName(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.SearchOrganizations(context.Background(), &domain.OrganizationSearchFilters{}, 10, 0)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "--name is required")
}

func TestSearchInterventions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/studies", r.URL.Path)
		assert.Equal(t, "pembrolizumab", r.URL.Query().Get("query.intr"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"studies": [
			{
				"protocolSection": {
					"identificationModule": {"nctId": "NCT11111111"},
					"conditionsModule": {"conditions": ["Melanoma"]},
					"armsInterventionsModule": {"interventions": [
						{"name": "Pembrolizumab", "type": "DRUG"},
						{"name": "Placebo", "type": "DRUG"}
					]}
				}
			},
			{
				"protocolSection": {
					"identificationModule": {"nctId": "NCT22222222"},
					"armsInterventionsModule": {"interventions": [
						{"name": "pembrolizumab", "type": "DRUG"}
					]}
				}
			}
		]}`))
	}))
	defer srv.Close()
	svc := newTestService(t, map[string]string{"CTGOV": srv.URL})

	page, err := svc.SearchInterventions(context.Background(), &domain.InterventionSearchFilters{Name: "pembrolizumab"}, 10, 0)
	require.NoError(t, err)
	// Case-insensitive dedupe keeps the first spelling; Placebo fails the
	// name filter.
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Pembrolizumab", page.Results[0].Name)
	assert.Equal(t, "DRUG", page.Results[0].Type)
	assert.Equal(t, "NCT11111111", page.Results[0].NCTID)
	assert.Equal(t, "Melanoma", page.Results[0].Condition)
}

func TestSearchInterventionsRequiresFilter(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.SearchInterventions(context.Background(), &domain.InterventionSearchFilters{}, 10, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Either --name or --condition is required")
}

func TestSearchBiomarkers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "BRAF V600E", r.URL.Query().Get("biomarkers.name._fulltext"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total": 2, "data": [
			{
				"nct_id": "NCT11111111",
				"brief_title": "Vemurafenib in BRAF V600E Melanoma",
				"current_trial_status": "Active",
				"biomarkers": [{"name": "BRAF V600E mutation"}, {"name": "PD-L1"}]
			},
			{
				"nct_id": "NCT22222222",
				"brief_title": "Unrelated Study",
				"current_trial_status": "Active",
				"biomarkers": [{"name": "KRAS G12C"}]
			}
		]}`))
	}))
	defer srv.Close()
	svc := newTestService(t, map[string]string{"NCI_CTS": srv.URL})

	page, err := svc.SearchBiomarkers(context.Background(), &domain.BiomarkerSearchFilters{Name: "BRAF V600E"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "BRAF V600E mutation", page.Results[0].Name)
	assert.Equal(t, "NCT11111111", page.Results[0].NCTID)
}
