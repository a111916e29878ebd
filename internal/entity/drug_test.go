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

const imatinibHit = `{
	"_id": "ZUNBRNNA",
	"chembl": {
		"pref_name": "IMATINIB",
		"molecule_chembl_id": "CHEMBL941",
		"max_phase": 4,
		"first_approval": 2001,
		"molecule_synonyms": [
			{"syn_type": "TRADE_NAME", "molecule_synonym": "Gleevec"},
			{"syn_type": "TRADE_NAME", "molecule_synonym": "gleevec"}
		],
		"drug_mechanisms": [{"mechanism_of_action": "BCR-ABL tyrosine kinase inhibitor"}]
	},
	"drugbank": {
		"id": "DB00619",
		"targets": [{"gene_name": "ABL1", "actions": "inhibitor"}],
		"drug_interactions": [{"name": "Warfarin", "description": "Serum concentration increased"}]
	}
}`

func newDrugServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/query":
			_, _ = w.Write([]byte(`{"total": 1, "hits": [` + imatinibHit + `]}`))
		case "/drug/label.json":
			_, _ = w.Write([]byte(`{"results": [{
				"boxed_warning": ["Serious warning text"],
				"indications_and_usage": ["Treatment of CML"],
				"openfda": {"manufacturer_name": ["Novartis"], "route": ["ORAL"]}
			}]}`))
		case "/drug/shortages.json":
			http.Error(w, `{"error": {"code": "NOT_FOUND"}}`, http.StatusNotFound)
		case "/drug/drugsfda.json":
			_, _ = w.Write([]byte(`{"results": [{
				"application_number": "NDA021588",
				"sponsor_name": "NOVARTIS",
				"products": [{"brand_name": "GLEEVEC", "marketing_status": "Prescription"}]
			}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestGetDrugWithSections(t *testing.T) {
	srv := newDrugServer(t)
	defer srv.Close()
	svc := newTestService(t, map[string]string{"MYCHEM": srv.URL, "OPENFDA": srv.URL})

	drug, err := svc.GetDrug(context.Background(), "imatinib", []string{"label", "shortage", "approvals", "interactions"})
	require.NoError(t, err)
	assert.Equal(t, "IMATINIB", drug.Name)
	assert.Equal(t, "CHEMBL941", drug.ChemblID)
	assert.Equal(t, "DB00619", drug.DrugBankID)
	assert.Equal(t, "Approved (2001)", drug.ApprovalStatus)
	assert.Equal(t, []string{"Gleevec"}, drug.TradeNames)
	require.Len(t, drug.Targets, 1)
	assert.Equal(t, "ABL1", drug.Targets[0].Gene)

	require.NotNil(t, drug.Label)
	assert.Equal(t, "Serious warning text", drug.Label.BoxedWarning)
	assert.Equal(t, "Novartis", drug.Label.Manufacturer)
	assert.Nil(t, drug.Shortage)
	require.Len(t, drug.Approvals, 1)
	assert.Equal(t, "NDA021588", drug.Approvals[0].ApplicationNumber)
	assert.Equal(t, "GLEEVEC", drug.Approvals[0].BrandName)
	require.Len(t, drug.Interactions, 1)
	assert.Equal(t, "Warfarin", drug.Interactions[0].Drug)
}

func TestGetDrugByStructuredID(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total": 1, "hits": [` + imatinibHit + `]}`))
	}))
	defer srv.Close()
	svc := newTestService(t, map[string]string{"MYCHEM": srv.URL})

	_, err := svc.GetDrug(context.Background(), "CHEMBL941", nil)
	require.NoError(t, err)
	assert.Equal(t, `chembl.molecule_chembl_id:"CHEMBL941"`, gotQuery)

	_, err = svc.GetDrug(context.Background(), "db00619", nil)
	require.NoError(t, err)
	assert.Equal(t, `drugbank.id:"DB00619"`, gotQuery)
}

func TestSearchDrugs(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total": 1, "hits": [` + imatinibHit + `]}`))
	}))
	defer srv.Close()
	svc := newTestService(t, map[string]string{"MYCHEM": srv.URL})

	page, err := svc.SearchDrugs(context.Background(), &domain.DrugSearchFilters{
		Target:   "abl1",
		Approved: true,
	}, 10, 0)
	require.NoError(t, err)
	assert.Contains(t, gotQuery, `drugbank.targets.gene_name:"ABL1"`)
	assert.Contains(t, gotQuery, "chembl.max_phase:4")
	require.Len(t, page.Results, 1)
	assert.Equal(t, "IMATINIB", page.Results[0].Name)
	require.NotNil(t, page.Total)
	assert.Equal(t, 1, *page.Total)
}

func TestSearchDrugsRequiresFilter(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.SearchDrugs(context.Background(), &domain.DrugSearchFilters{}, 10, 0)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "Query requires at least one filter")
}
