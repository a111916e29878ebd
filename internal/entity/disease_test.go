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

func newMonarchServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/search":
			if r.URL.Query().Get("category") == "biolink:PhenotypicFeature" {
				_, _ = w.Write([]byte(`{"total": 2, "items": [
					{"id": "HP:0001251", "name": "Ataxia"},
					{"id": "HP:0002066", "name": "Gait ataxia"}
				]}`))
				return
			}
			_, _ = w.Write([]byte(`{"total": 1, "items": [{"id": "MONDO:0005105", "name": "melanoma"}]}`))
		case "/entity/MONDO:0005105":
			_, _ = w.Write([]byte(`{
				"id": "MONDO:0005105",
				"name": "melanoma",
				"description": "A malignant neoplasm composed of melanocytes.",
				"synonym": ["malignant melanoma", "Melanoma", "malignant melanoma"]
			}`))
		case "/association":
			_, _ = w.Write([]byte(`{"items": [{
				"subject": "HGNC:1097",
				"subject_label": "BRAF",
				"object": "MONDO:0005105",
				"object_label": "melanoma",
				"category": "biolink:CausalGeneToDiseaseAssociation"
			}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestGetDiseaseByName(t *testing.T) {
	srv := newMonarchServer(t)
	defer srv.Close()
	svc := newTestService(t, map[string]string{"MONARCH": srv.URL})

	disease, err := svc.GetDisease(context.Background(), "melanoma", []string{"genes"})
	require.NoError(t, err)
	assert.Equal(t, "MONDO:0005105", disease.ID)
	assert.Equal(t, "MONDO:0005105", disease.MondoID)
	assert.Equal(t, "melanoma", disease.Name)
	// Synonyms dedupe and drop the record name itself.
	assert.Equal(t, []string{"malignant melanoma"}, disease.Synonyms)
	require.Len(t, disease.Genes, 1)
	assert.Equal(t, "HGNC:1097", disease.Genes[0].ID)
	assert.Equal(t, "BRAF", disease.Genes[0].Name)
	assert.Empty(t, disease.Phenotypes)
}

func TestGetDiseaseRequiresID(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.GetDisease(context.Background(), "  ", nil)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidArgument(err))
}

func TestSearchDiseases(t *testing.T) {
	srv := newMonarchServer(t)
	defer srv.Close()
	svc := newTestService(t, map[string]string{"MONARCH": srv.URL})

	page, err := svc.SearchDiseases(context.Background(), &domain.DiseaseSearchFilters{Query: "melanoma"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "MONDO:0005105", page.Results[0].ID)
	require.NotNil(t, page.Total)
	assert.Equal(t, 1, *page.Total)

	_, err = svc.SearchDiseases(context.Background(), &domain.DiseaseSearchFilters{}, 10, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Query is required")
}

func TestSearchPhenotypes(t *testing.T) {
	srv := newMonarchServer(t)
	defer srv.Close()
	svc := newTestService(t, map[string]string{"MONARCH": srv.URL})

	page, err := svc.SearchPhenotypes(context.Background(), "ataxia", 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "HP:0001251", page.Results[0].ID)
	require.NotNil(t, page.Total)
	assert.Equal(t, 2, *page.Total)
}
