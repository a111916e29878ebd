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

// newGeneUpstream serves the MyGene query endpoint plus an empty GraphQL
// document for the OpenTargets merge GetGene always attempts.
func newGeneUpstream(t *testing.T, hits string, capture *map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path != "/query" {
			_, _ = w.Write([]byte(`{"data": {}}`))
			return
		}
		if capture != nil {
			got := map[string]string{}
			for key := range r.URL.Query() {
				got[key] = r.URL.Query().Get(key)
			}
			*capture = got
		}
		_, _ = w.Write([]byte(hits))
	}))
}

func TestGetGeneRequiresSymbol(t *testing.T) {
	s := newTestService(t, nil)

	_, err := s.GetGene(context.Background(), "  ", nil)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidArgument(err))
}

func TestGetGeneRejectsUnknownSection(t *testing.T) {
	s := newTestService(t, nil)

	_, err := s.GetGene(context.Background(), "BRAF", []string{"bogus"})
	require.Error(t, err)
	assert.True(t, domain.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "pathways")
}

func TestGetGeneBaseRecord(t *testing.T) {
	srv := newGeneUpstream(t, `{"total": 1, "hits": [{
		"symbol": "BRAF",
		"name": "B-Raf proto-oncogene",
		"entrezgene": 673,
		"summary": "Serine/threonine kinase.",
		"type_of_gene": "protein-coding",
		"genomic_pos": {"chr": "7", "start": 140713328, "end": 140924929}
	}]}`, nil)
	defer srv.Close()
	s := newTestService(t, map[string]string{"MYGENE": srv.URL, "OPENTARGETS": srv.URL})

	gene, err := s.GetGene(context.Background(), "BRAF", nil)
	require.NoError(t, err)
	assert.Equal(t, "BRAF", gene.Symbol)
	assert.Equal(t, "B-Raf proto-oncogene", gene.Name)
	// Empty OpenTargets document leaves the clinical context absent.
	assert.Empty(t, gene.Diseases)
	assert.Empty(t, gene.Drugs)
}

func TestGetGeneNotFound(t *testing.T) {
	srv := newGeneUpstream(t, `{"total": 0, "hits": []}`, nil)
	defer srv.Close()
	s := newTestService(t, map[string]string{"MYGENE": srv.URL, "OPENTARGETS": srv.URL})

	_, err := s.GetGene(context.Background(), "NOSUCH", nil)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestSearchGenesSymbolQuery(t *testing.T) {
	var gotQuery map[string]string
	srv := newGeneUpstream(t, `{"total": 1, "hits": [{"symbol": "BRAF", "name": "B-Raf proto-oncogene"}]}`, &gotQuery)
	defer srv.Close()
	s := newTestService(t, map[string]string{"MYGENE": srv.URL})

	page, err := s.SearchGenes(context.Background(), &domain.GeneSearchFilters{Query: "BRAF"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "BRAF", page.Results[0].Symbol)
	require.NotNil(t, page.Total)
	assert.Equal(t, 1, *page.Total)

	assert.Equal(t, "symbol:BRAF", gotQuery["q"])
	assert.Equal(t, "human", gotQuery["species"])
}

func TestSearchGenesFreeTextQuery(t *testing.T) {
	var gotQuery map[string]string
	srv := newGeneUpstream(t, `{"total": 0, "hits": []}`, &gotQuery)
	defer srv.Close()
	s := newTestService(t, map[string]string{"MYGENE": srv.URL})

	_, err := s.SearchGenes(context.Background(), &domain.GeneSearchFilters{Query: "kinase activity"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "kinase activity", gotQuery["q"])
}

func TestSearchGenesTypeFilterRechecked(t *testing.T) {
	var gotQuery map[string]string
	srv := newGeneUpstream(t, `{"total": 2, "hits": [
		{"symbol": "BRAF", "type_of_gene": "protein-coding"},
		{"symbol": "BRAFP1", "type_of_gene": "pseudo"}
	]}`, &gotQuery)
	defer srv.Close()
	s := newTestService(t, map[string]string{"MYGENE": srv.URL})

	page, err := s.SearchGenes(context.Background(), &domain.GeneSearchFilters{
		Query: "BRAF",
		Type:  "protein_coding",
	}, 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "BRAF", page.Results[0].Symbol)
	assert.Contains(t, gotQuery["q"], `type_of_gene:"protein-coding"`)
}

func TestSearchGenesChromosomeNarrowing(t *testing.T) {
	var gotQuery map[string]string
	srv := newGeneUpstream(t, `{"total": 1, "hits": [
		{"symbol": "BRAF", "genomic_pos": {"chr": "7"}}
	]}`, &gotQuery)
	defer srv.Close()
	s := newTestService(t, map[string]string{"MYGENE": srv.URL})

	page, err := s.SearchGenes(context.Background(), &domain.GeneSearchFilters{
		Query: "BRAF",
		Chrom: "chr7",
	}, 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Contains(t, gotQuery["q"], "genomic_pos.chr:7")
}

func TestSearchGenesRejectsBadFilters(t *testing.T) {
	s := newTestService(t, nil)

	cases := []struct {
		name    string
		filters domain.GeneSearchFilters
		wantMsg string
	}{
		{"empty query", domain.GeneSearchFilters{}, "Query is required"},
		{"bad type", domain.GeneSearchFilters{Query: "BRAF", Type: "lincRNA"},
			"protein-coding, ncrna, pseudo"},
		{"bad chromosome", domain.GeneSearchFilters{Query: "BRAF", Chrom: "25"},
			"1-22, X, Y, MT"},
		{"bad go id", domain.GeneSearchFilters{Query: "BRAF", GO: "0004672"},
			"GO:0000000"},
		{"bad region", domain.GeneSearchFilters{Query: "BRAF", Region: "7-100"},
			"chr:start-end"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.SearchGenes(context.Background(), &tc.filters, 10, 0)
			require.Error(t, err)
			assert.True(t, domain.IsInvalidArgument(err))
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestParseRegionFilter(t *testing.T) {
	chrom, start, end, err := parseRegionFilter("chr7:140424943-140624564")
	require.NoError(t, err)
	assert.Equal(t, "7", chrom)
	assert.Equal(t, int64(140424943), start)
	assert.Equal(t, int64(140624564), end)

	_, _, _, err = parseRegionFilter("7:500-100")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start <= end")
}

func TestMygeneQueryTerm(t *testing.T) {
	assert.Equal(t, "symbol:TP53", mygeneQueryTerm("TP53"))
	assert.Equal(t, "symbol:BRAF-1", mygeneQueryTerm("BRAF-1"))
	assert.Equal(t, `tumor suppressor`, mygeneQueryTerm("tumor suppressor"))
	assert.Equal(t, `p53 \(human\)`, mygeneQueryTerm("p53 (human)"))
}
