package pivot

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomcp/biomcp/internal/config"
	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/entity"
	"github.com/biomcp/biomcp/internal/httpx"
	"github.com/biomcp/biomcp/internal/sources"
)

// newTestPivot builds a pivot Service whose named sources point at test
// servers. Keys are the logical source names from the BIOMCP_<SOURCE>_BASE
// scheme.
func newTestPivot(t *testing.T, bases map[string]string) *Service {
	t.Helper()
	for source, base := range bases {
		t.Setenv("BIOMCP_"+source+"_BASE", base)
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	h, err := httpx.New(httpx.Config{
		CacheDir:     t.TempDir(),
		HostInterval: time.Millisecond,
		MaxRetries:   1,
	}, logger)
	require.NoError(t, err)
	entities := entity.New(sources.New(h, &config.Config{OncoKBToken: "test-token"}), t.TempDir(), logger)
	return New(entities, logger)
}

func TestGeneDrugs(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total": 1, "hits": [
			{"chembl": {"pref_name": "VEMURAFENIB", "molecule_chembl_id": "CHEMBL1229517"}}
		]}`))
	}))
	defer srv.Close()
	p := newTestPivot(t, map[string]string{"MYCHEM": srv.URL})

	page, err := p.GeneDrugs(context.Background(), "braf", 10, 0)
	require.NoError(t, err)
	assert.Contains(t, gotQuery, `drugbank.targets.gene_name:"BRAF"`)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "VEMURAFENIB", page.Results[0].Name)
}

func TestGenePivotsRequireSymbol(t *testing.T) {
	p := newTestPivot(t, nil)

	_, err := p.GeneTrials(context.Background(), "  ", 10, 0)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "Gene symbol is required")

	_, err = p.GenePathways(context.Background(), "")
	require.Error(t, err)
	assert.True(t, domain.IsInvalidArgument(err))
}

func TestVariantOncoKB(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/annotate/mutations/byProteinChange", r.URL.Path)
		assert.Equal(t, "BRAF", r.URL.Query().Get("hugoSymbol"))
		assert.Equal(t, "V600E", r.URL.Query().Get("alteration"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"oncogenic": "Oncogenic",
			"mutationEffect": {"knownEffect": "Gain-of-function"},
			"highestSensitiveLevel": "LEVEL_1",
			"treatments": [{
				"level": "LEVEL_1",
				"levelAssociatedCancerType": {"name": "Melanoma"},
				"drugs": [{"drugName": "Dabrafenib"}, {"drugName": "Trametinib"}]
			}]
		}`))
	}))
	defer srv.Close()
	p := newTestPivot(t, map[string]string{"ONCOKB": srv.URL})

	// Three-letter protein changes normalize before the annotation call.
	record, err := p.VariantOncoKB(context.Background(), "BRAF p.Val600Glu")
	require.NoError(t, err)
	assert.Equal(t, "BRAF", record.Gene)
	assert.Equal(t, "V600E", record.Alteration)
	assert.Equal(t, "Oncogenic", record.Oncogenic)
	assert.Equal(t, "Gain-of-function", record.MutationEffect)
	assert.Equal(t, "LEVEL_1", record.HighestSensitiveLevel)
	require.Len(t, record.Treatments, 1)
	assert.Equal(t, []string{"Dabrafenib", "Trametinib"}, record.Treatments[0].Drugs)
	assert.Equal(t, "1", record.Treatments[0].Level)
	assert.Equal(t, "Melanoma", record.Treatments[0].CancerType)
}

func TestVariantPivotsRejectUnparseableIDs(t *testing.T) {
	p := newTestPivot(t, nil)

	_, err := p.VariantOncoKB(context.Background(), "not a variant at all")
	require.Error(t, err)
	assert.True(t, domain.IsInvalidArgument(err))

	_, err = p.VariantArticles(context.Background(), "???", 10, 0)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidArgument(err))
}

func TestVariantArticlesGeneChange(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hitCount": 1, "resultList": {"result": [
			{"pmid": "23456789", "title": "BRAF V600E in melanoma", "pubYear": "2024"}
		]}}`))
	}))
	defer srv.Close()
	p := newTestPivot(t, map[string]string{"EUROPEPMC": srv.URL})

	page, err := p.VariantArticles(context.Background(), "BRAF V600E", 10, 0)
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "V600E")
	require.Len(t, page.Results, 1)
	assert.Equal(t, "23456789", page.Results[0].PMID)
}

func TestDrugAdverseEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("search"), `"vemurafenib"`)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"meta": {"results": {"total": 1}},
			"results": [{"patient": {"reaction": [{"reactionmeddrapt": "Pyrexia"}]}}]
		}`))
	}))
	defer srv.Close()
	p := newTestPivot(t, map[string]string{"OPENFDA": srv.URL})

	page, err := p.DrugAdverseEvents(context.Background(), "vemurafenib", 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Pyrexia", page.Results[0].Reaction)

	_, err = p.DrugAdverseEvents(context.Background(), "", 10, 0)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidArgument(err))
}

func TestDiseasePivotsRequireName(t *testing.T) {
	p := newTestPivot(t, nil)
	for _, call := range []func() error{
		func() error { _, err := p.DiseaseTrials(context.Background(), "", 10, 0); return err },
		func() error { _, err := p.DiseaseArticles(context.Background(), " ", 10, 0); return err },
		func() error { _, err := p.DiseaseDrugs(context.Background(), "", 10, 0); return err },
	} {
		err := call()
		require.Error(t, err)
		assert.True(t, domain.IsInvalidArgument(err))
		assert.Contains(t, err.Error(), "Disease name is required")
	}
}
