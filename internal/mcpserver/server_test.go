package mcpserver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomcp/biomcp/internal/config"
	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/entity"
	"github.com/biomcp/biomcp/internal/httpx"
	"github.com/biomcp/biomcp/internal/pivot"
	"github.com/biomcp/biomcp/internal/sources"
)

func newTestServer(t *testing.T, bases map[string]string) *Server {
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
	entities := entity.New(sources.New(h, &config.Config{}), t.TempDir(), logger)
	pivots := pivot.New(entities, logger)
	return New(entities, pivots, t.TempDir(), "test", logger)
}

func TestSearchToolGene(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total": 1, "hits": [
			{"symbol": "BRAF", "name": "B-Raf proto-oncogene", "_score": 90.1}
		]}`))
	}))
	defer srv.Close()
	s := newTestServer(t, map[string]string{"MYGENE": srv.URL})

	result, structured, err := s.handleSearch(context.Background(), nil, SearchParams{Domain: "gene", Query: "BRAF"})
	require.NoError(t, err)
	require.False(t, result.IsError)

	env, ok := structured.(searchEnvelope)
	require.True(t, ok)
	results, ok := env.Results.([]domain.GeneSearchResult)
	require.True(t, ok)
	require.Len(t, results, 1)
	assert.Equal(t, "BRAF", results[0].Symbol)
	assert.Equal(t, 1, env.Pagination.Returned)
}

func TestSearchToolUnknownDomain(t *testing.T) {
	s := newTestServer(t, nil)

	result, structured, err := s.handleSearch(context.Background(), nil, SearchParams{Domain: "chromosome"})
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Nil(t, structured)
	assert.Contains(t, textOf(t, result), "Unknown search domain")
}

func TestSearchToolPivot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total": 1, "hits": [
			{"chembl": {"pref_name": "VEMURAFENIB", "molecule_chembl_id": "CHEMBL1229517"}}
		]}`))
	}))
	defer srv.Close()
	s := newTestServer(t, map[string]string{"MYCHEM": srv.URL})

	result, structured, err := s.handleSearch(context.Background(), nil, SearchParams{
		Domain: "gene", Pivot: "drugs", ID: "BRAF",
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	env, ok := structured.(searchEnvelope)
	require.True(t, ok)
	results, ok := env.Results.([]domain.DrugSearchResult)
	require.True(t, ok)
	require.Len(t, results, 1)
	assert.Equal(t, "VEMURAFENIB", results[0].Name)
}

func TestSearchToolUnknownPivot(t *testing.T) {
	s := newTestServer(t, nil)

	result, _, err := s.handleSearch(context.Background(), nil, SearchParams{
		Domain: "gene", Pivot: "proteins", ID: "BRAF",
	})
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "Unknown pivot")
}

func TestFetchToolBatchValidation(t *testing.T) {
	s := newTestServer(t, nil)

	ids := make([]string, 11)
	for i := range ids {
		ids[i] = "BRAF"
	}
	result, _, err := s.handleFetch(context.Background(), nil, FetchParams{Domain: "gene", IDs: ids})
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "Batch is limited")
}

func TestThinkTool(t *testing.T) {
	s := newTestServer(t, nil)

	result, _, err := s.handleThink(context.Background(), nil, ThinkParams{})
	require.NoError(t, err)
	require.True(t, result.IsError)

	_, _, err = s.handleThink(context.Background(), nil, ThinkParams{Thought: "start with the gene"})
	require.NoError(t, err)
	_, structured, err := s.handleThink(context.Background(), nil, ThinkParams{Thought: "then pivot to trials"})
	require.NoError(t, err)
	out, ok := structured.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2, out["thought_count"])
}

func TestHTTPHandlerRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	ts := httptest.NewServer(s.HTTPHandler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"status":"ok"`)

	metrics, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	assert.Equal(t, http.StatusOK, metrics.StatusCode)
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}
