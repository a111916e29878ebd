package health

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomcp/biomcp/internal/config"
	"github.com/biomcp/biomcp/internal/httpx"
	"github.com/biomcp/biomcp/internal/sources"
)

var probeSources = []string{
	"MYGENE", "MYVARIANT", "MYCHEM", "PUBTATOR", "EUROPEPMC", "CTGOV",
	"NCI_CTS", "REACTOME", "UNIPROT", "OPENFDA", "CPIC", "MONARCH",
}

func newTestClients(t *testing.T, base string) *sources.Clients {
	t.Helper()
	for _, source := range probeSources {
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
	return sources.New(h, &config.Config{})
}

func newHealthyUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/query":
			_, _ = w.Write([]byte(`{"hits": [{"symbol": "BRAF"}]}`))
		case strings.HasPrefix(r.URL.Path, "/pair_view"):
			_, _ = w.Write([]byte(`[]`))
		case strings.HasPrefix(r.URL.Path, "/data/query/"):
			_, _ = w.Write([]byte(`{"stId": "R-HSA-5673001", "displayName": "RAF activation"}`))
		case strings.Contains(r.URL.Path, "europepmc") || strings.HasSuffix(r.URL.Path, "/search"):
			_, _ = w.Write([]byte(`{"hitCount": 0, "resultList": {"result": []}, "items": []}`))
		case strings.HasSuffix(r.URL.Path, "/studies"):
			_, _ = w.Write([]byte(`{"studies": []}`))
		case strings.HasSuffix(r.URL.Path, "/trials"):
			_, _ = w.Write([]byte(`{"total": 0, "data": []}`))
		default:
			_, _ = w.Write([]byte(`{"results": [], "hits": [], "items": []}`))
		}
	}))
}

func TestRunAllHealthy(t *testing.T) {
	srv := newHealthyUpstream(t)
	defer srv.Close()
	src := newTestClients(t, srv.URL)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	report := Run(context.Background(), src, t.TempDir(), false, logger)
	assert.Equal(t, 13, report.Total)
	assert.Equal(t, report.Total, report.Healthy)

	md := report.Markdown()
	assert.Contains(t, md, "| MyGene.info | OK |")
	assert.Contains(t, md, "| Cache directory | OK |")
	assert.Contains(t, md, "13/13 checks healthy.")
}

func TestRunAPIsOnlySkipsCacheCheck(t *testing.T) {
	srv := newHealthyUpstream(t)
	defer srv.Close()
	src := newTestClients(t, srv.URL)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	report := Run(context.Background(), src, t.TempDir(), true, logger)
	assert.Equal(t, 12, report.Total)
	for _, check := range report.Checks {
		assert.NotEqual(t, "Cache directory", check.Name)
	}
}

func TestRunReportsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "down"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()
	src := newTestClients(t, srv.URL)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	report := Run(context.Background(), src, t.TempDir(), false, logger)
	// Only the cache-directory check can pass.
	assert.Equal(t, 1, report.Healthy)
	assert.Contains(t, report.Markdown(), "FAIL")
}
