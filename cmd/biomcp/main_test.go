package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newGeneUpstream answers both the MyGene query endpoint and the OpenTargets
// GraphQL endpoint (with an empty document, keeping the optional merge quiet).
func newGeneUpstream(t *testing.T, missing string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path != "/query" {
			_, _ = w.Write([]byte(`{"data": {}}`))
			return
		}
		symbol := strings.TrimPrefix(r.URL.Query().Get("q"), "symbol:")
		if symbol == missing {
			_, _ = w.Write([]byte(`{"hits": []}`))
			return
		}
		_, _ = w.Write([]byte(`{"total": 1, "hits": [{"symbol": "BRAF", "name": "B-Raf proto-oncogene"}]}`))
	}))
}

func setTestEnv(t *testing.T, bases map[string]string) {
	t.Helper()
	t.Setenv("BIOMCP_CACHE_DIR", t.TempDir())
	t.Setenv("BIOMCP_HOST_INTERVAL", "1ms")
	t.Setenv("BIOMCP_MAX_RETRIES", "1")
	for source, base := range bases {
		t.Setenv("BIOMCP_"+source+"_BASE", base)
	}
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"version"}, &stdout, &stderr)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout.String(), "biomcp 0.6.0")
}

func TestRunList(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"list"}, &stdout, &stderr)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout.String(), "gene")
	assert.Contains(t, stdout.String(), "adverse-event")
}

func TestRunSearchGeneJSON(t *testing.T) {
	srv := newGeneUpstream(t, "")
	defer srv.Close()
	setTestEnv(t, map[string]string{"MYGENE": srv.URL})

	var stdout, stderr bytes.Buffer
	code := run([]string{"--json", "search", "gene", "-q", "BRAF"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	var out struct {
		Results []struct {
			Symbol string `json:"symbol"`
		} `json:"results"`
		Pagination struct {
			Returned int `json:"returned"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	require.Len(t, out.Results, 1)
	assert.Equal(t, "BRAF", out.Results[0].Symbol)
	assert.Equal(t, 1, out.Pagination.Returned)
}

func TestRunGeneGet(t *testing.T) {
	srv := newGeneUpstream(t, "")
	defer srv.Close()
	setTestEnv(t, map[string]string{"MYGENE": srv.URL, "OPENTARGETS": srv.URL})

	var stdout, stderr bytes.Buffer
	code := run([]string{"gene", "BRAF"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())
	assert.Contains(t, stdout.String(), `"BRAF"`)
}

func TestRunGeneNotFound(t *testing.T) {
	srv := newGeneUpstream(t, "NOSUCH")
	defer srv.Close()
	setTestEnv(t, map[string]string{"MYGENE": srv.URL, "OPENTARGETS": srv.URL})

	var stdout, stderr bytes.Buffer
	code := run([]string{"gene", "NOSUCH"}, &stdout, &stderr)
	assert.Equal(t, exitBadRequest, code)
	assert.Empty(t, stdout.String())
	assert.NotEmpty(t, stderr.String())
}

func TestRunUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "down"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()
	setTestEnv(t, map[string]string{"MYGENE": srv.URL})

	var stdout, stderr bytes.Buffer
	code := run([]string{"search", "gene", "-q", "BRAF"}, &stdout, &stderr)
	assert.Equal(t, exitUpstream, code)
	assert.Empty(t, stdout.String())
}

func TestRunUnknownFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"search", "gene", "--bogus"}, &stdout, &stderr)
	assert.Equal(t, exitBadRequest, code)
}

func TestRunCacheDirLayout(t *testing.T) {
	srv := newGeneUpstream(t, "")
	defer srv.Close()
	setTestEnv(t, map[string]string{"MYGENE": srv.URL})
	cacheDir := t.TempDir()
	t.Setenv("BIOMCP_CACHE_DIR", cacheDir)

	var stdout, stderr bytes.Buffer
	code := run([]string{"search", "gene", "-q", "BRAF"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	// Response blobs live directly under <cache>/http.
	entries, err := os.ReadDir(filepath.Join(cacheDir, "http"))
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	for _, entry := range entries {
		assert.False(t, entry.IsDir())
	}
}

func TestServeCommandParses(t *testing.T) {
	var c CLI
	parser, err := kong.New(&c, kong.Writers(io.Discard, io.Discard))
	require.NoError(t, err)

	kctx, err := parser.Parse([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", kctx.Command())
}

func TestRunBatchValidation(t *testing.T) {
	setTestEnv(t, nil)

	var stdout, stderr bytes.Buffer
	code := run([]string{"batch", "chromosome", "1,2"}, &stdout, &stderr)
	assert.Equal(t, exitBadRequest, code)
	assert.Contains(t, stderr.String(), "Unknown batch entity")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"BRAF", "TP53"}, splitList("BRAF, TP53,"))
	assert.Empty(t, splitList(" , "))
}
