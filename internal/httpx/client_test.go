package httpx

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	if cfg.CacheDir == "" {
		cfg.CacheDir = t.TempDir()
	}
	if cfg.HostInterval == 0 {
		cfg.HostInterval = time.Millisecond
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 1
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	c, err := New(cfg, logger)
	require.NoError(t, err)
	return c
}

func TestCacheKeyIgnoresParameterOrder(t *testing.T) {
	a := CacheKey("GET", "https://api.example.org/query?b=2&a=1")
	b := CacheKey("GET", "https://api.example.org/query?a=1&b=2")
	assert.Equal(t, a, b)

	// Method casing does not matter, values do.
	assert.Equal(t, a, CacheKey("get", "https://api.example.org/query?b=2&a=1"))
	assert.NotEqual(t, a, CacheKey("GET", "https://api.example.org/query?a=1&b=3"))
	assert.NotEqual(t, a, CacheKey("POST", "https://api.example.org/query?a=1&b=2"))
}

func TestDoCachesUnderCacheDirHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := newTestClient(t, Config{CacheDir: dir})

	_, err := c.Do(context.Background(), Request{API: "test", URL: srv.URL, CacheTTL: time.Minute})
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "http"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	// Blobs live directly under <dir>/http, never nested deeper.
	assert.NoDirExists(t, filepath.Join(dir, "http", "http"))
}

func TestDoServesSecondRequestFromCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{"n": 1}`))
	}))
	defer srv.Close()
	c := newTestClient(t, Config{})

	req := Request{API: "test", URL: srv.URL, CacheTTL: time.Minute}

	first, err := c.Do(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := c.Do(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Body, second.Body)
	assert.Equal(t, 1, hits)
}

func TestDoNoCacheContextBypassesCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	c := newTestClient(t, Config{})

	req := Request{API: "test", URL: srv.URL, CacheTTL: time.Minute}
	_, err := c.Do(context.Background(), req)
	require.NoError(t, err)

	resp, err := c.Do(WithNoCache(context.Background()), req)
	require.NoError(t, err)
	assert.False(t, resp.FromCache)
	assert.Equal(t, 2, hits)
}

func TestDoRetriesServerErrors(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		if hits == 1 {
			http.Error(w, "down", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	c := newTestClient(t, Config{MaxRetries: 2})

	resp, err := c.Do(context.Background(), Request{API: "retry-5xx", URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, hits)
}

func TestDoDoesNotRetryClientErrors(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		http.Error(w, "no such thing", http.StatusNotFound)
	}))
	defer srv.Close()
	c := newTestClient(t, Config{MaxRetries: 3})

	resp, err := c.Do(context.Background(), Request{API: "no-retry-4xx", URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 1, hits)
}

func TestDoDecodesMislabeledGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(`{"compressed": true}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// Gzip bytes with no Content-Encoding header.
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()
	c := newTestClient(t, Config{})

	resp, err := c.Do(context.Background(), Request{API: "gzip", URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, `{"compressed": true}`, string(resp.Body))
}

func TestDoRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("x"), 256))
	}))
	defer srv.Close()
	c := newTestClient(t, Config{MaxBodyBytes: 64})

	_, err := c.Do(context.Background(), Request{API: "capped", URL: srv.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "byte cap")
}
