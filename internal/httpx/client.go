// Package httpx is the shared HTTP substrate: a single pooled client wrapped
// with per-host rate limiting, TTL response caching, bounded retry with
// jittered backoff, per-source circuit breaking, size-capped reads, and gzip
// handling. All source clients go through it.
package httpx

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/biomcp/biomcp/internal/domain"
)

// Config controls the substrate. Zero values fall back to the documented
// defaults (30s timeout, 5s connect, 16 MiB body cap, 300ms host interval).
type Config struct {
	Timeout        time.Duration
	ConnectTimeout time.Duration
	MaxBodyBytes   int64
	CacheDir       string
	RedisURL       string
	HostInterval   time.Duration
	HostOverrides  map[string]time.Duration
	MaxRetries     int
	UserAgent      string
}

// Client is the shared substrate handle. It is immutable after New and safe
// for concurrent use.
type Client struct {
	http       *http.Client
	limiters   *hostLimiters
	cache      *responseCache
	breakers   *breakerRegistry
	maxBody    int64
	maxRetries int
	userAgent  string
	logger     *logrus.Logger
}

// Request is one upstream call. API is the logical source name used in
// errors, metrics, and breaker keys. CacheTTL of zero disables caching.
type Request struct {
	API      string
	Method   string
	URL      string
	Query    url.Values
	Header   http.Header
	Body     []byte
	CacheTTL time.Duration
}

// Response is the size-capped, gzip-decoded result of a Request.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	FromCache  bool
}

// New builds the shared client. It fails only when the cache backend cannot
// be initialized.
func New(cfg Config, logger *logrus.Logger) (*Client, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = 16 << 20
	}
	if cfg.HostInterval == 0 {
		cfg.HostInterval = 300 * time.Millisecond
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "biomcp/" + Version
	}
	if logger == nil {
		logger = logrus.New()
	}

	limiters, err := newHostLimiters(cfg.HostInterval, cfg.HostOverrides)
	if err != nil {
		return nil, &domain.HTTPClientInitError{Err: err}
	}
	cache, err := newResponseCache(cfg.CacheDir, cfg.RedisURL, logger)
	if err != nil {
		return nil, &domain.HTTPClientInitError{Err: err}
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: cfg.ConnectTimeout,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		http:       &http.Client{Transport: transport, Timeout: cfg.Timeout},
		limiters:   limiters,
		cache:      cache,
		breakers:   newBreakerRegistry(),
		maxBody:    cfg.MaxBodyBytes,
		maxRetries: cfg.MaxRetries,
		userAgent:  cfg.UserAgent,
		logger:     logger,
	}, nil
}

// Version is stamped by the build; the fallback keeps dev binaries honest.
var Version = "dev"

// Do runs the full request pipeline: rate limiter, cache, breaker, retry,
// transport, capped read. Non-2xx responses are returned to the caller, not
// converted to errors; only transport-level failures produce an error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	fullURL := req.URL
	if len(req.Query) > 0 {
		sep := "?"
		if strings.Contains(fullURL, "?") {
			sep = "&"
		}
		fullURL += sep + req.Query.Encode()
	}
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	cacheable := req.Method == http.MethodGet && req.CacheTTL > 0
	key := ""
	if cacheable {
		key = CacheKey(req.Method, fullURL)
		if !NoCache(ctx) {
			if entry, ok := c.cache.Get(ctx, key); ok {
				cacheHitsTotal.WithLabelValues(req.API).Inc()
				return &Response{
					StatusCode: entry.Status,
					Header:     headerFromMap(entry.Header),
					Body:       entry.Body,
					FromCache:  true,
				}, nil
			}
		}
	}

	if err := c.limiters.Wait(ctx, fullURL); err != nil {
		return nil, domain.NewAPIError(req.API, "rate limiter wait canceled: %v", err)
	}

	start := time.Now()
	result, err := c.breakers.get(req.API).Execute(func() (any, error) {
		return c.send(ctx, req, fullURL)
	})
	requestDuration.WithLabelValues(req.API).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(req.API, "error").Inc()
		return nil, domain.NewAPIError(req.API, "request failed: %v", err)
	}
	resp := result.(*Response)
	requestsTotal.WithLabelValues(req.API, statusClass(resp.StatusCode)).Inc()

	if cacheable && resp.StatusCode >= 200 && resp.StatusCode < 300 && ctx.Err() == nil {
		c.cache.Put(ctx, key, &cacheEntry{
			Status: resp.StatusCode,
			Header: headerToMap(resp.Header),
			Body:   resp.Body,
		}, req.CacheTTL)
	}
	return resp, nil
}

// send performs the retry loop. Transient failures (network error, 5xx, 429)
// retry with exponential backoff and jitter up to the configured cap; other
// statuses return immediately.
func (c *Client) send(ctx context.Context, req Request, fullURL string) (*Response, error) {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.maxRetries-1)), ctx)

	var resp *Response
	attempt := 0
	err := backoff.Retry(func() error {
		if attempt > 0 {
			retriesTotal.WithLabelValues(req.API).Inc()
		}
		attempt++

		httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, bytes.NewReader(req.Body))
		if err != nil {
			return backoff.Permanent(err)
		}
		for k, vs := range req.Header {
			for _, v := range vs {
				httpReq.Header.Add(k, v)
			}
		}
		if httpReq.Header.Get("Accept") == "" {
			httpReq.Header.Set("Accept", "application/json")
		}
		httpReq.Header.Set("User-Agent", c.userAgent)

		httpResp, err := c.http.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer httpResp.Body.Close()

		body, err := c.readCapped(httpResp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to read response body: %w", err))
		}
		resp = &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: body}

		if httpResp.StatusCode >= 500 || httpResp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("HTTP %d", httpResp.StatusCode)
		}
		return nil
	}, policy)

	if err != nil && resp == nil {
		return nil, err
	}
	return resp, nil
}

// readCapped reads at most maxBody+1 bytes and decodes gzip payloads that
// arrive without Content-Encoding (some mirrors mislabel them).
func (c *Client) readCapped(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, c.maxBody+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("response body exceeds %d byte cap", c.maxBody)
	}
	if len(body) >= 2 && body[0] == 0x1f && body[1] == 0x8b {
		zr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to decode gzip response: %w", err)
		}
		defer zr.Close()
		decoded, err := io.ReadAll(io.LimitReader(zr, c.maxBody+1))
		if err != nil {
			return nil, fmt.Errorf("failed to decode gzip response: %w", err)
		}
		if int64(len(decoded)) > c.maxBody {
			return nil, fmt.Errorf("response body exceeds %d byte cap", c.maxBody)
		}
		return decoded, nil
	}
	return body, nil
}

// CacheDir exposes the cache root for full-text downloads and health probes.
func (c *Client) CacheDir() string { return c.cache.dir }

// Logger exposes the shared logger for source clients.
func (c *Client) Logger() *logrus.Logger { return c.logger }

func headerToMap(h http.Header) map[string]string {
	keep := map[string]string{}
	for _, k := range []string{"Content-Type", "X-Total-Results", "Link"} {
		if v := h.Get(k); v != "" {
			keep[k] = v
		}
	}
	return keep
}

func headerFromMap(m map[string]string) http.Header {
	h := http.Header{}
	for k, v := range m {
		h.Set(k, v)
	}
	return h
}

// BodyExcerpt returns a short printable excerpt of a response body for error
// messages.
func BodyExcerpt(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > max {
		return s[:max] + "..."
	}
	if s == "" {
		return "(empty body)"
	}
	return s
}
