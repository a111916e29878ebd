package httpx

import (
	"context"
	"net/url"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// hostLimiters keys token buckets by request host. Each host gets a minimum
// interval between requests; waiters on the same host are served FIFO by the
// limiter's reservation queue.
type hostLimiters struct {
	mu        sync.Mutex
	limiters  *lru.Cache[string, *rate.Limiter]
	interval  time.Duration
	overrides map[string]time.Duration
}

const maxTrackedHosts = 256

func newHostLimiters(interval time.Duration, overrides map[string]time.Duration) (*hostLimiters, error) {
	cache, err := lru.New[string, *rate.Limiter](maxTrackedHosts)
	if err != nil {
		return nil, err
	}
	return &hostLimiters{
		limiters:  cache,
		interval:  interval,
		overrides: overrides,
	}, nil
}

func (h *hostLimiters) intervalFor(host string) time.Duration {
	if d, ok := h.overrides[host]; ok {
		return d
	}
	return h.interval
}

func (h *hostLimiters) limiter(host string) *rate.Limiter {
	if lim, ok := h.limiters.Get(host); ok {
		return lim
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if lim, ok := h.limiters.Get(host); ok {
		return lim
	}
	lim := rate.NewLimiter(rate.Every(h.intervalFor(host)), 1)
	h.limiters.Add(host, lim)
	return lim
}

// Wait blocks until the host's token bucket grants a slot or ctx is done.
func (h *hostLimiters) Wait(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil
	}
	return h.limiter(u.Host).Wait(ctx)
}
