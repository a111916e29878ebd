package httpx

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// cacheEntry is the stored envelope for one HTTP response. Body bytes are
// opaque; expiry is TTL-based, not LRU.
type cacheEntry struct {
	Status    int               `json:"status"`
	Header    map[string]string `json:"header,omitempty"`
	Body      []byte            `json:"body"`
	CachedAt  time.Time         `json:"cached_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// responseCache is a content-addressed response store: an on-disk tier that is
// always present, with an optional Redis tier in front when configured.
type responseCache struct {
	dir    string
	redis  *redis.Client
	logger *logrus.Logger
}

func newResponseCache(dir, redisURL string, logger *logrus.Logger) (*responseCache, error) {
	c := &responseCache{dir: dir, logger: logger}
	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, err
		}
		c.redis = redis.NewClient(opts)
	}
	return c, nil
}

// CacheKey derives a stable key from method plus the canonicalized URL: query
// parameters are sorted so logically identical requests collide.
func CacheKey(method, rawURL string) string {
	canonical := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		q := u.Query()
		keys := make([]string, 0, len(q))
		for k := range q {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		for _, k := range keys {
			vs := q[k]
			sort.Strings(vs)
			for _, v := range vs {
				if b.Len() > 0 {
					b.WriteByte('&')
				}
				b.WriteString(url.QueryEscape(k))
				b.WriteByte('=')
				b.WriteString(url.QueryEscape(v))
			}
		}
		u.RawQuery = b.String()
		canonical = u.String()
	}
	sum := sha256.Sum256([]byte(strings.ToUpper(method) + " " + canonical))
	return hex.EncodeToString(sum[:])
}

func (c *responseCache) path(key string) string {
	return filepath.Join(c.dir, "http", key)
}

// Get returns the cached entry for key when present and unexpired.
func (c *responseCache) Get(ctx context.Context, key string) (*cacheEntry, bool) {
	if c.redis != nil {
		if raw, err := c.redis.Get(ctx, "biomcp:http:"+key).Bytes(); err == nil {
			var entry cacheEntry
			if json.Unmarshal(raw, &entry) == nil && time.Now().Before(entry.ExpiresAt) {
				return &entry, true
			}
		}
	}

	raw, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(c.path(key))
		return nil, false
	}
	return &entry, true
}

// Put stores an entry with the given TTL. The disk write is atomic via a temp
// file plus rename so concurrent readers never see a torn blob.
func (c *responseCache) Put(ctx context.Context, key string, entry *cacheEntry, ttl time.Duration) {
	entry.CachedAt = time.Now()
	entry.ExpiresAt = entry.CachedAt.Add(ttl)

	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}

	if c.redis != nil {
		if err := c.redis.Set(ctx, "biomcp:http:"+key, raw, ttl).Err(); err != nil {
			c.logger.WithError(err).Debug("redis cache write failed")
		}
	}

	tmpDir := filepath.Join(c.dir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return
	}
	tmp, err := os.CreateTemp(tmpDir, "http-*")
	if err != nil {
		return
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return
	}
	if err := tmp.Close(); err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Join(c.dir, "http"), 0o755); err != nil {
		return
	}
	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		c.logger.WithError(err).Debug("disk cache write failed")
	}
}
