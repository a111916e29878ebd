package httpx

import "context"

type noCacheKey struct{}

// WithNoCache marks the request scope as cache-bypassing. The flag is carried
// in the context so concurrent server requests do not interfere.
func WithNoCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, noCacheKey{}, true)
}

// NoCache reports whether the current scope bypasses the response cache.
func NoCache(ctx context.Context) bool {
	v, _ := ctx.Value(noCacheKey{}).(bool)
	return v
}
