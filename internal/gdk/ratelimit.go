package gdk

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter throttles backend calls per method using a token bucket, so a
// backend that keeps answering "call" cannot drive a hot loop.
type RateLimiter struct {
	limiters   map[string]*rate.Limiter
	mu         sync.RWMutex
	rateLimit  rate.Limit
	burstLimit int
}

// NewRateLimiter creates a limiter allowing ratePerSecond calls per method
// with the given burst. A non-positive rate disables limiting.
func NewRateLimiter(ratePerSecond float64, burst int) *RateLimiter {
	limit := rate.Limit(ratePerSecond)
	if ratePerSecond <= 0 {
		limit = rate.Inf
	}
	return &RateLimiter{
		limiters:   make(map[string]*rate.Limiter),
		rateLimit:  limit,
		burstLimit: burst,
	}
}

// DefaultRateLimiter returns a rate limiter with default settings.
// Default: 20 calls/second per method, burst of 10.
func DefaultRateLimiter() *RateLimiter {
	return NewRateLimiter(20, 10)
}

// Allow reports whether a call to method may proceed now.
func (r *RateLimiter) Allow(method string) bool {
	return r.getLimiter(method).Allow()
}

// Wait blocks until a call to method is allowed or the context is canceled.
func (r *RateLimiter) Wait(ctx context.Context, method string) error {
	return r.getLimiter(method).Wait(ctx)
}

// getLimiter returns the limiter for the given method, creating one if needed.
func (r *RateLimiter) getLimiter(method string) *rate.Limiter {
	r.mu.RLock()
	limiter, exists := r.limiters[method]
	r.mu.RUnlock()

	if exists {
		return limiter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists = r.limiters[method]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(r.rateLimit, r.burstLimit)
	r.limiters[method] = limiter
	return limiter
}
