package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"cryptotracker/internal/fetcher"
)

// Limiter paces outbound requests to each endpoint so the client stays under
// the remote quota even before the server starts answering 429.
type Limiter struct {
	limiters map[fetcher.Endpoint]*rate.Limiter
	mu       sync.RWMutex
}

// New creates a limiter allowing rps requests per second per endpoint.
// A non-positive rps disables pacing.
func New(rps float64) *Limiter {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}

	l := &Limiter{limiters: make(map[fetcher.Endpoint]*rate.Limiter)}
	for _, e := range []fetcher.Endpoint{fetcher.EndpointPrimary, fetcher.EndpointBackup} {
		l.limiters[e] = rate.NewLimiter(limit, 1)
	}
	return l
}

// Wait blocks until the rate limiter permits a request to the given endpoint.
// It returns an error if the context is canceled before the request can proceed.
func (l *Limiter) Wait(ctx context.Context, endpoint fetcher.Endpoint) error {
	l.mu.RLock()
	limiter, exists := l.limiters[endpoint]
	l.mu.RUnlock()

	if !exists {
		// If no limiter exists for this endpoint, allow the request without limiting
		return nil
	}

	return limiter.Wait(ctx)
}

// Allow reports whether a request to the given endpoint may happen now.
func (l *Limiter) Allow(endpoint fetcher.Endpoint) bool {
	l.mu.RLock()
	limiter, exists := l.limiters[endpoint]
	l.mu.RUnlock()

	if !exists {
		return true
	}

	return limiter.Allow()
}
