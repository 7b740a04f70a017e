package resilience

import (
	"context"
	"errors"

	"golang.org/x/time/rate"
)

// ErrRateLimited is returned by non-blocking limiter calls when no token is
// available.
var ErrRateLimited = errors.New("rate limited")

// Limiter is a token-bucket rate limiter backed by golang.org/x/time/rate.
type Limiter struct {
	bucket *rate.Limiter
}

// NewLimiter creates a limiter that admits rps events per second with the
// given burst capacity.
func NewLimiter(rps float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{bucket: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Allow reports whether an event may proceed now.
func (l *Limiter) Allow() bool { return l.bucket.Allow() }

// Wait blocks until a token is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error { return l.bucket.Wait(ctx) }

// Call runs f if a token is available, otherwise returns ErrRateLimited.
func (l *Limiter) Call(ctx context.Context, f func(context.Context) error) error {
	if !l.Allow() {
		return ErrRateLimited
	}
	return f(ctx)
}
