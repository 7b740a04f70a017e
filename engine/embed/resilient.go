package embed

import (
	"context"

	"github.com/investiq-ai/investiq/pkg/resilience"
)

// Resilient wraps a Client with a circuit breaker so a misbehaving
// embedding backend trips fast instead of stalling every retrieval.
type Resilient struct {
	inner   Client
	breaker *resilience.Breaker
}

// WithBreaker wraps client with the given circuit breaker.
func WithBreaker(client Client, breaker *resilience.Breaker) *Resilient {
	return &Resilient{inner: client, breaker: breaker}
}

// Embed implements Client.
func (r *Resilient) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := r.breaker.Call(ctx, func(ctx context.Context) error {
		var err error
		out, err = r.inner.Embed(ctx, text)
		return err
	})
	return out, err
}

// EmbedBatch implements Client.
func (r *Resilient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := r.breaker.Call(ctx, func(ctx context.Context) error {
		var err error
		out, err = r.inner.EmbedBatch(ctx, texts)
		return err
	})
	return out, err
}
