// Package embed defines the embedding client contract and its HTTP-backed
// adapters. An embedding model maps text to a fixed-dimensionality vector;
// the engine requires only that the mapping is deterministic for a given
// model version, so adapters never perturb the values they receive.
package embed

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/investiq-ai/investiq/engine/domain"
)

// Client maps text to dense embedding vectors.
//
// EmbedBatch applies the Embed contract per element, in order. Batch
// failure policy is whole-batch: the first failing element aborts the call.
type Client interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Config holds adapter-independent input policy.
type Config struct {
	// MaxInputChars caps the input length. Zero means no cap.
	MaxInputChars int
	// TruncateLongInput truncates over-length input instead of failing.
	TruncateLongInput bool
}

// prepare applies the input policy: empty text and (unless truncation is
// configured) over-length text fail closed with ErrEmbedding.
func (c Config) prepare(text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("embed: empty text: %w", domain.ErrEmbedding)
	}
	if c.MaxInputChars > 0 && len(text) > c.MaxInputChars {
		if !c.TruncateLongInput {
			return "", fmt.Errorf("embed: input of %d chars exceeds limit %d: %w",
				len(text), c.MaxInputChars, domain.ErrEmbedding)
		}
		// Back off to a rune boundary so the cut never produces invalid UTF-8.
		cut := c.MaxInputChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text, nil
}
