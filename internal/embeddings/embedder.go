package embeddings

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmbeddingUnavailable marks failures of the embedding provider: it is
// unreachable, misconfigured, or returned an unusable response. Callers may
// retry these.
var ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

// Embedder defines the interface for generating text embeddings.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}

// unavailable wraps err so that errors.Is(err, ErrEmbeddingUnavailable) holds.
func unavailable(provider string, err error) error {
	return fmt.Errorf("%s: %w: %w", provider, ErrEmbeddingUnavailable, err)
}

// unavailablef is unavailable with a formatted message instead of a cause.
func unavailablef(provider, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", provider, ErrEmbeddingUnavailable, fmt.Sprintf(format, args...))
}

// EmbedOne embeds a single text.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vecs, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return nil, unavailablef(e.Name(), "expected 1 embedding, got %d", len(vecs))
	}
	return vecs[0], nil
}

// CheckBatch verifies that vecs holds one non-empty vector per text and that
// all vectors share a dimension.
func CheckBatch(e Embedder, texts []string, vecs [][]float32) error {
	if len(vecs) != len(texts) {
		return unavailablef(e.Name(), "returned %d embeddings, expected %d", len(vecs), len(texts))
	}
	dims := -1
	for i, v := range vecs {
		if len(v) == 0 {
			return unavailablef(e.Name(), "empty embedding at index %d", i)
		}
		if dims >= 0 && len(v) != dims {
			return unavailablef(e.Name(), "embedding %d has %d dimensions, expected %d", i, len(v), dims)
		}
		dims = len(v)
	}
	return nil
}
