package knowledge

import (
	"context"
	"fmt"

	"github.com/ziadkadry99/agentrag/internal/chunker"
	"github.com/ziadkadry99/agentrag/internal/embeddings"
	"github.com/ziadkadry99/agentrag/internal/vectordb"
)

const (
	DefaultK        = 2
	DefaultPoolSize = 20
	DefaultLambda   = 0.5
)

// RetrieverOptions tunes diversity re-ranking.
type RetrieverOptions struct {
	// K is the number of results returned when a search asks for k <= 0.
	// Zero means DefaultK.
	K int
	// PoolSize is the number of nearest neighbours fetched before re-ranking.
	// The pool is never smaller than k.
	PoolSize int
	// Lambda trades relevance (1) against diversity (0).
	Lambda float64
}

// DefaultRetrieverOptions returns the default k, pool size and lambda.
func DefaultRetrieverOptions() RetrieverOptions {
	return RetrieverOptions{K: DefaultK, PoolSize: DefaultPoolSize, Lambda: DefaultLambda}
}

// Validate checks that the options are in range.
func (o RetrieverOptions) Validate() error {
	if o.K < 0 {
		return fmt.Errorf("%w: k must be non-negative, got %d", chunker.ErrInvalidConfiguration, o.K)
	}
	if o.PoolSize <= 0 {
		return fmt.Errorf("%w: pool size must be positive, got %d", chunker.ErrInvalidConfiguration, o.PoolSize)
	}
	if o.Lambda < 0 || o.Lambda > 1 {
		return fmt.Errorf("%w: lambda must be in [0, 1], got %g", chunker.ErrInvalidConfiguration, o.Lambda)
	}
	return nil
}

// Retriever answers agent-scoped similarity queries with maximal marginal
// relevance re-ranking.
type Retriever struct {
	embedder embeddings.Embedder
	store    vectordb.VectorStore
	opts     RetrieverOptions
}

func NewRetriever(embedder embeddings.Embedder, store vectordb.VectorStore, opts RetrieverOptions) (*Retriever, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.K == 0 {
		opts.K = DefaultK
	}
	return &Retriever{embedder: embedder, store: store, opts: opts}, nil
}

// Search returns at most k chunks of agentID relevant to query, ordered by
// decreasing score with ties in nearest-neighbour order. k <= 0 means the
// configured default. An agent without chunks yields an empty, non-nil slice.
func (r *Retriever) Search(ctx context.Context, query, agentID string, k int) ([]Hit, error) {
	key := DocumentKey{AgentID: agentID}
	if agentID == "" {
		return nil, opError("search", key, ErrInvalidDocument, fmt.Errorf("agent id is required"))
	}
	if k <= 0 {
		k = r.opts.K
	}

	queryVec, err := embeddings.EmbedOne(ctx, r.embedder, query)
	if err != nil {
		return nil, opError("search", key, ErrSearchFailure, err)
	}

	pool := max(r.opts.PoolSize, k)
	candidates, err := r.store.Search(ctx, queryVec, map[string]string{MetaAgentID: agentID}, pool)
	if err != nil {
		return nil, opError("search", key, ErrSearchFailure, err)
	}

	hits := make([]Hit, 0, min(k, len(candidates)))
	for _, i := range selectMMR(candidates, k, r.opts.Lambda) {
		c := candidates[i]
		hits = append(hits, Hit{Score: c.Similarity, Chunk: chunkFromRecord(c.Record)})
	}
	return hits, nil
}
