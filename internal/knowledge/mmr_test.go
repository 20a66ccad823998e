package knowledge

import (
	"context"
	"slices"
	"testing"

	"github.com/ziadkadry99/agentrag/internal/vectordb"
)

func match(id string, sim float32, emb ...float32) vectordb.Match {
	return vectordb.Match{
		Record: vectordb.Record{
			ID:        id,
			Content:   id,
			Embedding: emb,
			Metadata:  map[string]string{MetaAgentID: "a", MetaFilename: id, MetaOrdinal: "0"},
		},
		Similarity: sim,
	}
}

func TestSelectMMR_PrefersDiverseCandidates(t *testing.T) {
	candidates := []vectordb.Match{
		match("best", 0.95, 1, 0),
		match("near-duplicate", 0.94, 0.999, 0.04),
		match("different", 0.50, 0, 1),
	}

	if got := selectMMR(candidates, 2, 0.5); !slices.Equal(got, []int{0, 2}) {
		t.Errorf("lambda 0.5: got %v, want [0 2]", got)
	}
	if got := selectMMR(candidates, 2, 1); !slices.Equal(got, []int{0, 1}) {
		t.Errorf("lambda 1: got %v, want [0 1]", got)
	}
}

func TestSelectMMR_TiesFollowRank(t *testing.T) {
	candidates := []vectordb.Match{
		match("x", 0.7, 1, 0, 0),
		match("y", 0.7, 0, 1, 0),
		match("z", 0.7, 0, 0, 1),
	}
	if got := selectMMR(candidates, 2, 0.5); !slices.Equal(got, []int{0, 1}) {
		t.Errorf("got %v, want [0 1]", got)
	}
}

func TestSelectMMR_Bounds(t *testing.T) {
	candidates := []vectordb.Match{match("a", 0.9, 1, 0), match("b", 0.8, 0, 1)}
	if got := selectMMR(candidates, 5, 0.5); len(got) != 2 {
		t.Errorf("k larger than pool: got %v", got)
	}
	if got := selectMMR(nil, 2, 0.5); got != nil {
		t.Errorf("empty pool: got %v", got)
	}
	if got := selectMMR(candidates, 0, 0.5); got != nil {
		t.Errorf("k=0: got %v", got)
	}
}

// fixedStore serves a fixed candidate list regardless of the query.
type fixedStore struct {
	vectordb.VectorStore
	matches []vectordb.Match
	gotN    int
	gotWhen map[string]string
}

func (s *fixedStore) Search(_ context.Context, _ []float32, where map[string]string, n int) ([]vectordb.Match, error) {
	s.gotN, s.gotWhen = n, where
	return s.matches[:min(n, len(s.matches))], nil
}

func TestRetriever_DiversityAndOrdering(t *testing.T) {
	store := &fixedStore{matches: []vectordb.Match{
		match("best", 0.95, 1, 0),
		match("near-duplicate", 0.94, 0.999, 0.04),
		match("different", 0.50, 0, 1),
	}}
	r, err := NewRetriever(&mockEmbedder{dims: 2}, store, RetrieverOptions{PoolSize: 10, Lambda: 0.5})
	if err != nil {
		t.Fatalf("NewRetriever: %v", err)
	}

	hits, err := r.Search(context.Background(), "query", "a", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if store.gotN != 10 {
		t.Errorf("pool size: got %d, want 10", store.gotN)
	}
	if store.gotWhen[MetaAgentID] != "a" {
		t.Errorf("filter: got %v", store.gotWhen)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Filename != "best" || hits[1].Filename != "different" {
		t.Errorf("unexpected selection: %s, %s", hits[0].Filename, hits[1].Filename)
	}
	if hits[0].Score != 0.95 || hits[1].Score != 0.50 {
		t.Errorf("scores: got %v and %v", hits[0].Score, hits[1].Score)
	}
}

func TestRetriever_PoolNeverSmallerThanK(t *testing.T) {
	store := &fixedStore{}
	r, err := NewRetriever(&mockEmbedder{dims: 2}, store, RetrieverOptions{PoolSize: 3, Lambda: 0.5})
	if err != nil {
		t.Fatalf("NewRetriever: %v", err)
	}
	if _, err := r.Search(context.Background(), "query", "a", 8); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if store.gotN != 8 {
		t.Errorf("pool size: got %d, want 8", store.gotN)
	}
}

func TestRetriever_ConfiguredDefaultK(t *testing.T) {
	store := &fixedStore{matches: []vectordb.Match{
		match("north", 0.9, 1, 0),
		match("east", 0.8, 0, 1),
		match("south", 0.7, -1, 0),
		match("west", 0.6, 0, -1),
	}}

	r, err := NewRetriever(&mockEmbedder{dims: 2}, store, RetrieverOptions{K: 3, PoolSize: 10, Lambda: 0.5})
	if err != nil {
		t.Fatalf("NewRetriever: %v", err)
	}
	hits, err := r.Search(context.Background(), "query", "a", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 3 {
		t.Errorf("k=0 with K=3: got %d hits, want 3", len(hits))
	}

	// Without a configured K the package default applies.
	r, err = NewRetriever(&mockEmbedder{dims: 2}, store, RetrieverOptions{PoolSize: 10, Lambda: 0.5})
	if err != nil {
		t.Fatalf("NewRetriever: %v", err)
	}
	hits, err = r.Search(context.Background(), "query", "a", -1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != DefaultK {
		t.Errorf("k=-1 without K: got %d hits, want %d", len(hits), DefaultK)
	}
}
