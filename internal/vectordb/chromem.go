package vectordb

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/ziadkadry99/agentrag/internal/embeddings"
)

// DefaultCollection is the collection name used when none is configured.
const DefaultCollection = "collection"

// ChromemStore implements VectorStore using chromem-go.
type ChromemStore struct {
	db *chromem.DB

	mu         sync.RWMutex // guards collection, swapped by Import
	collection *chromem.Collection
	name       string
	embedFunc  chromem.EmbeddingFunc
}

// NewChromemStore creates a new in-memory ChromemStore.
func NewChromemStore(embedder embeddings.Embedder, collection string) (*ChromemStore, error) {
	return newChromemStore(chromem.NewDB(), embedder, collection)
}

// OpenChromemStore opens (or creates) a ChromemStore persisted under dir.
// Every upsert and delete is written through to disk.
func OpenChromemStore(dir string, embedder embeddings.Embedder, collection string) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(dir, true)
	if err != nil {
		return nil, fmt.Errorf("open chromem db at %s: %w", dir, err)
	}
	return newChromemStore(db, embedder, collection)
}

func newChromemStore(db *chromem.DB, embedder embeddings.Embedder, collection string) (*ChromemStore, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	ef := embeddings.ToChromemFunc(embedder)

	col, err := db.GetOrCreateCollection(collection, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemStore{
		db:         db,
		collection: col,
		name:       collection,
		embedFunc:  ef,
	}, nil
}

func (s *ChromemStore) col() *chromem.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collection
}

func (s *ChromemStore) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	chromDocs := make([]chromem.Document, len(records))
	for i, r := range records {
		chromDocs[i] = chromem.Document{
			ID:        r.ID,
			Content:   r.Content,
			Metadata:  r.Metadata,
			Embedding: r.Embedding,
		}
	}

	if err := s.col().AddDocuments(ctx, chromDocs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("chromem add documents: %w", err)
	}
	return nil
}

func (s *ChromemStore) Delete(ctx context.Context, ids ...string) error {
	// chromem rejects an empty selector and may fail on unknown ids, so
	// narrow the set to ids that exist.
	col := s.col()
	existing := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := col.GetByID(ctx, id); err == nil {
			existing = append(existing, id)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	if err := col.Delete(ctx, nil, nil, existing...); err != nil {
		return fmt.Errorf("chromem delete: %w", err)
	}
	return nil
}

func (s *ChromemStore) Search(ctx context.Context, queryEmbedding []float32, where map[string]string, n int) ([]Match, error) {
	if n <= 0 {
		return nil, nil
	}

	col := s.col()

	// chromem-go requires nResults <= collection size.
	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	if n > count {
		n = count
	}

	if len(where) == 0 {
		where = nil
	}

	results, err := col.QueryEmbedding(ctx, queryEmbedding, n, where, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{
			Record: Record{
				ID:        r.ID,
				Content:   r.Content,
				Embedding: r.Embedding,
				Metadata:  r.Metadata,
			},
			Similarity: r.Similarity,
		}
	}
	sortMatches(matches)

	return matches, nil
}

func (s *ChromemStore) Count(ctx context.Context) (int, error) {
	return s.col().Count(), nil
}

func (s *ChromemStore) Ping(ctx context.Context) error {
	if s.db.GetCollection(s.name, s.embedFunc) == nil {
		return fmt.Errorf("chromem collection %q missing", s.name)
	}
	return ctx.Err()
}

// Close is a no-op: persistent stores write through on every change.
func (s *ChromemStore) Close() error {
	return nil
}

// Export writes a gzip-compressed snapshot of the whole database to path.
func (s *ChromemStore) Export(ctx context.Context, path string) error {
	if err := s.db.ExportToFile(path, true, ""); err != nil {
		return fmt.Errorf("export to %s: %w", path, err)
	}
	return nil
}

// Import replaces the store's collection with the one in the snapshot at
// path. On a persistent store the previous documents are removed from disk
// as well. A snapshot without the collection leaves it empty.
func (s *ChromemStore) Import(ctx context.Context, path string) error {
	// Read the snapshot once up front so a bad file leaves the store intact.
	if err := chromem.NewDB().ImportFromFile(path, ""); err != nil {
		return fmt.Errorf("import from file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.DeleteCollection(s.name); err != nil {
		return fmt.Errorf("clear collection %s: %w", s.name, err)
	}
	if err := s.db.ImportFromFile(path, ""); err != nil {
		return fmt.Errorf("import from file: %w", err)
	}

	col, err := s.db.GetOrCreateCollection(s.name, nil, s.embedFunc)
	if err != nil {
		return fmt.Errorf("collection %s after import: %w", s.name, err)
	}
	s.collection = col
	return ctx.Err()
}
