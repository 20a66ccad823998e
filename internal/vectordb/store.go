package vectordb

import "context"

// VectorStore is the minimal store capability the indexing pipeline needs:
// upsert by id, delete by id set, and metadata-filtered similarity search.
type VectorStore interface {
	// Upsert inserts records, overwriting any existing record with the same ID.
	Upsert(ctx context.Context, records []Record) error

	// Delete removes the records with the given IDs. Unknown IDs are ignored.
	Delete(ctx context.Context, ids ...string) error

	// Search returns up to n records whose metadata contains every key/value
	// of where, ordered by decreasing similarity to queryEmbedding. Equal
	// similarities are ordered by ID.
	Search(ctx context.Context, queryEmbedding []float32, where map[string]string, n int) ([]Match, error)

	// Count returns the total number of records in the store.
	Count(ctx context.Context) (int, error)

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}
