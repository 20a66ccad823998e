package knowledge

import (
	"context"
	"fmt"

	"github.com/ziadkadry99/agentrag/internal/chunker"
	"github.com/ziadkadry99/agentrag/internal/embeddings"
	"github.com/ziadkadry99/agentrag/internal/vectordb"
)

// Indexer splits documents into chunks, embeds them and upserts them into a
// vector store. It is safe for concurrent use. Concurrent Index calls for the
// same document are not serialized; the last upsert wins per chunk id.
type Indexer struct {
	splitter *chunker.Splitter
	embedder embeddings.Embedder
	store    vectordb.VectorStore
}

// NewIndexer creates an Indexer. It fails with chunker.ErrInvalidConfiguration
// when the chunking options are out of range.
func NewIndexer(opts chunker.Options, embedder embeddings.Embedder, store vectordb.VectorStore) (*Indexer, error) {
	splitter, err := chunker.New(opts)
	if err != nil {
		return nil, err
	}
	return &Indexer{splitter: splitter, embedder: embedder, store: store}, nil
}

// Index indexes text as the document (agentID, path, filename) and returns
// the number of chunks written. The caller must record that number: it is
// the only way to find the document's chunk ids again.
//
// Re-indexing identical input overwrites identical ids. If the store fails
// mid-batch, some chunks may already be written; nothing is rolled back.
func (ix *Indexer) Index(ctx context.Context, text, agentID, filename, path string) (int, error) {
	key := DocumentKey{AgentID: agentID, Path: path, Filename: filename}
	if err := validateKey(key); err != nil {
		return 0, opError("index", key, ErrInvalidDocument, err)
	}

	contents := ix.splitter.Split(text)
	if len(contents) == 0 {
		return 0, nil
	}

	vecs, err := ix.embedder.Embed(ctx, contents)
	if err == nil {
		err = embeddings.CheckBatch(ix.embedder, contents, vecs)
	}
	if err != nil {
		return 0, opError("index", key, embeddings.ErrEmbeddingUnavailable, err)
	}

	records := make([]vectordb.Record, len(contents))
	for i, content := range contents {
		records[i] = vectordb.Record{
			ID:        ChunkID(agentID, path, filename, i),
			Content:   content,
			Embedding: vecs[i],
			Metadata:  key.Metadata(i),
		}
	}

	if err := ix.store.Upsert(ctx, records); err != nil {
		return 0, opError("index", key, ErrIndexingFailure, err)
	}
	return len(records), nil
}

// Splitter returns the splitter used by the indexer.
func (ix *Indexer) Splitter() *chunker.Splitter {
	return ix.splitter
}

func validateKey(key DocumentKey) error {
	if key.AgentID == "" {
		return fmt.Errorf("agent id is required")
	}
	if key.Filename == "" {
		return fmt.Errorf("filename is required")
	}
	return nil
}
