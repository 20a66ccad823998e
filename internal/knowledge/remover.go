package knowledge

import (
	"context"
	"fmt"

	"github.com/ziadkadry99/agentrag/internal/chunker"
	"github.com/ziadkadry99/agentrag/internal/vectordb"
)

// Remover deletes a document's chunks by recomputing their ids from the
// recorded chunk count. It never queries the store for ids, so a stale count
// leaves chunks behind or targets the wrong ordinals.
type Remover struct {
	store vectordb.VectorStore
}

func NewRemover(store vectordb.VectorStore) *Remover {
	return &Remover{store: store}
}

// Remove deletes chunks [0, totalChunks) of the document in one store call.
// Ids that no longer exist are ignored.
func (r *Remover) Remove(ctx context.Context, agentID, path, filename string, totalChunks int) error {
	key := DocumentKey{AgentID: agentID, Path: path, Filename: filename}
	if totalChunks < 0 {
		return opError("remove", key, chunker.ErrInvalidConfiguration,
			fmt.Errorf("total chunks must not be negative, got %d", totalChunks))
	}
	return r.RemoveRange(ctx, key, 0, totalChunks)
}

// RemoveRange deletes the chunks with ordinals [from, to). It is used to drop
// trailing chunks after a document is re-indexed into fewer chunks.
func (r *Remover) RemoveRange(ctx context.Context, key DocumentKey, from, to int) error {
	if err := validateKey(key); err != nil {
		return opError("remove", key, ErrInvalidDocument, err)
	}

	ids := ChunkIDRange(key, from, to)
	if len(ids) == 0 {
		return nil
	}
	if err := r.store.Delete(ctx, ids...); err != nil {
		return opError("remove", key, ErrDeletionFailure, err)
	}
	return nil
}
