// Package library is the service layer over the indexing core: it keeps the
// registry's document records in step with the vector store.
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/ziadkadry99/agentrag/internal/knowledge"
	"github.com/ziadkadry99/agentrag/internal/registry"
	"github.com/ziadkadry99/agentrag/internal/walker"
)

var (
	ErrAgentNotFound    = errors.New("agent not found")
	ErrDocumentNotFound = errors.New("document not found")
)

// Library coordinates indexing, removal and search with the registry.
type Library struct {
	registry  *registry.Store
	indexer   *knowledge.Indexer
	remover   *knowledge.Remover
	retriever *knowledge.Retriever
}

// New creates a Library.
func New(reg *registry.Store, ix *knowledge.Indexer, rm *knowledge.Remover, rt *knowledge.Retriever) *Library {
	return &Library{registry: reg, indexer: ix, remover: rm, retriever: rt}
}

// AddResult reports the outcome of AddDocument.
type AddResult struct {
	Record  *registry.DocumentRecord `json:"record"`
	Skipped bool                     `json:"skipped"`
}

// CreateAgent registers a new agent.
func (l *Library) CreateAgent(ctx context.Context, name, description, systemPrompt string) (*registry.Agent, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: agent name is required", knowledge.ErrInvalidDocument)
	}
	a := &registry.Agent{Name: name, Description: description, SystemPrompt: systemPrompt}
	if err := l.registry.CreateAgent(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// GetAgent returns the agent or ErrAgentNotFound.
func (l *Library) GetAgent(ctx context.Context, agentID string) (*registry.Agent, error) {
	a, err := l.registry.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, agentID)
	}
	return a, nil
}

func (l *Library) ListAgents(ctx context.Context) ([]registry.Agent, error) {
	return l.registry.ListAgents(ctx)
}

// DeleteAgent removes every document of the agent from the vector store and
// the registry, then the agent itself.
func (l *Library) DeleteAgent(ctx context.Context, agentID string) error {
	if _, err := l.GetAgent(ctx, agentID); err != nil {
		return err
	}
	docs, err := l.registry.ListDocuments(ctx, agentID)
	if err != nil {
		return err
	}
	for _, d := range docs {
		if err := l.DeleteDocument(ctx, agentID, d.Path, d.Filename); err != nil {
			return err
		}
	}
	if err := l.registry.DeleteAgent(ctx, agentID); err != nil {
		return fmt.Errorf("deleting agent %s: %w", agentID, err)
	}
	return nil
}

// ListDocuments returns the agent's document records.
func (l *Library) ListDocuments(ctx context.Context, agentID string) ([]registry.DocumentRecord, error) {
	if _, err := l.GetAgent(ctx, agentID); err != nil {
		return nil, err
	}
	return l.registry.ListDocuments(ctx, agentID)
}

// AddDocument indexes text as (agentID, path, filename) and records its
// chunk count. Unchanged content is skipped. When the new version has fewer
// chunks than the recorded one, the trailing stale chunks are removed.
func (l *Library) AddDocument(ctx context.Context, agentID, path, filename, text string) (*AddResult, error) {
	if _, err := l.GetAgent(ctx, agentID); err != nil {
		return nil, err
	}
	if err := l.registry.CheckKey(ctx, agentID, path, filename); err != nil {
		return nil, err
	}

	hash := walker.HashBytes([]byte(text))
	existing, err := l.registry.GetDocument(ctx, agentID, path, filename)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ContentHash == hash {
		return &AddResult{Record: existing, Skipped: true}, nil
	}

	total, err := l.indexer.Index(ctx, text, agentID, filename, path)
	if err != nil {
		return nil, err
	}

	rec := &registry.DocumentRecord{AgentID: agentID, Path: path, Filename: filename, TotalChunks: total, ContentHash: hash}
	var staleErr error
	if existing != nil && existing.TotalChunks > total {
		key := knowledge.DocumentKey{AgentID: agentID, Path: path, Filename: filename}
		if staleErr = l.remover.RemoveRange(ctx, key, total, existing.TotalChunks); staleErr != nil {
			// Keep covering the stale ordinals so a later delete still finds them.
			log.Printf("library: removing stale chunks of %s: %v", key, staleErr)
			rec.TotalChunks = existing.TotalChunks
		}
	}

	if err := l.registry.UpsertDocument(ctx, rec); err != nil {
		return nil, err
	}
	if staleErr != nil {
		return &AddResult{Record: rec}, staleErr
	}
	return &AddResult{Record: rec}, nil
}

// DeleteDocument removes the document's chunks using its recorded chunk
// count, then its record.
func (l *Library) DeleteDocument(ctx context.Context, agentID, path, filename string) error {
	rec, err := l.registry.GetDocument(ctx, agentID, path, filename)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, knowledge.DocumentKey{AgentID: agentID, Path: path, Filename: filename})
	}

	if err := l.remover.Remove(ctx, agentID, path, filename, rec.TotalChunks); err != nil {
		return err
	}
	if err := l.registry.DeleteDocument(ctx, agentID, path, filename); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	return nil
}

// Search runs an agent-scoped diversity-aware search.
func (l *Library) Search(ctx context.Context, agentID, query string, k int) ([]knowledge.Hit, error) {
	if _, err := l.GetAgent(ctx, agentID); err != nil {
		return nil, err
	}
	return l.retriever.Search(ctx, query, agentID, k)
}
