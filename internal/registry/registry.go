// Package registry keeps the bookkeeping the indexing core relies on: agents
// and, per indexed document, the chunk count needed to delete it again.
package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ziadkadry99/agentrag/internal/db"
)

// ErrAmbiguousKey is returned when a document's path+filename concatenation
// equals that of another document of the same agent with a different split.
// Both would map to the same chunk ids.
var ErrAmbiguousKey = errors.New("document key collides with an existing document")

// Agent is a retrieval scope: every document belongs to exactly one agent.
type Agent struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	SystemPrompt string    `json:"system_prompt"`
	CreatedAt    time.Time `json:"created_at"`
}

// DocumentRecord is the registry entry for an indexed document.
type DocumentRecord struct {
	ID          string    `json:"id"`
	AgentID     string    `json:"agent_id"`
	Path        string    `json:"path"`
	Filename    string    `json:"filename"`
	TotalChunks int       `json:"total_chunks"`
	ContentHash string    `json:"content_hash"`
	IndexedAt   time.Time `json:"indexed_at"`
}

// Store provides CRUD operations for agents and document records.
type Store struct {
	db *db.DB
}

// NewStore creates a new registry store.
func NewStore(d *db.DB) *Store {
	return &Store{db: d}
}

// CreateAgent inserts a new agent, assigning an ID if none is set.
func (s *Store) CreateAgent(ctx context.Context, a *Agent) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO agents (id, name, description, system_prompt, created_at) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Description, a.SystemPrompt, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating agent: %w", err)
	}
	return nil
}

// GetAgent retrieves an agent by ID. It returns nil, nil if none exists.
func (s *Store) GetAgent(ctx context.Context, id string) (*Agent, error) {
	a := &Agent{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, system_prompt, created_at FROM agents WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &a.Description, &a.SystemPrompt, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting agent: %w", err)
	}
	return a, nil
}

// ListAgents returns all agents ordered by name.
func (s *Store) ListAgents(ctx context.Context) ([]Agent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, system_prompt, created_at FROM agents ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("listing agents: %w", err)
	}
	defer rows.Close()

	var agents []Agent
	for rows.Next() {
		var a Agent
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.SystemPrompt, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning agent: %w", err)
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// DeleteAgent deletes an agent and, by cascade, its document records. It
// returns sql.ErrNoRows if the agent does not exist.
func (s *Store) DeleteAgent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM agents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting agent: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CheckKey returns ErrAmbiguousKey if another document of the agent has the
// same path+filename concatenation under a different split.
func (s *Store) CheckKey(ctx context.Context, agentID, path, filename string) error {
	var otherPath, otherName string
	err := s.db.QueryRowContext(ctx,
		`SELECT path, filename FROM documents
		 WHERE agent_id = ? AND path || filename = ? AND NOT (path = ? AND filename = ?)
		 LIMIT 1`,
		agentID, path+filename, path, filename,
	).Scan(&otherPath, &otherName)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking document key: %w", err)
	}
	return fmt.Errorf("%w: path %q filename %q vs path %q filename %q",
		ErrAmbiguousKey, path, filename, otherPath, otherName)
}

// UpsertDocument inserts or replaces the record for (agent, path, filename).
func (s *Store) UpsertDocument(ctx context.Context, d *DocumentRecord) error {
	if err := s.CheckKey(ctx, d.AgentID, d.Path, d.Filename); err != nil {
		return err
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.IndexedAt = time.Now().UTC()

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO documents (id, agent_id, path, filename, total_chunks, content_hash, indexed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(agent_id, path, filename) DO UPDATE SET
		   total_chunks=excluded.total_chunks, content_hash=excluded.content_hash, indexed_at=excluded.indexed_at
		 RETURNING id`,
		d.ID, d.AgentID, d.Path, d.Filename, d.TotalChunks, d.ContentHash, d.IndexedAt,
	).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("saving document record: %w", err)
	}
	return nil
}

const documentColumns = `id, agent_id, path, filename, total_chunks, content_hash, indexed_at`

func scanDocument(row interface{ Scan(...any) error }) (*DocumentRecord, error) {
	d := &DocumentRecord{}
	err := row.Scan(&d.ID, &d.AgentID, &d.Path, &d.Filename, &d.TotalChunks, &d.ContentHash, &d.IndexedAt)
	return d, err
}

// GetDocument retrieves a document record. It returns nil, nil if none exists.
func (s *Store) GetDocument(ctx context.Context, agentID, path, filename string) (*DocumentRecord, error) {
	d, err := scanDocument(s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE agent_id = ? AND path = ? AND filename = ?`,
		agentID, path, filename))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting document record: %w", err)
	}
	return d, nil
}

// ListDocuments returns the agent's document records ordered by path and filename.
func (s *Store) ListDocuments(ctx context.Context, agentID string) ([]DocumentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE agent_id = ? ORDER BY path, filename`, agentID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []DocumentRecord
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document record: %w", err)
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

// DeleteDocument deletes a document record. It returns sql.ErrNoRows if the
// record does not exist.
func (s *Store) DeleteDocument(ctx context.Context, agentID, path, filename string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE agent_id = ? AND path = ? AND filename = ?`, agentID, path, filename)
	if err != nil {
		return fmt.Errorf("deleting document record: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
