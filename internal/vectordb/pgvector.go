package vectordb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultTable is the table used by PGVectorStore when none is configured.
const DefaultTable = "agent_chunks"

// PGVectorStore implements VectorStore on PostgreSQL with the pgvector
// extension. Metadata is stored as JSONB and filtered with containment.
type PGVectorStore struct {
	pool  *pgxpool.Pool
	table string
	dims  int
}

// NewPGVectorStore connects to dsn and ensures the chunk table exists with an
// embedding column of the given dimension.
func NewPGVectorStore(ctx context.Context, dsn, table string, dims int) (*PGVectorStore, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("pgvector: embedding dimensions must be positive, got %d", dims)
	}
	if table == "" {
		table = DefaultTable
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgvector: connect: %w", err)
	}

	s := &PGVectorStore{
		pool:  pool,
		table: pgx.Identifier{table}.Sanitize(),
		dims:  dims,
	}
	if err := s.migrate(ctx, table); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PGVectorStore) migrate(ctx context.Context, table string) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id        TEXT PRIMARY KEY,
			content   TEXT NOT NULL,
			metadata  JSONB NOT NULL DEFAULT '{}'::jsonb,
			embedding vector(%d) NOT NULL
		)`, s.table, s.dims),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s ((metadata->>'agent_id'))`,
			pgx.Identifier{table + "_agent_idx"}.Sanitize(), s.table),
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("pgvector: migrate: %w", err)
		}
	}
	return nil
}

func (s *PGVectorStore) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, content, metadata, embedding)
		VALUES ($1, $2, $3, $4::vector)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding`, s.table)

	for _, r := range records {
		if len(r.Embedding) != s.dims {
			return fmt.Errorf("pgvector: record %s has %d dimensions, table expects %d", r.ID, len(r.Embedding), s.dims)
		}
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, r := range records {
			md := r.Metadata
			if md == nil {
				md = map[string]string{}
			}
			batch.Queue(query, r.ID, r.Content, md, formatVector(r.Embedding))
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("pgvector: upsert: %w", err)
	}
	return nil
}

func (s *PGVectorStore) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, s.table)
	if _, err := s.pool.Exec(ctx, query, ids); err != nil {
		return fmt.Errorf("pgvector: delete: %w", err)
	}
	return nil
}

func (s *PGVectorStore) Search(ctx context.Context, queryEmbedding []float32, where map[string]string, n int) ([]Match, error) {
	if n <= 0 {
		return nil, nil
	}
	if where == nil {
		where = map[string]string{}
	}

	query := fmt.Sprintf(`SELECT id, content, metadata, embedding::text, 1 - (embedding <=> $1::vector)
		FROM %s
		WHERE metadata @> $2::jsonb
		ORDER BY embedding <=> $1::vector, id
		LIMIT $3`, s.table)

	rows, err := s.pool.Query(ctx, query, formatVector(queryEmbedding), where, n)
	if err != nil {
		return nil, fmt.Errorf("pgvector: search: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			m          Match
			embText    string
			similarity float64
		)
		if err := rows.Scan(&m.ID, &m.Content, &m.Metadata, &embText, &similarity); err != nil {
			return nil, fmt.Errorf("pgvector: scan: %w", err)
		}
		if m.Embedding, err = parseVector(embText); err != nil {
			return nil, fmt.Errorf("pgvector: record %s: %w", m.ID, err)
		}
		m.Similarity = float32(similarity)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgvector: search: %w", err)
	}

	sortMatches(matches)
	return matches, nil
}

func (s *PGVectorStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, fmt.Sprintf(`SELECT count(*) FROM %s`, s.table)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("pgvector: count: %w", err)
	}
	return n, nil
}

func (s *PGVectorStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PGVectorStore) Close() error {
	s.pool.Close()
	return nil
}

// formatVector renders v in pgvector's text input format, e.g. "[1,2.5,3]".
func formatVector(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

// parseVector parses pgvector's text output format.
func parseVector(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, errors.New("malformed vector literal")
	}
	body := s[1 : len(s)-1]
	if body == "" {
		return nil, nil
	}

	parts := strings.Split(body, ",")
	out := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("malformed vector element %q: %w", p, err)
		}
		out[i] = float32(f)
	}
	return out, nil
}
