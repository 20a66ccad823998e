package vectordb

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"
)

func TestFormatVector(t *testing.T) {
	if got := formatVector([]float32{1, 2.5, -0.125}); got != "[1,2.5,-0.125]" {
		t.Errorf("formatVector: got %s", got)
	}
	if got := formatVector(nil); got != "[]" {
		t.Errorf("formatVector(nil): got %s", got)
	}
}

func TestParseVector(t *testing.T) {
	v, err := parseVector("[0.5, -1,3e-2]")
	if err != nil {
		t.Fatalf("parseVector: %v", err)
	}
	want := []float32{0.5, -1, 0.03}
	if len(v) != len(want) {
		t.Fatalf("got %v, want %v", v, want)
	}
	for i := range want {
		if v[i] != want[i] {
			t.Errorf("element %d: got %v, want %v", i, v[i], want[i])
		}
	}

	for _, bad := range []string{"", "1,2", "[1,x]", "[1,2"} {
		if _, err := parseVector(bad); err == nil {
			t.Errorf("parseVector(%q): expected error", bad)
		}
	}
}

// TestPGVectorStore runs against a live PostgreSQL with pgvector when
// AGENTRAG_TEST_POSTGRES_DSN is set.
func TestPGVectorStore(t *testing.T) {
	dsn := os.Getenv("AGENTRAG_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("AGENTRAG_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	e := newMockEmbedder(16)
	table := fmt.Sprintf("agentrag_test_%d", time.Now().UnixNano())

	store, err := NewPGVectorStore(ctx, dsn, table, e.Dimensions())
	if err != nil {
		t.Fatalf("NewPGVectorStore: %v", err)
	}
	t.Cleanup(func() {
		store.pool.Exec(context.Background(), "DROP TABLE IF EXISTS "+store.table)
		store.Close()
	})

	if err := store.Upsert(ctx, []Record{
		e.record("a|x|0", "a", "alpha document"),
		e.record("a|x|1", "a", "beta document"),
		e.record("b|x|0", "b", "alpha document"),
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := store.Upsert(ctx, []Record{e.record("a|x|1", "a", "gamma document")}); err != nil {
		t.Fatalf("Upsert overwrite: %v", err)
	}
	if n, err := store.Count(ctx); err != nil || n != 3 {
		t.Fatalf("Count: got %d, %v", n, err)
	}

	matches, err := store.Search(ctx, e.vector("alpha document"), map[string]string{"agent_id": "a"}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches for agent a, got %d", len(matches))
	}
	if matches[0].ID != "a|x|0" {
		t.Errorf("best match: got %s", matches[0].ID)
	}
	if len(matches[0].Embedding) != 16 {
		t.Errorf("embedding not returned: %d dims", len(matches[0].Embedding))
	}

	if err := store.Delete(ctx, "a|x|0", "missing"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n, _ := store.Count(ctx); n != 2 {
		t.Errorf("Count after delete: got %d, want 2", n)
	}
}
