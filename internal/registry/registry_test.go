package registry

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/ziadkadry99/agentrag/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return NewStore(d)
}

func createAgent(t *testing.T, s *Store, name string) *Agent {
	t.Helper()
	a := &Agent{Name: name, Description: name + " agent"}
	if err := s.CreateAgent(context.Background(), a); err != nil {
		t.Fatalf("CreateAgent: %v", err)
	}
	return a
}

func TestAgents_CRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	support := createAgent(t, s, "support")
	createAgent(t, s, "billing")
	if support.ID == "" {
		t.Fatal("expected generated ID")
	}

	got, err := s.GetAgent(ctx, support.ID)
	if err != nil {
		t.Fatalf("GetAgent: %v", err)
	}
	if got == nil || got.Name != "support" || got.Description != "support agent" {
		t.Fatalf("GetAgent: got %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	missing, err := s.GetAgent(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("GetAgent(missing): got %+v, %v", missing, err)
	}

	agents, err := s.ListAgents(ctx)
	if err != nil {
		t.Fatalf("ListAgents: %v", err)
	}
	if len(agents) != 2 || agents[0].Name != "billing" {
		t.Errorf("ListAgents: got %+v", agents)
	}

	if err := s.DeleteAgent(ctx, support.ID); err != nil {
		t.Fatalf("DeleteAgent: %v", err)
	}
	if err := s.DeleteAgent(ctx, support.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("second DeleteAgent: expected sql.ErrNoRows, got %v", err)
	}
}

func TestDocuments_UpsertAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a := createAgent(t, s, "support")

	rec := &DocumentRecord{AgentID: a.ID, Path: "docs/", Filename: "faq.md", TotalChunks: 3, ContentHash: "h1"}
	if err := s.UpsertDocument(ctx, rec); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	firstID := rec.ID

	update := &DocumentRecord{AgentID: a.ID, Path: "docs/", Filename: "faq.md", TotalChunks: 5, ContentHash: "h2"}
	if err := s.UpsertDocument(ctx, update); err != nil {
		t.Fatalf("UpsertDocument (update): %v", err)
	}
	if update.ID != firstID {
		t.Errorf("upsert should keep the record ID: %s vs %s", update.ID, firstID)
	}

	got, err := s.GetDocument(ctx, a.ID, "docs/", "faq.md")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got == nil || got.TotalChunks != 5 || got.ContentHash != "h2" {
		t.Errorf("GetDocument: got %+v", got)
	}

	docs, err := s.ListDocuments(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("ListDocuments: expected 1 record, got %d", len(docs))
	}
}

func TestDocuments_AmbiguousKey(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a := createAgent(t, s, "support")
	b := createAgent(t, s, "other")

	// "a/" + "b.md" and "" + "a/b.md" both concatenate to "a/b.md".
	if err := s.UpsertDocument(ctx, &DocumentRecord{AgentID: a.ID, Path: "a/", Filename: "b.md", TotalChunks: 1}); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	err := s.UpsertDocument(ctx, &DocumentRecord{AgentID: a.ID, Path: "", Filename: "a/b.md", TotalChunks: 1})
	if !errors.Is(err, ErrAmbiguousKey) {
		t.Fatalf("expected ErrAmbiguousKey, got %v", err)
	}
	if err := s.CheckKey(ctx, a.ID, "a/", "b.md"); err != nil {
		t.Errorf("same key should not be ambiguous: %v", err)
	}
	if err := s.CheckKey(ctx, b.ID, "", "a/b.md"); err != nil {
		t.Errorf("other agents are independent: %v", err)
	}

	// "a/b" + "c" and "a" + "b/c" concatenate differently, so both are kept.
	if err := s.UpsertDocument(ctx, &DocumentRecord{AgentID: a.ID, Path: "a/b", Filename: "c", TotalChunks: 1}); err != nil {
		t.Fatalf("UpsertDocument a/b|c: %v", err)
	}
	if err := s.UpsertDocument(ctx, &DocumentRecord{AgentID: a.ID, Path: "a", Filename: "b/c", TotalChunks: 1}); err != nil {
		t.Errorf("non-colliding key rejected: %v", err)
	}
	docs, err := s.ListDocuments(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 3 {
		t.Errorf("expected 3 records, got %d", len(docs))
	}
}

func TestDocuments_DeleteAndCascade(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a := createAgent(t, s, "support")

	for _, name := range []string{"one.txt", "two.txt"} {
		if err := s.UpsertDocument(ctx, &DocumentRecord{AgentID: a.ID, Filename: name, TotalChunks: 1}); err != nil {
			t.Fatalf("UpsertDocument: %v", err)
		}
	}

	if err := s.DeleteDocument(ctx, a.ID, "", "one.txt"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if err := s.DeleteDocument(ctx, a.ID, "", "one.txt"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("second DeleteDocument: expected sql.ErrNoRows, got %v", err)
	}
	if got, _ := s.GetDocument(ctx, a.ID, "", "one.txt"); got != nil {
		t.Errorf("expected record to be gone, got %+v", got)
	}

	if err := s.DeleteAgent(ctx, a.ID); err != nil {
		t.Fatalf("DeleteAgent: %v", err)
	}
	docs, err := s.ListDocuments(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected cascade delete, %d records left", len(docs))
	}
}

func TestDocuments_UnknownAgent(t *testing.T) {
	s := newTestStore(t)
	err := s.UpsertDocument(context.Background(), &DocumentRecord{AgentID: "ghost", Filename: "f", TotalChunks: 1})
	if err == nil {
		t.Error("expected foreign key error for unknown agent")
	}
}
