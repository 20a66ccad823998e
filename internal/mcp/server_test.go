package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/agentrag/internal/knowledge"
	"github.com/ziadkadry99/agentrag/internal/library"
	"github.com/ziadkadry99/agentrag/internal/registry"
)

// fakeBackend implements Backend for testing.
type fakeBackend struct {
	agents  []registry.Agent
	docs    map[string][]registry.DocumentRecord
	hits    []knowledge.Hit
	err     error
	lastK   int
	added   []string
	skipped bool
}

func (f *fakeBackend) ListAgents(context.Context) ([]registry.Agent, error) {
	return f.agents, f.err
}

func (f *fakeBackend) ListDocuments(_ context.Context, agentID string) ([]registry.DocumentRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs[agentID], nil
}

func (f *fakeBackend) AddDocument(_ context.Context, agentID, path, filename, text string) (*library.AddResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.added = append(f.added, agentID+"|"+path+filename)
	rec := &registry.DocumentRecord{AgentID: agentID, Path: path, Filename: filename, TotalChunks: 1}
	return &library.AddResult{Record: rec, Skipped: f.skipped}, nil
}

func (f *fakeBackend) Search(_ context.Context, agentID, query string, k int) ([]knowledge.Hit, error) {
	f.lastK = k
	return f.hits, f.err
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		tool     mcp.Tool
		wantName string
	}{
		{searchDocumentsTool, "search_documents"},
		{listAgentsTool, "list_agents"},
		{listDocumentsTool, "list_documents"},
		{addDocumentTool, "add_document"},
	}

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	b := &fakeBackend{}
	srv := NewServer(b)
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.lib != b {
		t.Error("backend not set correctly")
	}
}

func TestHandleSearchDocuments(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{hits: []knowledge.Hit{{
		Score: 0.91,
		Chunk: knowledge.Chunk{Content: "Returns are accepted within 30 days.", Ordinal: 2, AgentID: "a", Path: "faq/", Filename: "returns.md"},
	}}}
	srv := NewServer(b)

	t.Run("basic search", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"agent_id": "a", "query": "returns"}

		result, err := srv.handleSearchDocuments(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		text := extractText(result)
		for _, want := range []string{"faq/returns.md (chunk 2)", "0.9100", "30 days"} {
			if !strings.Contains(text, want) {
				t.Errorf("result missing %q:\n%s", want, text)
			}
		}
		// Omitted k is left for the retriever to resolve from configuration.
		if b.lastK != 0 {
			t.Errorf("k = %d, want 0", b.lastK)
		}
	})

	t.Run("explicit k", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"agent_id": "a", "query": "returns", "k": float64(5)}
		if _, err := srv.handleSearchDocuments(ctx, req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.lastK != 5 {
			t.Errorf("k = %d, want 5", b.lastK)
		}
	})

	t.Run("missing agent", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"query": "returns"}
		result, err := srv.handleSearchDocuments(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing agent_id")
		}
	})

	t.Run("no hits", func(t *testing.T) {
		empty := NewServer(&fakeBackend{})
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"agent_id": "a", "query": "anything"}
		result, err := empty.handleSearchDocuments(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Error("empty results should not be an error")
		}
		if got := extractText(result); got != "No results found." {
			t.Errorf("unexpected text %q", got)
		}
	})

	t.Run("backend failure", func(t *testing.T) {
		failing := NewServer(&fakeBackend{err: errors.New("store offline")})
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"agent_id": "a", "query": "q"}
		result, err := failing.handleSearchDocuments(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError || !strings.Contains(extractText(result), "store offline") {
			t.Errorf("expected tool error mentioning the cause, got %q", extractText(result))
		}
	})
}

func TestHandleListAgentsAndDocuments(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{
		agents: []registry.Agent{{ID: "a1", Name: "support", Description: "Answers customer questions"}},
		docs: map[string][]registry.DocumentRecord{
			"a1": {{AgentID: "a1", Path: "faq/", Filename: "returns.md", TotalChunks: 3, IndexedAt: time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)}},
		},
	}
	srv := NewServer(b)

	result, err := srv.handleListAgents(ctx, mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text := extractText(result); !strings.Contains(text, "support (id: a1)") {
		t.Errorf("unexpected agents text:\n%s", text)
	}

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"agent_id": "a1"}
	result, err = srv.handleListDocuments(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text := extractText(result); !strings.Contains(text, "faq/returns.md: 3 chunk(s)") {
		t.Errorf("unexpected documents text:\n%s", text)
	}

	req.Params.Arguments = map[string]any{"agent_id": "other"}
	result, _ = srv.handleListDocuments(ctx, req)
	if text := extractText(result); text != "No documents indexed for this agent." {
		t.Errorf("unexpected text %q", text)
	}
}

func TestHandleAddDocument(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{}
	srv := NewServer(b)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"agent_id": "a", "path": "faq/", "filename": "returns.md", "text": "hello"}
	result, err := srv.handleAddDocument(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", extractText(result))
	}
	if len(b.added) != 1 || b.added[0] != "a|faq/returns.md" {
		t.Errorf("unexpected added documents %v", b.added)
	}

	b.skipped = true
	result, _ = srv.handleAddDocument(ctx, req)
	if !strings.Contains(extractText(result), "unchanged") {
		t.Errorf("expected unchanged message, got %q", extractText(result))
	}

	req.Params.Arguments = map[string]any{"agent_id": "a", "text": "hello"}
	result, _ = srv.handleAddDocument(ctx, req)
	if !result.IsError {
		t.Error("expected error for missing filename")
	}
}

// extractText gets the text content from a CallToolResult.
func extractText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}
