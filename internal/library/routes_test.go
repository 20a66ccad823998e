package library

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/agentrag/internal/chunker"
	"github.com/ziadkadry99/agentrag/internal/embeddings"
	"github.com/ziadkadry99/agentrag/internal/knowledge"
	"github.com/ziadkadry99/agentrag/internal/registry"
)

func newRouter(t *testing.T) (chi.Router, *fixture) {
	t.Helper()
	f := newFixture(t)
	r := chi.NewRouter()
	RegisterRoutes(r, f.lib)
	return r, f
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRoutes_AgentLifecycle(t *testing.T) {
	r, _ := newRouter(t)

	w := do(t, r, "POST", "/api/agents", map[string]string{"name": "support", "description": "helps"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create agent: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var agent registry.Agent
	if err := json.Unmarshal(w.Body.Bytes(), &agent); err != nil {
		t.Fatalf("unmarshal agent: %v", err)
	}

	w = do(t, r, "GET", "/api/agents", nil)
	var agents []registry.Agent
	if err := json.Unmarshal(w.Body.Bytes(), &agents); err != nil || len(agents) != 1 {
		t.Fatalf("list agents: got %s (%v)", w.Body.String(), err)
	}

	w = do(t, r, "GET", "/api/agents/"+agent.ID, nil)
	if w.Code != http.StatusOK {
		t.Errorf("get agent: expected 200, got %d", w.Code)
	}

	w = do(t, r, "DELETE", "/api/agents/"+agent.ID, nil)
	if w.Code != http.StatusOK {
		t.Errorf("delete agent: expected 200, got %d", w.Code)
	}
	w = do(t, r, "GET", "/api/agents/"+agent.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get deleted agent: expected 404, got %d", w.Code)
	}

	w = do(t, r, "POST", "/api/agents", map[string]string{"description": "no name"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("create without name: expected 400, got %d", w.Code)
	}
}

func TestRoutes_DocumentsAndSearch(t *testing.T) {
	r, f := newRouter(t)
	agentID := f.agent(t, "support")
	base := "/api/agents/" + agentID

	w := do(t, r, "POST", base+"/documents", map[string]string{
		"path": "faq/", "filename": "returns.md", "text": "Items can be returned within 30 days.",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add document: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = do(t, r, "POST", base+"/documents", map[string]string{
		"path": "faq/", "filename": "returns.md", "text": "Items can be returned within 30 days.",
	})
	if w.Code != http.StatusOK {
		t.Errorf("re-add unchanged document: expected 200, got %d", w.Code)
	}

	w = do(t, r, "GET", base+"/documents", nil)
	var docs []registry.DocumentRecord
	if err := json.Unmarshal(w.Body.Bytes(), &docs); err != nil || len(docs) != 1 || docs[0].TotalChunks != 1 {
		t.Fatalf("list documents: got %s (%v)", w.Body.String(), err)
	}

	w = do(t, r, "POST", base+"/search", map[string]any{"query": "returns", "k": 3})
	if w.Code != http.StatusOK {
		t.Fatalf("search: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var hits []knowledge.Hit
	if err := json.Unmarshal(w.Body.Bytes(), &hits); err != nil {
		t.Fatalf("unmarshal hits: %v", err)
	}
	if len(hits) != 1 || hits[0].Filename != "returns.md" || hits[0].Path != "faq/" {
		t.Errorf("unexpected hits: %+v", hits)
	}

	w = do(t, r, "DELETE", base+"/documents?path=faq/&filename=returns.md", nil)
	if w.Code != http.StatusOK {
		t.Errorf("delete document: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = do(t, r, "DELETE", base+"/documents?path=faq/&filename=returns.md", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("delete missing document: expected 404, got %d", w.Code)
	}
}

func TestRoutes_BadRequests(t *testing.T) {
	r, f := newRouter(t)
	agentID := f.agent(t, "support")
	base := "/api/agents/" + agentID

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"document without filename", "POST", base + "/documents", map[string]string{"text": "x"}, http.StatusBadRequest},
		{"delete without filename", "DELETE", base + "/documents", nil, http.StatusBadRequest},
		{"empty query", "POST", base + "/search", map[string]string{"query": ""}, http.StatusBadRequest},
		{"unknown agent documents", "GET", "/api/agents/ghost/documents", nil, http.StatusNotFound},
		{"unknown agent search", "POST", "/api/agents/ghost/search", map[string]string{"query": "q"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.method, tt.path, tt.body)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["error"] == "" {
				t.Errorf("expected JSON error body, got %s", w.Body.String())
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", ErrAgentNotFound), http.StatusNotFound},
		{ErrDocumentNotFound, http.StatusNotFound},
		{registry.ErrAmbiguousKey, http.StatusConflict},
		{chunker.ErrInvalidConfiguration, http.StatusBadRequest},
		{&knowledge.OpError{Op: "search", Kind: knowledge.ErrSearchFailure, Err: embeddings.ErrEmbeddingUnavailable}, http.StatusServiceUnavailable},
		{&knowledge.OpError{Op: "index", Kind: knowledge.ErrIndexingFailure, Err: errors.New("disk")}, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
