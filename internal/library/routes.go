package library

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/agentrag/internal/chunker"
	"github.com/ziadkadry99/agentrag/internal/embeddings"
	"github.com/ziadkadry99/agentrag/internal/knowledge"
	"github.com/ziadkadry99/agentrag/internal/registry"
)

// RegisterRoutes wires up the agent, document and search REST endpoints.
func RegisterRoutes(r chi.Router, lib *Library) {
	h := &routeHandler{lib: lib}
	r.Route("/api/agents", func(r chi.Router) {
		r.Post("/", h.createAgent)
		r.Get("/", h.listAgents)
		r.Route("/{agentID}", func(r chi.Router) {
			r.Get("/", h.getAgent)
			r.Delete("/", h.deleteAgent)
			r.Get("/documents", h.listDocuments)
			r.Post("/documents", h.addDocument)
			r.Delete("/documents", h.deleteDocument)
			r.Post("/search", h.search)
		})
	})
}

type routeHandler struct {
	lib *Library
}

type createAgentRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	SystemPrompt string `json:"system_prompt"`
}

type addDocumentRequest struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

type searchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

func (h *routeHandler) createAgent(w http.ResponseWriter, r *http.Request) {
	var req createAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	a, err := h.lib.CreateAgent(r.Context(), req.Name, req.Description, req.SystemPrompt)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *routeHandler) listAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.lib.ListAgents(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	if agents == nil {
		agents = []registry.Agent{}
	}
	writeJSON(w, http.StatusOK, agents)
}

func (h *routeHandler) getAgent(w http.ResponseWriter, r *http.Request) {
	a, err := h.lib.GetAgent(r.Context(), chi.URLParam(r, "agentID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *routeHandler) deleteAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "agentID")
	if err := h.lib.DeleteAgent(r.Context(), id); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "agent " + id + " deleted"})
}

func (h *routeHandler) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.lib.ListDocuments(r.Context(), chi.URLParam(r, "agentID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	if docs == nil {
		docs = []registry.DocumentRecord{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *routeHandler) addDocument(w http.ResponseWriter, r *http.Request) {
	var req addDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Filename == "" {
		writeError(w, http.StatusBadRequest, "filename is required")
		return
	}

	res, err := h.lib.AddDocument(r.Context(), chi.URLParam(r, "agentID"), req.Path, req.Filename, req.Text)
	if err != nil {
		writeErr(w, err)
		return
	}
	status := http.StatusCreated
	if res.Skipped {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}

func (h *routeHandler) deleteDocument(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filename := q.Get("filename")
	if filename == "" {
		writeError(w, http.StatusBadRequest, "filename query parameter is required")
		return
	}
	if err := h.lib.DeleteDocument(r.Context(), chi.URLParam(r, "agentID"), q.Get("path"), filename); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "document deleted"})
}

func (h *routeHandler) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	hits, err := h.lib.Search(r.Context(), chi.URLParam(r, "agentID"), req.Query, req.K)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hits)
}

// StatusFor maps an error to the HTTP status the API reports for it.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrAgentNotFound), errors.Is(err, ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrAmbiguousKey):
		return http.StatusConflict
	case errors.Is(err, chunker.ErrInvalidConfiguration), errors.Is(err, knowledge.ErrInvalidDocument):
		return http.StatusBadRequest
	case errors.Is(err, embeddings.ErrEmbeddingUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, knowledge.ErrIndexingFailure),
		errors.Is(err, knowledge.ErrDeletionFailure),
		errors.Is(err, knowledge.ErrSearchFailure):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeErr(w http.ResponseWriter, err error) {
	writeError(w, StatusFor(err), err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
