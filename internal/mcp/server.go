package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/agentrag/internal/knowledge"
	"github.com/ziadkadry99/agentrag/internal/library"
	"github.com/ziadkadry99/agentrag/internal/registry"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Backend is the part of the document library exposed as MCP tools.
// *library.Library satisfies it.
type Backend interface {
	ListAgents(ctx context.Context) ([]registry.Agent, error)
	ListDocuments(ctx context.Context, agentID string) ([]registry.DocumentRecord, error)
	AddDocument(ctx context.Context, agentID, path, filename, text string) (*library.AddResult, error)
	Search(ctx context.Context, agentID, query string, k int) ([]knowledge.Hit, error)
}

// Server wraps an MCP server that exposes agent document search tools.
type Server struct {
	lib Backend
	mcp *server.MCPServer
}

// NewServer creates a new MCP server backed by lib.
func NewServer(lib Backend) *Server {
	s := &Server{lib: lib}

	s.mcp = server.NewMCPServer(
		"agentrag",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchDocumentsTool, s.handleSearchDocuments)
	s.mcp.AddTool(listAgentsTool, s.handleListAgents)
	s.mcp.AddTool(listDocumentsTool, s.handleListDocuments)
	s.mcp.AddTool(addDocumentTool, s.handleAddDocument)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
