package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/agentrag/internal/knowledge"
	"github.com/ziadkadry99/agentrag/internal/registry"
)

// handleSearchDocuments runs an agent-scoped search and formats the hits
// for the calling model.
func (s *Server) handleSearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentID, err := request.RequireString("agent_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: agent_id"), nil
	}
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	k := request.GetInt("k", 0)

	hits, err := s.lib.Search(ctx, agentID, query, k)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	return mcp.NewToolResultText(knowledge.FormatHits(hits)), nil
}

func (s *Server) handleListAgents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agents, err := s.lib.ListAgents(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list agents: %v", err)), nil
	}
	if len(agents) == 0 {
		return mcp.NewToolResultText("No agents found. Create one with `agentrag agent create`."), nil
	}
	return mcp.NewToolResultText(formatAgents(agents)), nil
}

func (s *Server) handleListDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentID, err := request.RequireString("agent_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: agent_id"), nil
	}

	docs, err := s.lib.ListDocuments(ctx, agentID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list documents: %v", err)), nil
	}
	if len(docs) == 0 {
		return mcp.NewToolResultText("No documents indexed for this agent."), nil
	}
	return mcp.NewToolResultText(formatDocuments(docs)), nil
}

func (s *Server) handleAddDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentID, err := request.RequireString("agent_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: agent_id"), nil
	}
	filename, err := request.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: filename"), nil
	}
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}
	path := request.GetString("path", "")

	res, err := s.lib.AddDocument(ctx, agentID, path, filename, text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("indexing failed: %v", err)), nil
	}
	if res.Skipped {
		return mcp.NewToolResultText(fmt.Sprintf("%s%s is unchanged (%d chunks).", path, filename, res.Record.TotalChunks)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Indexed %s%s as %d chunks.", path, filename, res.Record.TotalChunks)), nil
}

func formatAgents(agents []registry.Agent) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d agent(s):\n", len(agents)))
	for _, a := range agents {
		sb.WriteString(fmt.Sprintf("\n- %s (id: %s)\n", a.Name, a.ID))
		if a.Description != "" {
			sb.WriteString(fmt.Sprintf("  %s\n", a.Description))
		}
	}
	return sb.String()
}

func formatDocuments(docs []registry.DocumentRecord) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d document(s):\n", len(docs)))
	for _, d := range docs {
		sb.WriteString(fmt.Sprintf("- %s%s: %d chunk(s), indexed %s\n",
			d.Path, d.Filename, d.TotalChunks, d.IndexedAt.Format("2006-01-02 15:04")))
	}
	return sb.String()
}
