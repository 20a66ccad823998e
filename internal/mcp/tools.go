package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchDocumentsTool defines the search_documents MCP tool.
var searchDocumentsTool = mcp.NewTool("search_documents",
	mcp.WithDescription("Search an agent's indexed documents semantically. Returns diverse, relevant chunks with their source."),
	mcp.WithString("agent_id",
		mcp.Required(),
		mcp.Description("ID of the agent whose documents are searched"),
	),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("k",
		mcp.Description("Number of results to return (defaults to the server's retrieval.k)"),
	),
)

// listAgentsTool defines the list_agents MCP tool.
var listAgentsTool = mcp.NewTool("list_agents",
	mcp.WithDescription("List the agents that own document collections."),
)

// listDocumentsTool defines the list_documents MCP tool.
var listDocumentsTool = mcp.NewTool("list_documents",
	mcp.WithDescription("List the documents indexed for an agent with their chunk counts."),
	mcp.WithString("agent_id",
		mcp.Required(),
		mcp.Description("ID of the agent"),
	),
)

// addDocumentTool defines the add_document MCP tool.
var addDocumentTool = mcp.NewTool("add_document",
	mcp.WithDescription("Index a text document for an agent, replacing any previous version with the same path and filename."),
	mcp.WithString("agent_id",
		mcp.Required(),
		mcp.Description("ID of the agent"),
	),
	mcp.WithString("filename",
		mcp.Required(),
		mcp.Description("Document filename, e.g. returns.md"),
	),
	mcp.WithString("path",
		mcp.Description("Logical folder prefix, e.g. faq/"),
	),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Full document text"),
	),
)
