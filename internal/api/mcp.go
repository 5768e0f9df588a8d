package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hireloop/cvchat/internal/cvsearch"
)

// MCPSearcher abstracts CV search for the MCP layer.
type MCPSearcher interface {
	Handle(ctx context.Context, args json.RawMessage) (string, error)
}

// MCPIndex exposes index stats for the MCP layer.
type MCPIndex interface {
	Count() (int, error)
}

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Searcher MCPSearcher
	Index    MCPIndex
}

// NewMCPServer creates an MCP server exposing CV search to external clients.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"cvchat",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("cvchat — search the indexed candidate CVs by free-text query."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool(cvsearch.Name,
			mcp.WithDescription("Semantically search the indexed candidate CVs and return the most relevant passages grouped by candidate."),
			mcp.WithString("query", mcp.Description("Free-text search query"), mcp.Required()),
		),
		mcpSearchCVs(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"cv://index",
			"CV Index Stats",
			mcp.WithResourceDescription("Current size of the CV index as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceIndex(deps),
	)

	return s
}

func mcpSearchCVs(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		args, err := json.Marshal(map[string]string{"query": query})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal query: %v", err)), nil
		}

		result, err := deps.Searcher.Handle(ctx, args)
		if err != nil {
			return mcpError(fmt.Sprintf("search failed: %v", err)), nil
		}

		return mcpText(result), nil
	}
}

func mcpResourceIndex(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		count, err := deps.Index.Count()
		if err != nil {
			return nil, fmt.Errorf("failed to count index: %w", err)
		}

		b, err := json.Marshal(map[string]int{"chunks": count})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal stats: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
