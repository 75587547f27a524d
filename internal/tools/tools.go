package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kayz/sourcerouter/internal/docstore"
	"github.com/kayz/sourcerouter/internal/router"
	"github.com/kayz/sourcerouter/internal/search"
)

// Deps carries the shared components the tool handlers close over.
type Deps struct {
	Router *router.Router
	Docs   *docstore.Store
	Chain  *search.Chain
}

// Register adds the router tools to an MCP server.
func Register(s *server.MCPServer, deps Deps) {
	s.AddTool(mcp.NewTool("route_query",
		mcp.WithDescription("Route a query to local documents, web search or both, and return the retrieved context with sources"),
		mcp.WithString("query", mcp.Required(), mcp.Description("The user query to route")),
	), deps.routeQuery)

	s.AddTool(mcp.NewTool("routing_stats",
		mcp.WithDescription("Aggregate statistics over past routing decisions"),
	), deps.routingStats)

	s.AddTool(mcp.NewTool("web_search",
		mcp.WithDescription("Search the web through the provider fallback chain"),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results")),
	), deps.webSearch)
}

func (d Deps) routeQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, ok := req.Params.Arguments["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	var retriever router.LocalRetriever
	if d.Docs != nil {
		retriever = d.Docs
	}

	outcome := d.Router.Route(ctx, query, retriever, d.Docs.HasDocuments())

	payload, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode outcome: %v", err)), nil
	}

	return mcp.NewToolResultText(string(payload)), nil
}

func (d Deps) routingStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats := d.Router.Stats()

	payload, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode stats: %v", err)), nil
	}

	return mcp.NewToolResultText(string(payload)), nil
}

func (d Deps) webSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, ok := req.Params.Arguments["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	limit := 5
	if l, ok := req.Params.Arguments["limit"].(float64); ok && l > 0 {
		limit = int(l)
	}

	results := d.Chain.Search(ctx, query, limit)
	return mcp.NewToolResultText(FormatResults(results)), nil
}

// FormatResults renders a result list as readable text, one numbered
// block per result.
func FormatResults(results []search.Result) string {
	if len(results) == 0 {
		return "No search results available."
	}

	var sb strings.Builder
	for i, result := range results {
		sb.WriteString(fmt.Sprintf("%d. %s [%s]\n", i+1, result.Title, result.Source))
		if result.URL != "" {
			sb.WriteString("   " + result.URL + "\n")
		}
		if result.Snippet != "" {
			sb.WriteString("   " + result.Snippet + "\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
