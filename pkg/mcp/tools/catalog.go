package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterCatalogTools registers the catalog-facing MCP tools.
func RegisterCatalogTools(s *server.MCPServer, deps *Deps) {
	registerListCatalogTool(s, deps)
	registerGetBeerDetailsTool(s, deps)
	registerRefreshCatalogTool(s, deps)
}

func registerListCatalogTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"list_catalog",
		mcp.WithDescription(
			"List every beer in the Cerveza Fortuna catalog with style, ABV and IBU. "+
				"The source field reports whether the data is live or a cached fallback.",
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap, err := deps.Catalog.List(ctx)
		if err != nil && len(snap.Beers) == 0 {
			return nil, fmt.Errorf("catalog unavailable: %w", err)
		}

		result := struct {
			Beers  any    `json:"beers"`
			Count  int    `json:"count"`
			Source string `json:"source"`
		}{
			Beers:  snap.Beers,
			Count:  len(snap.Beers),
			Source: snap.Source,
		}
		return jsonResult(result)
	})
}

func registerGetBeerDetailsTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"get_beer_details",
		mcp.WithDescription(
			"Get the full details of one beer: description, tasting notes and food pairings. "+
				"Accepts the beer id or its display name.",
		),
		mcp.WithString(
			"beer_id",
			mcp.Required(),
			mcp.Description("Beer id or name from list_catalog"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		beerID, err := req.RequireString("beer_id")
		if err != nil {
			return nil, err
		}

		details, err := deps.Catalog.GetBeerDetails(ctx, beerID)
		if err != nil {
			return nil, fmt.Errorf("failed to get beer details: %w", err)
		}
		return jsonResult(details)
	})
}

func registerRefreshCatalogTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"refresh_catalog",
		mcp.WithDescription(
			"Force a catalog refresh from the brewery website, bypassing the freshness window. "+
				"On failure the cached snapshot remains in service.",
		),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap, err := deps.Catalog.Refresh(ctx)

		result := struct {
			Count  int    `json:"count"`
			Source string `json:"source"`
			Error  string `json:"error,omitempty"`
		}{
			Count:  len(snap.Beers),
			Source: snap.Source,
		}
		if err != nil {
			result.Error = err.Error()
		}
		return jsonResult(result)
	})
}
