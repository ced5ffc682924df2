package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
)

// RegisterPairingTools registers the food-pairing MCP tools.
func RegisterPairingTools(s *server.MCPServer, deps *Deps) {
	registerGetPairingsTool(s, deps)
	registerRecommendByFoodTool(s, deps)
}

func registerGetPairingsTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"get_pairings",
		mcp.WithDescription(
			"Suggest foods that pair with a given beer, with a short explanation for "+
				"each pairing. Always returns at least three suggestions.",
		),
		mcp.WithString("beer_id",
			mcp.Required(),
			mcp.Description("Beer id or name from list_catalog")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		beerID, err := req.RequireString("beer_id")
		if err != nil {
			return nil, err
		}

		beer, err := deps.Catalog.GetBeer(ctx, beerID)
		if err != nil {
			return nil, fmt.Errorf("failed to get beer: %w", err)
		}

		result := struct {
			Beer     string                  `json:"beer"`
			Style    string                  `json:"style"`
			Pairings []models.FoodSuggestion `json:"pairings"`
		}{
			Beer:     beer.Name,
			Style:    beer.Style,
			Pairings: deps.Pairings.PairingsFor(*beer),
		}
		return jsonResult(result)
	})
}

func registerRecommendByFoodTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"recommend_by_food",
		mcp.WithDescription(
			"Recommend beers from the catalog that pair with a dish the customer "+
				"plans to eat. Matching tolerates singular/plural and partial names.",
		),
		mcp.WithString("food",
			mcp.Required(),
			mcp.Description("The dish or food, e.g. tacos, chocolate cake")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		food, err := req.RequireString("food")
		if err != nil {
			return nil, err
		}

		beers, err := deps.Pairings.BeersFor(ctx, food)
		if err != nil {
			return nil, fmt.Errorf("failed to match beers for food: %w", err)
		}

		result := struct {
			Food  string        `json:"food"`
			Beers []models.Beer `json:"beers"`
			Count int           `json:"count"`
		}{
			Food:  food,
			Beers: beers,
			Count: len(beers),
		}
		return jsonResult(result)
	})
}
