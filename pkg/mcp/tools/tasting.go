package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/validation"
)

// RegisterTastingTools registers the tasting-session MCP tools.
func RegisterTastingTools(s *server.MCPServer, deps *Deps) {
	registerRecordFeedbackTool(s, deps)
	registerAnalyzePreferencesTool(s, deps)
	registerPredictFavoriteTool(s, deps)
	registerSuggestNextBeerTool(s, deps)
	registerGetTastingOrderTool(s, deps)
}

func registerRecordFeedbackTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"record_feedback",
		mcp.WithDescription(
			"Record the customer's reaction to a beer at one tasting step "+
				"(appearance, aroma, taste, mouthfeel). Tags carry flavor notes "+
				"(citrus, coffee) and explicit attribute statements using a dimension "+
				"prefix: bitterness:high, alcohol:light, body:full, style:ipa. "+
				"Returns the updated preference profile and any resolved conflicts.",
		),
		mcp.WithString("session_id",
			mcp.Description("Tasting session id; omit to start a new session")),
		mcp.WithString("beer_id",
			mcp.Required(),
			mcp.Description("Beer id or name the feedback refers to")),
		mcp.WithString("step",
			mcp.Required(),
			mcp.Description("Tasting step: appearance, aroma, taste or mouthfeel"),
			mcp.Enum(models.StepAppearance, models.StepAroma, models.StepTaste, models.StepMouthfeel)),
		mcp.WithString("polarity",
			mcp.Required(),
			mcp.Description("Customer reaction: liked, disliked or neutral"),
			mcp.Enum(models.PolarityLiked, models.PolarityDisliked, models.PolarityNeutral)),
		mcp.WithArray("tags",
			mcp.Description("Flavor notes or attribute statements"),
			mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("note",
			mcp.Description("Verbatim customer comment")),
		mcp.WithNumber("rating",
			mcp.Description("Overall rating 1-5")),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		beerID, err := req.RequireString("beer_id")
		if err != nil {
			return nil, err
		}
		step, err := req.RequireString("step")
		if err != nil {
			return nil, err
		}
		polarity, err := req.RequireString("polarity")
		if err != nil {
			return nil, err
		}

		note := req.GetString("note", "")
		if note != "" {
			if err := validation.ScreenFreeText(note); err != nil {
				return nil, fmt.Errorf("note: %w", err)
			}
		}

		session, err := resolveSession(ctx, deps, req)
		if err != nil {
			return nil, err
		}

		event := models.NewFeedbackEvent(beerID, step, polarity, req.GetStringSlice("tags", nil), note)
		event.Rating = req.GetInt("rating", 0)

		profile, conflicts, err := deps.Preferences.RecordFeedback(ctx, session, event)
		if err != nil {
			return nil, fmt.Errorf("failed to record feedback: %w", err)
		}
		if err := saveSession(ctx, deps, session); err != nil {
			return nil, err
		}

		result := struct {
			SessionID string                    `json:"session_id"`
			Profile   *models.PreferenceProfile `json:"profile"`
			Conflicts []models.Conflict         `json:"conflicts,omitempty"`
			Evaluated int                       `json:"evaluated_beers"`
		}{
			SessionID: session.ID,
			Profile:   profile,
			Conflicts: conflicts,
			Evaluated: session.EvaluatedCount(),
		}
		return jsonResult(result)
	})
}

func registerAnalyzePreferencesTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"analyze_preferences",
		mcp.WithDescription(
			"Summarize the customer's preference profile: preferred styles, bitterness, "+
				"alcohol tolerance, body, and liked/disliked flavors. Requires at least "+
				"two evaluated beers.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Tasting session id")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		session, err := resolveSession(ctx, deps, req)
		if err != nil {
			return nil, err
		}

		profile, err := deps.Preferences.AnalyzePreferences(ctx, session)
		if err != nil {
			return nil, fmt.Errorf("failed to analyze preferences: %w", err)
		}
		return jsonResult(profile)
	})
}

func registerPredictFavoriteTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"predict_favorite",
		mcp.WithDescription(
			"Rank the tasted beers by compatibility with the customer's stated "+
				"preferences, best first. Requires at least two evaluated beers. "+
				"low_confidence is set when no stated preference matches any beer.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Tasting session id")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		session, err := resolveSession(ctx, deps, req)
		if err != nil {
			return nil, err
		}

		result, err := deps.Recommendations.PredictFavorite(ctx, session)
		if err != nil {
			return nil, fmt.Errorf("failed to predict favorite: %w", err)
		}
		return jsonResult(result)
	})
}

func registerSuggestNextBeerTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"suggest_next_beer",
		mcp.WithDescription(
			"Suggest the next beer to taste, lightest first, skipping beers the "+
				"session has already tasted.",
		),
		mcp.WithString("session_id",
			mcp.Description("Tasting session id; omit to start a new session")),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		session, err := resolveSession(ctx, deps, req)
		if err != nil {
			return nil, err
		}

		beer, err := deps.Recommendations.SuggestNext(ctx, session)
		if err != nil {
			return nil, fmt.Errorf("failed to suggest next beer: %w", err)
		}

		result := struct {
			SessionID string       `json:"session_id"`
			Beer      *models.Beer `json:"beer"`
			Tasted    int          `json:"tasted_so_far"`
		}{
			SessionID: session.ID,
			Beer:      beer,
			Tasted:    len(session.Tasted),
		}
		return jsonResult(result)
	})
}

func registerGetTastingOrderTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"get_tasting_order",
		mcp.WithDescription(
			"Return the full catalog in recommended tasting order, lightest to most "+
				"intense: ascending ABV, with IBU deciding between near-equal beers.",
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ordered, err := deps.Recommendations.TastingOrder(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to compute tasting order: %w", err)
		}

		result := struct {
			TastingOrder []models.Beer `json:"tasting_order"`
			Count        int           `json:"count"`
		}{
			TastingOrder: ordered,
			Count:        len(ordered),
		}
		return jsonResult(result)
	})
}
