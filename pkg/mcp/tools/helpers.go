// Package tools provides the MCP tool implementations for cicerone-engine.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/apperrors"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/services"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/sessions"
)

// Deps contains the dependencies shared by every cicerone MCP tool.
type Deps struct {
	Catalog         services.CatalogService
	Preferences     services.PreferenceService
	Recommendations services.RecommendationService
	Pairings        services.PairingService
	Sales           services.SalesService
	Sessions        sessions.Store
	Logger          *zap.Logger
}

// resolveSession loads the session named in the tool call, creating a fresh
// one when session_id is absent or expired. Tools that mutate the session
// must call saveSession afterwards.
func resolveSession(ctx context.Context, deps *Deps, req mcp.CallToolRequest) (*models.TastingSession, error) {
	id := req.GetString("session_id", "")
	if id != "" {
		session, err := deps.Sessions.Get(ctx, id)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, apperrors.ErrSessionNotFound) {
			return nil, fmt.Errorf("load session: %w", err)
		}
	}

	session := models.NewTastingSession(uuid.New().String())
	if err := deps.Sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	deps.Logger.Info("MCP session started", zap.String("session_id", session.ID))
	return session, nil
}

// saveSession persists session mutations made by a tool.
func saveSession(ctx context.Context, deps *Deps, session *models.TastingSession) error {
	session.Touch()
	if err := deps.Sessions.Save(ctx, session); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// jsonResult marshals v into a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
