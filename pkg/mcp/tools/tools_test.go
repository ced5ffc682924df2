package tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/catalog"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/services"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/sessions"
)

func newTestDeps(t *testing.T) *Deps {
	t.Helper()

	ibuLow, ibuHigh := 15, 60
	beers := []models.Beer{
		{ID: "lager-clara", Name: "Lager Clara", Style: "Lager", ABV: 4.0, IBU: &ibuLow, Description: "Crisp and clean"},
		{ID: "ipa-sol", Name: "IPA Sol", Style: "IPA", ABV: 6.5, IBU: &ibuHigh, Description: "Resinous citrus hops"},
	}
	fetcher := catalog.FetchFunc(func(ctx context.Context) ([]models.Beer, error) {
		return beers, nil
	})
	store := catalog.NewStore(catalog.StoreConfig{TTL: time.Hour}, fetcher, zap.NewNop())

	pairings, err := services.NewPairingService(store, zap.NewNop())
	require.NoError(t, err)
	catalogSvc := services.NewCatalogService(store, pairings, zap.NewNop())

	return &Deps{
		Catalog:         catalogSvc,
		Preferences:     services.NewPreferenceService(catalogSvc, zap.NewNop()),
		Recommendations: services.NewRecommendationService(catalogSvc, zap.NewNop()),
		Pairings:        pairings,
		Sales:           services.NewSalesService(catalogSvc, "https://cervezafortuna.com", zap.NewNop()),
		Sessions:        sessions.NewMemoryStore(0, zap.NewNop()),
		Logger:          zap.NewNop(),
	}
}

func newTestServer(t *testing.T) (*server.MCPServer, *Deps) {
	t.Helper()
	s := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
	deps := newTestDeps(t)
	RegisterCatalogTools(s, deps)
	RegisterTastingTools(s, deps)
	RegisterPairingTools(s, deps)
	RegisterSalesTools(s, deps)
	return s, deps
}

func listToolNames(t *testing.T, s *server.MCPServer) []string {
	t.Helper()
	result := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","method":"tools/list","id":1}`))

	resultBytes, err := json.Marshal(result)
	require.NoError(t, err)

	var response struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(resultBytes, &response))

	names := make([]string, 0, len(response.Result.Tools))
	for _, tool := range response.Result.Tools {
		names = append(names, tool.Name)
	}
	return names
}

// callTool invokes a tool through the server's JSON-RPC surface and returns
// the text content of the result.
func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) string {
	t.Helper()

	payload, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      name,
			"arguments": args,
		},
	})
	require.NoError(t, err)

	result := s.HandleMessage(context.Background(), payload)
	resultBytes, err := json.Marshal(result)
	require.NoError(t, err)

	var response struct {
		Result struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resultBytes, &response))
	require.Nil(t, response.Error, "tool call failed")
	require.NotEmpty(t, response.Result.Content)
	return response.Result.Content[0].Text
}

func TestRegisterToolsExposesFullSurface(t *testing.T) {
	s, _ := newTestServer(t)
	names := listToolNames(t, s)

	expected := []string{
		"list_catalog",
		"get_beer_details",
		"refresh_catalog",
		"record_feedback",
		"analyze_preferences",
		"predict_favorite",
		"suggest_next_beer",
		"get_tasting_order",
		"get_pairings",
		"recommend_by_food",
		"generate_discount_code",
		"prepare_purchase",
		"collect_shipping_info",
		"generate_payment_link",
	}
	for _, name := range expected {
		assert.Contains(t, names, name)
	}
}

func TestListCatalogTool(t *testing.T) {
	s, _ := newTestServer(t)

	out := callTool(t, s, "list_catalog", map[string]any{})

	var result struct {
		Beers  []models.Beer `json:"beers"`
		Source string        `json:"source"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Len(t, result.Beers, 2)
	assert.Equal(t, models.SourceLive, result.Source)
}

func TestRecordFeedbackToolCreatesSession(t *testing.T) {
	s, deps := newTestServer(t)

	out := callTool(t, s, "record_feedback", map[string]any{
		"beer_id":  "ipa-sol",
		"step":     models.StepTaste,
		"polarity": models.PolarityLiked,
		"tags":     []any{"citrus", "bitterness:high"},
	})

	var result struct {
		SessionID string                   `json:"session_id"`
		Profile   models.PreferenceProfile `json:"profile"`
		Evaluated int                      `json:"evaluated_beers"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.NotEmpty(t, result.SessionID)
	assert.Equal(t, 1, result.Evaluated)
	assert.Equal(t, []string{"IPA"}, result.Profile.PreferredStyles)

	// The session was persisted under the returned id.
	session, err := deps.Sessions.Get(context.Background(), result.SessionID)
	require.NoError(t, err)
	assert.True(t, session.HasTasted("ipa-sol"))
}

func TestRecordFeedbackToolReusesSession(t *testing.T) {
	s, _ := newTestServer(t)

	first := callTool(t, s, "record_feedback", map[string]any{
		"beer_id":  "lager-clara",
		"step":     models.StepTaste,
		"polarity": models.PolarityLiked,
	})
	var firstResult struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(first), &firstResult))

	second := callTool(t, s, "record_feedback", map[string]any{
		"session_id": firstResult.SessionID,
		"beer_id":    "ipa-sol",
		"step":       models.StepTaste,
		"polarity":   models.PolarityLiked,
	})
	var secondResult struct {
		SessionID string `json:"session_id"`
		Evaluated int    `json:"evaluated_beers"`
	}
	require.NoError(t, json.Unmarshal([]byte(second), &secondResult))
	assert.Equal(t, firstResult.SessionID, secondResult.SessionID)
	assert.Equal(t, 2, secondResult.Evaluated)
}

func TestGetTastingOrderTool(t *testing.T) {
	s, _ := newTestServer(t)

	out := callTool(t, s, "get_tasting_order", map[string]any{})

	var result struct {
		TastingOrder []models.Beer `json:"tasting_order"`
		Count        int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Equal(t, 2, result.Count)
	assert.Equal(t, "lager-clara", result.TastingOrder[0].ID, "lightest beer first")
}

func TestGetPairingsTool(t *testing.T) {
	s, _ := newTestServer(t)

	out := callTool(t, s, "get_pairings", map[string]any{"beer_id": "ipa-sol"})

	var result struct {
		Beer     string                  `json:"beer"`
		Pairings []models.FoodSuggestion `json:"pairings"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "IPA Sol", result.Beer)
	assert.GreaterOrEqual(t, len(result.Pairings), 3)
}

func TestGenerateDiscountCodeTool(t *testing.T) {
	s, _ := newTestServer(t)

	out := callTool(t, s, "generate_discount_code", map[string]any{"earned": false})

	var result models.DiscountCode
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 5, result.Percentage, "unearned codes are capped at 5 percent")
	assert.Contains(t, result.Code, "FORTUNA")
}
