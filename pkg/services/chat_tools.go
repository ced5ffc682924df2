package services

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/jsonutil"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/llm"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/validation"
)

// ToolDeps bundles the services the tool surface dispatches to.
type ToolDeps struct {
	Catalog         CatalogService
	Preferences     PreferenceService
	Recommendations RecommendationService
	Pairings        PairingService
	Sales           SalesService
	Logger          *zap.Logger
}

// sessionToolExecutor dispatches tool calls from the model against one
// tasting session. It is created per turn; the chat service persists the
// session after the turn completes.
type sessionToolExecutor struct {
	deps    ToolDeps
	session *models.TastingSession
	logger  *zap.Logger
}

// NewSessionToolExecutor binds the tool surface to a session for one turn.
func NewSessionToolExecutor(deps ToolDeps, session *models.TastingSession) llm.ToolExecutor {
	return &sessionToolExecutor{
		deps:    deps,
		session: session,
		logger:  deps.Logger.Named("tools"),
	}
}

var _ llm.ToolExecutor = (*sessionToolExecutor)(nil)

// ExecuteTool dispatches one tool call. Failures come back as errors; the
// llm client converts them to tool output the model can react to.
func (e *sessionToolExecutor) ExecuteTool(ctx context.Context, name, arguments string) (string, error) {
	e.logger.Debug("Tool dispatch",
		zap.String("tool", name),
		zap.String("session_id", e.session.ID))

	switch name {
	case "list_catalog":
		return e.listCatalog(ctx)
	case "get_beer_details":
		return e.getBeerDetails(ctx, arguments)
	case "suggest_next_beer":
		return e.suggestNextBeer(ctx)
	case "get_tasting_order":
		return e.getTastingOrder(ctx)
	case "record_feedback":
		return e.recordFeedback(ctx, arguments)
	case "analyze_preferences":
		return e.analyzePreferences(ctx)
	case "predict_favorite":
		return e.predictFavorite(ctx)
	case "get_pairings":
		return e.getPairings(ctx, arguments)
	case "recommend_by_food":
		return e.recommendByFood(ctx, arguments)
	case "generate_discount_code":
		return e.generateDiscountCode(ctx, arguments)
	case "prepare_purchase":
		return e.preparePurchase(ctx, arguments)
	case "collect_shipping_info":
		return e.collectShippingInfo(ctx, arguments)
	case "generate_payment_link":
		return e.generatePaymentLink(ctx, arguments)
	}
	return "", fmt.Errorf("unknown tool %q", name)
}

func (e *sessionToolExecutor) listCatalog(ctx context.Context) (string, error) {
	snap, err := e.deps.Catalog.List(ctx)
	if err != nil && len(snap.Beers) == 0 {
		return "", err
	}
	return toJSON(map[string]any{
		"beers":  snap.Beers,
		"source": snap.Source,
	})
}

func (e *sessionToolExecutor) getBeerDetails(ctx context.Context, arguments string) (string, error) {
	// Models occasionally send beer_id as a bare number.
	var args struct {
		BeerID json.RawMessage `json:"beer_id"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	details, err := e.deps.Catalog.GetBeerDetails(ctx, jsonutil.FlexibleStringValue(args.BeerID))
	if err != nil {
		return "", err
	}
	return toJSON(details)
}

func (e *sessionToolExecutor) suggestNextBeer(ctx context.Context) (string, error) {
	beer, err := e.deps.Recommendations.SuggestNext(ctx, e.session)
	if err != nil {
		return "", err
	}
	return toJSON(map[string]any{
		"beer":          beer,
		"tasted_so_far": len(e.session.Tasted),
	})
}

func (e *sessionToolExecutor) getTastingOrder(ctx context.Context) (string, error) {
	ordered, err := e.deps.Recommendations.TastingOrder(ctx)
	if err != nil {
		return "", err
	}
	return toJSON(map[string]any{"tasting_order": ordered})
}

func (e *sessionToolExecutor) recordFeedback(ctx context.Context, arguments string) (string, error) {
	var args struct {
		BeerID   json.RawMessage `json:"beer_id"`
		Step     string          `json:"step"`
		Polarity string          `json:"polarity"`
		Tags     json.RawMessage `json:"tags"`
		Note     string          `json:"note"`
		Rating   int             `json:"rating"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if args.Note != "" {
		if err := validation.ScreenFreeText(args.Note); err != nil {
			return "", fmt.Errorf("note: %w", err)
		}
	}

	event := models.NewFeedbackEvent(jsonutil.FlexibleStringValue(args.BeerID), args.Step, args.Polarity,
		jsonutil.FlexibleStringSlice(args.Tags), args.Note)
	event.Rating = args.Rating

	profile, conflicts, err := e.deps.Preferences.RecordFeedback(ctx, e.session, event)
	if err != nil {
		return "", err
	}
	return toJSON(map[string]any{
		"profile":   profile,
		"conflicts": conflicts,
		"evaluated": e.session.EvaluatedCount(),
	})
}

func (e *sessionToolExecutor) analyzePreferences(ctx context.Context) (string, error) {
	profile, err := e.deps.Preferences.AnalyzePreferences(ctx, e.session)
	if err != nil {
		return "", err
	}
	return toJSON(profile)
}

func (e *sessionToolExecutor) predictFavorite(ctx context.Context) (string, error) {
	result, err := e.deps.Recommendations.PredictFavorite(ctx, e.session)
	if err != nil {
		return "", err
	}
	return toJSON(result)
}

func (e *sessionToolExecutor) getPairings(ctx context.Context, arguments string) (string, error) {
	var args struct {
		BeerID json.RawMessage `json:"beer_id"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	beer, err := e.deps.Catalog.GetBeer(ctx, jsonutil.FlexibleStringValue(args.BeerID))
	if err != nil {
		return "", err
	}
	return toJSON(map[string]any{
		"beer":     beer.Name,
		"pairings": e.deps.Pairings.PairingsFor(*beer),
	})
}

func (e *sessionToolExecutor) recommendByFood(ctx context.Context, arguments string) (string, error) {
	var args struct {
		Food string `json:"food"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	beers, err := e.deps.Pairings.BeersFor(ctx, args.Food)
	if err != nil {
		return "", err
	}
	return toJSON(map[string]any{
		"food":  args.Food,
		"beers": beers,
	})
}

func (e *sessionToolExecutor) generateDiscountCode(ctx context.Context, arguments string) (string, error) {
	var args struct {
		Earned bool `json:"earned"`
	}
	if arguments != "" {
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
	}
	code, err := e.deps.Sales.GenerateDiscountCode(ctx, e.session, args.Earned)
	if err != nil {
		return "", err
	}
	return toJSON(code)
}

func (e *sessionToolExecutor) preparePurchase(ctx context.Context, arguments string) (string, error) {
	var args struct {
		BeerIDs      json.RawMessage `json:"beer_ids"`
		DiscountCode string          `json:"discount_code"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	order, err := e.deps.Sales.PreparePurchase(ctx, jsonutil.FlexibleStringSlice(args.BeerIDs), args.DiscountCode)
	if err != nil {
		return "", err
	}
	return toJSON(order)
}

func (e *sessionToolExecutor) collectShippingInfo(ctx context.Context, arguments string) (string, error) {
	var args struct {
		OrderID    string `json:"order_id"`
		FullName   string `json:"full_name"`
		Email      string `json:"email"`
		Phone      string `json:"phone"`
		Address    string `json:"address"`
		City       string `json:"city"`
		State      string `json:"state"`
		PostalCode string `json:"postal_code"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	info := models.ShippingInfo{
		FullName:   args.FullName,
		Email:      args.Email,
		Phone:      args.Phone,
		Address:    args.Address,
		City:       args.City,
		State:      args.State,
		PostalCode: args.PostalCode,
	}
	if err := e.deps.Sales.CollectShipping(ctx, args.OrderID, info); err != nil {
		return "", err
	}
	return toJSON(map[string]any{"status": "accepted", "order_id": args.OrderID})
}

func (e *sessionToolExecutor) generatePaymentLink(ctx context.Context, arguments string) (string, error) {
	var args struct {
		OrderID string  `json:"order_id"`
		Amount  float64 `json:"amount"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	link, err := e.deps.Sales.GeneratePaymentLink(ctx, args.OrderID, args.Amount)
	if err != nil {
		return "", err
	}
	return toJSON(link)
}

func toJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode tool result: %w", err)
	}
	return string(data), nil
}
