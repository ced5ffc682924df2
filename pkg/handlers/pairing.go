package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/services"
)

// PairingHandler serves the food-pairing endpoints.
type PairingHandler struct {
	catalog  services.CatalogService
	pairings services.PairingService
	logger   *zap.Logger
}

// NewPairingHandler creates a new PairingHandler.
func NewPairingHandler(catalog services.CatalogService, pairings services.PairingService, logger *zap.Logger) *PairingHandler {
	return &PairingHandler{
		catalog:  catalog,
		pairings: pairings,
		logger:   logger.Named("pairing-handler"),
	}
}

// RegisterRoutes registers the pairing routes on the given mux.
func (h *PairingHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/pairings/{beerID}", h.Pairings)
	mux.HandleFunc("GET /api/recommendations", h.RecommendByFood)
}

// Pairings handles GET /api/pairings/{beerID}.
func (h *PairingHandler) Pairings(w http.ResponseWriter, r *http.Request) {
	beerID := strings.TrimSpace(r.PathValue("beerID"))
	if beerID == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "bad_request", "beer id is required")
		return
	}

	beer, err := h.catalog.GetBeer(r.Context(), beerID)
	if err != nil {
		_ = WriteError(w, err)
		return
	}

	resp := struct {
		Beer     string                  `json:"beer"`
		Style    string                  `json:"style"`
		Pairings []models.FoodSuggestion `json:"pairings"`
	}{
		Beer:     beer.Name,
		Style:    beer.Style,
		Pairings: h.pairings.PairingsFor(*beer),
	}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode pairings", zap.Error(err))
	}
}

// RecommendByFood handles GET /api/recommendations?food=...
func (h *PairingHandler) RecommendByFood(w http.ResponseWriter, r *http.Request) {
	food := strings.TrimSpace(r.URL.Query().Get("food"))
	if food == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "bad_request", "food query parameter is required")
		return
	}

	beers, err := h.pairings.BeersFor(r.Context(), food)
	if err != nil {
		_ = WriteError(w, err)
		return
	}

	resp := struct {
		Food  string        `json:"food"`
		Beers []models.Beer `json:"beers"`
		Count int           `json:"count"`
	}{
		Food:  food,
		Beers: beers,
		Count: len(beers),
	}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode recommendations", zap.Error(err))
	}
}
