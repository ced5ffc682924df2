package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/services"
)

// CatalogHandler serves the beer catalog over HTTP.
type CatalogHandler struct {
	catalog services.CatalogService
	logger  *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog services.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger.Named("catalog-handler")}
}

// RegisterRoutes registers the catalog routes on the given mux.
func (h *CatalogHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/catalog", h.List)
	mux.HandleFunc("POST /api/catalog/refresh", h.Refresh)
	mux.HandleFunc("GET /api/catalog/{id}", h.Get)
}

// catalogResponse is the list payload; source tells the caller whether the
// data is live or a cached fallback.
type catalogResponse struct {
	Beers   []models.Beer `json:"beers"`
	Count   int           `json:"count"`
	Source  string        `json:"source"`
	Warning string        `json:"warning,omitempty"`
}

// List handles GET /api/catalog.
// A fetch failure with a cached snapshot degrades to a 200 with a warning;
// only a cold start with no data at all is an error.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	snap, err := h.catalog.List(r.Context())
	if err != nil && len(snap.Beers) == 0 {
		_ = WriteError(w, err)
		return
	}

	resp := catalogResponse{
		Beers:  snap.Beers,
		Count:  len(snap.Beers),
		Source: snap.Source,
	}
	if err != nil {
		resp.Warning = "catalog refresh failed; serving cached data"
	}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode catalog response", zap.Error(err))
	}
}

// Get handles GET /api/catalog/{id}.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "bad_request", "beer id is required")
		return
	}

	details, err := h.catalog.GetBeerDetails(r.Context(), id)
	if err != nil {
		_ = WriteError(w, err)
		return
	}
	if err := WriteJSON(w, http.StatusOK, details); err != nil {
		h.logger.Error("Failed to encode beer details", zap.Error(err))
	}
}

// Refresh handles POST /api/catalog/refresh, forcing a fetch.
func (h *CatalogHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.catalog.Refresh(r.Context())
	if err != nil && len(snap.Beers) == 0 {
		_ = WriteError(w, err)
		return
	}

	resp := catalogResponse{
		Beers:  snap.Beers,
		Count:  len(snap.Beers),
		Source: snap.Source,
	}
	if err != nil {
		resp.Warning = "refresh failed; serving cached data"
	}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode catalog response", zap.Error(err))
	}
}
