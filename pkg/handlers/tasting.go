package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/services"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/sessions"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/validation"
)

// TastingHandler serves the REST view of a tasting session for API clients
// that manage session ids themselves (the chat endpoint carries its id in a
// cookie instead).
type TastingHandler struct {
	store           sessions.Store
	preferences     services.PreferenceService
	recommendations services.RecommendationService
	logger          *zap.Logger
}

// NewTastingHandler creates a new TastingHandler.
func NewTastingHandler(store sessions.Store, preferences services.PreferenceService,
	recommendations services.RecommendationService, logger *zap.Logger) *TastingHandler {
	return &TastingHandler{
		store:           store,
		preferences:     preferences,
		recommendations: recommendations,
		logger:          logger.Named("tasting-handler"),
	}
}

// RegisterRoutes registers the tasting routes on the given mux.
func (h *TastingHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/sessions/{id}", h.GetSession)
	mux.HandleFunc("POST /api/sessions/{id}/feedback", h.RecordFeedback)
	mux.HandleFunc("GET /api/sessions/{id}/prediction", h.Prediction)
	mux.HandleFunc("GET /api/sessions/{id}/next", h.Next)
}

func (h *TastingHandler) loadSession(w http.ResponseWriter, r *http.Request) (*models.TastingSession, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "bad_request", "session id is required")
		return nil, false
	}
	session, err := h.store.Get(r.Context(), id)
	if err != nil {
		_ = WriteError(w, err)
		return nil, false
	}
	return session, true
}

// GetSession handles GET /api/sessions/{id}.
func (h *TastingHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	if err := WriteJSON(w, http.StatusOK, session); err != nil {
		h.logger.Error("Failed to encode session", zap.Error(err))
	}
}

type feedbackRequest struct {
	BeerID   string   `json:"beer_id"`
	Step     string   `json:"step"`
	Polarity string   `json:"polarity"`
	Tags     []string `json:"tags,omitempty"`
	Note     string   `json:"note,omitempty"`
	Rating   int      `json:"rating,omitempty"`
}

type feedbackResponse struct {
	Profile   *models.PreferenceProfile `json:"profile"`
	Conflicts []models.Conflict         `json:"conflicts,omitempty"`
	Evaluated int                       `json:"evaluated_beers"`
}

// RecordFeedback handles POST /api/sessions/{id}/feedback.
func (h *TastingHandler) RecordFeedback(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.Note != "" {
		if err := validation.ScreenFreeText(req.Note); err != nil {
			_ = ErrorResponse(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
	}

	event := models.NewFeedbackEvent(req.BeerID, req.Step, req.Polarity, req.Tags, req.Note)
	event.Rating = req.Rating

	profile, conflicts, err := h.preferences.RecordFeedback(r.Context(), session, event)
	if err != nil {
		_ = WriteError(w, err)
		return
	}

	session.Touch()
	if err := h.store.Save(r.Context(), session); err != nil {
		h.logger.Error("Failed to persist session",
			zap.String("session_id", session.ID),
			zap.Error(err))
		_ = WriteError(w, err)
		return
	}

	resp := feedbackResponse{
		Profile:   profile,
		Conflicts: conflicts,
		Evaluated: session.EvaluatedCount(),
	}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode feedback response", zap.Error(err))
	}
}

// Prediction handles GET /api/sessions/{id}/prediction.
func (h *TastingHandler) Prediction(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	result, err := h.recommendations.PredictFavorite(r.Context(), session)
	if err != nil {
		_ = WriteError(w, err)
		return
	}
	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode prediction", zap.Error(err))
	}
}

// Next handles GET /api/sessions/{id}/next.
func (h *TastingHandler) Next(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	beer, err := h.recommendations.SuggestNext(r.Context(), session)
	if err != nil {
		_ = WriteError(w, err)
		return
	}

	resp := struct {
		Beer   *models.Beer `json:"beer"`
		Tasted int          `json:"tasted_so_far"`
	}{
		Beer:   beer,
		Tasted: len(session.Tasted),
	}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode suggestion", zap.Error(err))
	}
}
