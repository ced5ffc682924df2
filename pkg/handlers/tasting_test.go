package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/services"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/sessions"
)

func newTastingMux(t *testing.T) (*http.ServeMux, sessions.Store) {
	t.Helper()
	catalogSvc := &mockCatalogService{snapshot: testSnapshot()}
	store := sessions.NewMemoryStore(0, zap.NewNop())

	mux := http.NewServeMux()
	NewTastingHandler(store,
		services.NewPreferenceService(catalogSvc, zap.NewNop()),
		services.NewRecommendationService(catalogSvc, zap.NewNop()),
		zap.NewNop()).RegisterRoutes(mux)
	return mux, store
}

func TestTastingRecordFeedback(t *testing.T) {
	mux, store := newTastingMux(t)
	require.NoError(t, store.Save(t.Context(), models.NewTastingSession("s1")))

	body := strings.NewReader(`{"beer_id":"ipa-sol","step":"taste","polarity":"liked","tags":["citrus"]}`)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions/s1/feedback", body))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp feedbackResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Evaluated)
	assert.Equal(t, []string{"citrus"}, resp.Profile.LikedTags)

	// The mutation was persisted.
	session, err := store.Get(t.Context(), "s1")
	require.NoError(t, err)
	assert.True(t, session.HasTasted("ipa-sol"))
}

func TestTastingFeedbackUnknownSessionIs404(t *testing.T) {
	mux, _ := newTastingMux(t)

	body := strings.NewReader(`{"beer_id":"ipa-sol","step":"taste","polarity":"liked"}`)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions/ghost/feedback", body))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "session_not_found")
}

func TestTastingFeedbackRejectsHostileNote(t *testing.T) {
	mux, store := newTastingMux(t)
	require.NoError(t, store.Save(t.Context(), models.NewTastingSession("s1")))

	body := strings.NewReader(`{"beer_id":"ipa-sol","step":"taste","polarity":"liked","note":"<script>alert(1)</script>"}`)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions/s1/feedback", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTastingPredictionRequiresTwoEvaluations(t *testing.T) {
	mux, store := newTastingMux(t)
	require.NoError(t, store.Save(t.Context(), models.NewTastingSession("s1")))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/s1/prediction", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient_data")
}

func TestTastingNext(t *testing.T) {
	mux, store := newTastingMux(t)
	require.NoError(t, store.Save(t.Context(), models.NewTastingSession("s1")))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/s1/next", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Beer models.Beer `json:"beer"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ipa-sol", resp.Beer.ID)
}

func TestTastingGetSession(t *testing.T) {
	mux, store := newTastingMux(t)
	session := models.NewTastingSession("s1")
	session.TurnCount = 2
	require.NoError(t, store.Save(t.Context(), session))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/s1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.TastingSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2, got.TurnCount)
}
