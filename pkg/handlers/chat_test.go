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
	"github.com/cerveza-fortuna/cicerone-engine/pkg/sessions"
)

var testCookieSecret = []byte("0123456789abcdef0123456789abcdef")

func newChatMux(chat *mockChatService, store sessions.Store) *http.ServeMux {
	if store == nil {
		store = sessions.NewMemoryStore(0, zap.NewNop())
	}
	mux := http.NewServeMux()
	NewChatHandler(chat, store, testCookieSecret, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestChatTurn(t *testing.T) {
	chat := &mockChatService{reply: "¡Salud!", sessionID: "abc-123"}
	mux := newChatMux(chat, nil)

	body := strings.NewReader(`{"message":"hola"}`)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", body))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "¡Salud!", resp.Reply)
	assert.Equal(t, "abc-123", resp.SessionID)
	assert.Equal(t, "hola", chat.gotMessage)

	// The session id comes back in a cookie for browser clients.
	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "cicerone_session" {
			found = true
		}
	}
	assert.True(t, found, "session cookie set")
}

func TestChatCookieCarriesSessionAcrossTurns(t *testing.T) {
	chat := &mockChatService{reply: "ok", sessionID: "abc-123"}
	mux := newChatMux(chat, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hola"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	second := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"otra"}`))
	for _, c := range rec.Result().Cookies() {
		second.AddCookie(c)
	}
	rec2 := httptest.NewRecorder()
	mux.ServeHTTP(rec2, second)

	require.Equal(t, http.StatusOK, rec2.Code)
	assert.Equal(t, "abc-123", chat.gotSessionID, "cookie session id forwarded to the service")
}

func TestChatBodySessionIDTakesPrecedence(t *testing.T) {
	chat := &mockChatService{reply: "ok", sessionID: "body-id"}
	mux := newChatMux(chat, nil)

	body := strings.NewReader(`{"message":"hola","session_id":"body-id"}`)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body-id", chat.gotSessionID)
}

func TestChatRejectsBadRequests(t *testing.T) {
	mux := newChatMux(&mockChatService{reply: "ok", sessionID: "s"}, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("not json")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":""}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSession(t *testing.T) {
	store := sessions.NewMemoryStore(0, zap.NewNop())
	session := models.NewTastingSession("abc-123")
	session.TurnCount = 3
	require.NoError(t, store.Save(t.Context(), session))

	mux := newChatMux(&mockChatService{}, store)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/session?session_id=abc-123", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.TastingSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 3, got.TurnCount)
}

func TestGetSessionMissingIs404(t *testing.T) {
	mux := newChatMux(&mockChatService{}, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/session", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/session?session_id=ghost", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEndSession(t *testing.T) {
	chat := &mockChatService{}
	mux := newChatMux(chat, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/session?session_id=abc-123", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "abc-123", chat.endedID)
}
