package handlers

import (
	"encoding/json"
	"net/http"

	gsessions "github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/services"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/sessions"
)

const (
	cookieName      = "cicerone_session"
	cookieSessionID = "session_id"
)

// ChatHandler serves the conversational endpoint. The tasting-session id is
// carried in a signed cookie, so a browser keeps its session across turns
// without the client managing ids; API callers may pass session_id in the
// body instead.
type ChatHandler struct {
	chat    services.ChatService
	store   sessions.Store
	cookies *gsessions.CookieStore
	logger  *zap.Logger
}

// NewChatHandler creates a new ChatHandler. cookieSecret signs the
// session-id cookie.
func NewChatHandler(chat services.ChatService, store sessions.Store, cookieSecret []byte, logger *zap.Logger) *ChatHandler {
	cookies := gsessions.NewCookieStore(cookieSecret)
	cookies.Options = &gsessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &ChatHandler{
		chat:    chat,
		store:   store,
		cookies: cookies,
		logger:  logger.Named("chat-handler"),
	}
}

// RegisterRoutes registers the chat routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.Chat)
	mux.HandleFunc("GET /api/session", h.GetSession)
	mux.HandleFunc("DELETE /api/session", h.EndSession)
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

type chatResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"session_id"`
}

// Chat handles POST /api/chat: one conversation turn.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.Message == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "bad_request", "message is required")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = h.cookieSessionID(r)
	}

	reply, outID, err := h.chat.Chat(r.Context(), sessionID, req.Message)
	if err != nil {
		_ = WriteError(w, err)
		return
	}

	h.setCookieSessionID(w, r, outID)
	if err := WriteJSON(w, http.StatusOK, chatResponse{Reply: reply, SessionID: outID}); err != nil {
		h.logger.Error("Failed to encode chat response", zap.Error(err))
	}
}

// GetSession handles GET /api/session: the current session's tasting state.
func (h *ChatHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = h.cookieSessionID(r)
	}
	if sessionID == "" {
		_ = ErrorResponse(w, http.StatusNotFound, "session_not_found", "no active session")
		return
	}

	session, err := h.store.Get(r.Context(), sessionID)
	if err != nil {
		_ = WriteError(w, err)
		return
	}
	if err := WriteJSON(w, http.StatusOK, session); err != nil {
		h.logger.Error("Failed to encode session", zap.Error(err))
	}
}

// EndSession handles DELETE /api/session.
func (h *ChatHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = h.cookieSessionID(r)
	}
	if sessionID == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.chat.EndSession(r.Context(), sessionID); err != nil {
		_ = WriteError(w, err)
		return
	}
	h.clearCookie(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChatHandler) cookieSessionID(r *http.Request) string {
	cookie, err := h.cookies.Get(r, cookieName)
	if err != nil {
		return ""
	}
	id, _ := cookie.Values[cookieSessionID].(string)
	return id
}

func (h *ChatHandler) setCookieSessionID(w http.ResponseWriter, r *http.Request, id string) {
	cookie, _ := h.cookies.Get(r, cookieName)
	cookie.Values[cookieSessionID] = id
	if err := cookie.Save(r, w); err != nil {
		h.logger.Warn("Failed to save session cookie", zap.Error(err))
	}
}

func (h *ChatHandler) clearCookie(w http.ResponseWriter, r *http.Request) {
	cookie, _ := h.cookies.Get(r, cookieName)
	cookie.Options.MaxAge = -1
	if err := cookie.Save(r, w); err != nil {
		h.logger.Warn("Failed to clear session cookie", zap.Error(err))
	}
}
