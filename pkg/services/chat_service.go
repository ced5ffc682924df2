package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/apperrors"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/llm"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/logging"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/sessions"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/validation"
)

// maxHistoryMessages bounds the conversation window sent to the model.
// Older turns fall off; the preference profile carries the durable state.
const maxHistoryMessages = 40

const systemPrompt = `You are a certified beer cicerone working for Cerveza Fortuna, a Mexican
craft brewery. You guide customers through tastings of the brewery's beers.

Your approach:
- Guide each beer through four steps: appearance, aroma, taste, mouthfeel.
- After each step, record what the customer liked or disliked with the
  record_feedback tool, including flavor tags and explicit attribute
  statements (bitterness:high, alcohol:light, body:full, style:ipa).
- Suggest beers in tasting order, lightest first, with suggest_next_beer.
- Once two or more beers have been evaluated, offer to predict their
  favorite with predict_favorite.
- Recommend food pairings when asked, and help with purchases: store links,
  discount codes, shipping details and payment links.
- Only discuss Cerveza Fortuna beers. If the catalog is temporarily
  unavailable you will be told so by the tools; apologize and continue with
  what you know from the conversation.

Be warm, knowledgeable and concise. Answer in the customer's language.`

// apologyReply is returned when a turn fails unrecoverably; the session
// itself stays intact for the next turn.
const apologyReply = "Lo siento, something went wrong on my end. Could you say that again?"

// ChatService runs conversation turns: it owns session load/create/save and
// hands the model a tool surface bound to the session.
type ChatService interface {
	// Chat executes one turn. An empty sessionID starts a new session; the
	// returned id identifies it for subsequent turns.
	Chat(ctx context.Context, sessionID, message string) (reply, outSessionID string, err error)

	// EndSession deletes a session.
	EndSession(ctx context.Context, sessionID string) error
}

type chatService struct {
	store    sessions.Store
	client   llm.Client
	toolDeps ToolDeps
	logger   *zap.Logger
}

// NewChatService creates the chat orchestrator.
func NewChatService(store sessions.Store, client llm.Client, toolDeps ToolDeps, logger *zap.Logger) ChatService {
	return &chatService{
		store:    store,
		client:   client,
		toolDeps: toolDeps,
		logger:   logger.Named("chat"),
	}
}

var _ ChatService = (*chatService)(nil)

func (s *chatService) Chat(ctx context.Context, sessionID, message string) (reply, outSessionID string, err error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", sessionID, fmt.Errorf("message must be non-empty")
	}
	if err := validation.ScreenFreeText(message); err != nil {
		return "", sessionID, err
	}

	session, err := s.loadOrCreate(ctx, sessionID)
	if err != nil {
		return "", sessionID, err
	}

	// A panic inside a turn (tool dispatch included) must not take the
	// server down or lose the session; the customer gets an apology and
	// the conversation continues on the next turn.
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Recovered panic in chat turn",
				zap.String("session_id", session.ID),
				zap.Any("panic", r))
			reply = apologyReply
			outSessionID = session.ID
			err = nil
		}
	}()

	session.AppendMessage(models.RoleUser, message)
	session.TurnCount++
	session.Touch()

	req := &llm.Request{
		System:  systemPrompt,
		History: trimHistory(session.History),
		Tools:   llm.CiceroneTools(),
	}
	executor := NewSessionToolExecutor(s.toolDeps, session)

	answer, genErr := s.client.GenerateWithTools(ctx, req, executor)
	if genErr != nil {
		s.logger.Error("Chat generation failed",
			zap.String("session_id", session.ID),
			zap.Int("turn", session.TurnCount),
			zap.String("error", logging.SanitizeError(genErr)))
		answer = apologyReply
	}

	session.AppendMessage(models.RoleAssistant, answer)
	if saveErr := s.store.Save(ctx, session); saveErr != nil {
		s.logger.Error("Failed to persist session",
			zap.String("session_id", session.ID),
			zap.Error(saveErr))
	}

	return answer, session.ID, nil
}

func (s *chatService) EndSession(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

// loadOrCreate resolves the session for a turn. Unknown or expired ids get
// a fresh session rather than an error: the customer should never be locked
// out of the conversation.
func (s *chatService) loadOrCreate(ctx context.Context, sessionID string) (*models.TastingSession, error) {
	if sessionID != "" {
		session, err := s.store.Get(ctx, sessionID)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, apperrors.ErrSessionNotFound) {
			return nil, err
		}
		s.logger.Info("Session expired or unknown, starting fresh",
			zap.String("session_id", sessionID))
	}

	session := models.NewTastingSession(uuid.New().String())
	s.logger.Info("Session started", zap.String("session_id", session.ID))
	return session, nil
}

// trimHistory keeps the most recent window of the conversation.
func trimHistory(history []models.ChatMessage) []models.ChatMessage {
	if len(history) <= maxHistoryMessages {
		return history
	}
	return history[len(history)-maxHistoryMessages:]
}
