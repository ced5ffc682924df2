package models

import (
	"time"
)

// Chat message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of the conversation history kept on a session.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TastingSession holds one user's ongoing tasting: the beers they have
// tried, the feedback log per beer, the derived preference profile, and the
// conversation history. Sessions are independent of each other; the only
// shared state is the read-only catalog snapshot.
type TastingSession struct {
	ID         string                     `json:"id"`
	CreatedAt  time.Time                  `json:"created_at"`
	LastActive time.Time                  `json:"last_active"`
	UserName   string                     `json:"user_name,omitempty"`
	Tasted     []string                   `json:"tasted"` // beer ids, append-only, no duplicates
	Events     map[string][]FeedbackEvent `json:"events"` // beer id -> evaluation events
	Profile    PreferenceProfile          `json:"profile"`
	History    []ChatMessage              `json:"history,omitempty"`
	TurnCount  int                        `json:"turn_count"`
}

// NewTastingSession creates an empty session.
func NewTastingSession(id string) *TastingSession {
	now := time.Now()
	return &TastingSession{
		ID:         id,
		CreatedAt:  now,
		LastActive: now,
		Events:     make(map[string][]FeedbackEvent),
	}
}

// Clone deep-copies the session: the tasted list, the event log, the
// history and the profile are all fresh containers. The event structs
// themselves are shared; events are created once and never mutated.
func (s *TastingSession) Clone() *TastingSession {
	out := *s
	out.Tasted = append([]string(nil), s.Tasted...)
	if s.Events != nil {
		out.Events = make(map[string][]FeedbackEvent, len(s.Events))
		for id, events := range s.Events {
			out.Events[id] = append([]FeedbackEvent(nil), events...)
		}
	}
	out.History = append([]ChatMessage(nil), s.History...)
	out.Profile = s.Profile.Clone()
	return &out
}

// RecordTasted appends beerID to the tasted list if not already present.
func (s *TastingSession) RecordTasted(beerID string) {
	for _, id := range s.Tasted {
		if id == beerID {
			return
		}
	}
	s.Tasted = append(s.Tasted, beerID)
}

// HasTasted reports whether beerID is in the tasted list.
func (s *TastingSession) HasTasted(beerID string) bool {
	for _, id := range s.Tasted {
		if id == beerID {
			return true
		}
	}
	return false
}

// EvaluatedCount returns the number of distinct beers with at least one
// feedback event. Prediction requires two or more.
func (s *TastingSession) EvaluatedCount() int {
	count := 0
	for _, events := range s.Events {
		if len(events) > 0 {
			count++
		}
	}
	return count
}

// AppendMessage records one turn of conversation history.
func (s *TastingSession) AppendMessage(role, content string) {
	s.History = append(s.History, ChatMessage{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	})
}

// Touch updates the idle timer.
func (s *TastingSession) Touch() {
	s.LastActive = time.Now()
}
