// Package sessions provides tasting-session persistence keyed by opaque
// session id. Lifetime and idle cleanup are the store's responsibility;
// the engine only reads and writes whole sessions.
package sessions

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/apperrors"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
)

// Store is the session persistence contract. Implementations must treat a
// session as a single document: Save replaces it wholesale.
type Store interface {
	// Get retrieves a session. Returns apperrors.ErrSessionNotFound for
	// unknown or expired ids.
	Get(ctx context.Context, id string) (*models.TastingSession, error)

	// Save persists the session, replacing any prior state.
	Save(ctx context.Context, session *models.TastingSession) error

	// Delete removes a session. Deleting an absent session is not an error.
	Delete(ctx context.Context, id string) error

	// Count returns the number of live sessions.
	Count(ctx context.Context) (int, error)
}

// MemoryStore keeps sessions in process memory with idle-timeout cleanup.
// Expired sessions are swept lazily on access, matching the behavior the
// engine relies on without a background goroutine.
type MemoryStore struct {
	mu          sync.Mutex
	sessions    map[string]*models.TastingSession
	idleTimeout time.Duration
	logger      *zap.Logger
}

// NewMemoryStore creates an in-memory store. idleTimeout <= 0 disables
// expiry.
func NewMemoryStore(idleTimeout time.Duration, logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		sessions:    make(map[string]*models.TastingSession),
		idleTimeout: idleTimeout,
		logger:      logger.Named("sessions"),
	}
}

var _ Store = (*MemoryStore)(nil)

// Get retrieves a session after sweeping expired ones.
func (m *MemoryStore) Get(ctx context.Context, id string) (*models.TastingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepLocked()

	session, ok := m.sessions[id]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	// Deep copy: a caller mutating the result must not touch the stored
	// document until it calls Save.
	return session.Clone(), nil
}

// Save persists the session wholesale.
func (m *MemoryStore) Save(ctx context.Context, session *models.TastingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[session.ID] = session.Clone()
	return nil
}

// Delete removes a session if present.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Count returns the number of live sessions after a sweep.
func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	return len(m.sessions), nil
}

// sweepLocked removes sessions idle beyond the timeout. Caller holds mu.
func (m *MemoryStore) sweepLocked() {
	if m.idleTimeout <= 0 {
		return
	}
	cutoff := time.Now().Add(-m.idleTimeout)
	for id, session := range m.sessions {
		if session.LastActive.Before(cutoff) {
			delete(m.sessions, id)
			m.logger.Debug("Swept idle session", zap.String("session_id", id))
		}
	}
}
