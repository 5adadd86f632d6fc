package verification

import (
	"context"
	"sync"
	"time"

	"collabquest/internal/common/logger"
	"collabquest/internal/models"
)

// MemoryStore is an in-process SessionStore. Expired sessions are dropped on
// access and by Sweep.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*models.VerificationSession
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*models.VerificationSession),
		now:      time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, session *models.VerificationSession, ttl time.Duration) error {
	stored := *session
	if ttl > 0 && stored.ExpiresAt.IsZero() {
		stored.ExpiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.sessions[session.ID] = &stored
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Take(_ context.Context, sessionID string) (*models.VerificationSession, error) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !ok || session.Expired(s.now()) {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Sweep deletes expired sessions and reports how many were removed.
func (s *MemoryStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration, log logger.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Debug("Expired verification sessions removed", map[string]interface{}{"count": n})
			}
		}
	}
}
