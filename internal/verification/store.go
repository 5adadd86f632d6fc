package verification

import (
	"context"
	"time"

	"collabquest/internal/models"
)

// SessionStore keeps issued sessions until they are submitted or expire.
type SessionStore interface {
	Put(ctx context.Context, session *models.VerificationSession, ttl time.Duration) error
	// Take removes and returns the session. Exactly one concurrent caller
	// gets it; the others get ErrSessionNotFound.
	Take(ctx context.Context, sessionID string) (*models.VerificationSession, error)
}
