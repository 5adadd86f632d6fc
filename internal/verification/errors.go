package verification

import (
	"context"
	"errors"

	apperrors "collabquest/internal/common/errors"
)

var (
	// ErrGeneration means no quiz could be produced; no session was created.
	ErrGeneration = errors.New("quiz generation failed")
	// ErrSessionNotFound covers unknown, consumed and expired sessions.
	ErrSessionNotFound = errors.New("verification session not found")
	// ErrSessionStore wraps backend failures of the session store.
	ErrSessionStore = errors.New("verification session store failed")
)

// ToStandardError maps engine errors onto the shared error codes.
func ToStandardError(err error, sessionID, skill string) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return apperrors.NewSessionNotFoundError(sessionID)
	case errors.Is(err, ErrGeneration) && errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewLLMTimeoutError(err)
	case errors.Is(err, ErrGeneration):
		return apperrors.NewQuizGenerationFailedError(skill, err)
	case errors.Is(err, ErrSessionStore):
		return apperrors.NewSessionStoreFailedError(err)
	default:
		return apperrors.AsStandardError(err)
	}
}
