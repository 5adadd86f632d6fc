package quizgen

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidQuiz is returned when the completion cannot be turned into questions.
var ErrInvalidQuiz = errors.New("invalid quiz payload")

// ErrProviderUnavailable wraps transport and server-side failures of a provider.
type ErrProviderUnavailable struct {
	Provider string
	Err      error
}

func (e *ErrProviderUnavailable) Error() string {
	return fmt.Sprintf("%s provider unavailable: %v", e.Provider, e.Err)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrRateLimit is returned when a provider answers 429.
type ErrRateLimit struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s rate limited, retry after %s", e.Provider, e.RetryAfter)
	}
	return fmt.Sprintf("%s rate limited", e.Provider)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }
