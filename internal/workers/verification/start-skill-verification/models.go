// internal/workers/verification/start-skill-verification/models.go
package startskillverification

import (
	"time"

	"collabquest/internal/models"
)

type Input struct {
	UserID string `json:"user_id"`
	Skill  string `json:"skill"`
}

type Output struct {
	SessionID string                `json:"session_id"`
	Questions []models.SafeQuestion `json:"questions"`
	ExpiresAt time.Time             `json:"expires_at"`
}
