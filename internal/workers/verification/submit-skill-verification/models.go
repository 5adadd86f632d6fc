// internal/workers/verification/submit-skill-verification/models.go
package submitskillverification

type Input struct {
	SessionID string            `json:"session_id"`
	Answers   map[string]string `json:"answers"`
}

// Output is flattened into process variables so gateways can branch on
// skillVerified.
type Output struct {
	UserID               string  `json:"userId"`
	Skill                string  `json:"skill"`
	Correct              int     `json:"correct"`
	Total                int     `json:"total"`
	ScorePercent         float64 `json:"scorePercent"`
	SkillVerified        bool    `json:"skillVerified"`
	VerificationRecorded bool    `json:"verificationRecorded"`
}
