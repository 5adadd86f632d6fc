package models

import "time"

// QuizQuestion is one multiple-choice question including its answer.
type QuizQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// SafeQuestion is a QuizQuestion without the answer, as sent to the client.
type SafeQuestion struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

func (q QuizQuestion) Safe() SafeQuestion {
	return SafeQuestion{ID: q.ID, Question: q.Question, Options: q.Options}
}

// VerificationSession is the server-side record of an issued quiz.
type VerificationSession struct {
	ID        string            `json:"session_id"`
	UserID    string            `json:"user_id"`
	Skill     string            `json:"skill"`
	AnswerKey map[string]string `json:"answer_key"`
	Questions []QuizQuestion    `json:"questions"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// Expired reports whether the session is past its expiry. A zero ExpiresAt never expires.
func (s *VerificationSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type StartResult struct {
	SessionID string         `json:"session_id"`
	Questions []SafeQuestion `json:"questions"`
	ExpiresAt time.Time      `json:"expires_at"`
}

type Solution struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	YourAnswer    string   `json:"your_answer"`
}

type SubmissionResult struct {
	UserID               string     `json:"user_id"`
	Skill                string     `json:"skill"`
	Total                int        `json:"total"`
	Correct              int        `json:"correct"`
	ScorePercent         float64    `json:"score_percent"`
	Passed               bool       `json:"passed"`
	Solutions            []Solution `json:"solutions"`
	VerificationRecorded bool       `json:"verification_recorded"`
}
