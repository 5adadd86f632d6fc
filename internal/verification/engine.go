// Package verification issues skill quizzes and grades the answers.
package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"collabquest/internal/common/logger"
	"collabquest/internal/common/metrics"
	"collabquest/internal/models"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

const (
	DefaultPassThreshold = 60.0
	DefaultSessionTTL    = 30 * time.Minute
)

// Generator produces the questions for a skill.
type Generator interface {
	Generate(ctx context.Context, skill string) ([]models.QuizQuestion, error)
}

// SkillVerifier records that a user passed a skill quiz.
type SkillVerifier interface {
	MarkSkillVerified(ctx context.Context, userID, skill string) error
}

type Options struct {
	SessionTTL    time.Duration
	PassThreshold float64
	Now           func() time.Time
}

// Engine runs the start/submit cycle of a skill verification.
type Engine struct {
	generator Generator
	verifier  SkillVerifier
	store     SessionStore
	log       logger.Logger

	ttl       time.Duration
	threshold float64
	now       func() time.Time
}

func New(generator Generator, verifier SkillVerifier, store SessionStore, log logger.Logger, opts Options) *Engine {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	if opts.PassThreshold <= 0 {
		opts.PassThreshold = DefaultPassThreshold
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Engine{
		generator: generator,
		verifier:  verifier,
		store:     store,
		log:       log,
		ttl:       opts.SessionTTL,
		threshold: opts.PassThreshold,
		now:       opts.Now,
	}
}

// Start generates a quiz for skill and stores a new session for userID. The
// returned questions carry no answers.
func (e *Engine) Start(ctx context.Context, userID, skill string) (*models.StartResult, error) {
	questions, err := e.generator.Generate(ctx, skill)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions for %q", ErrGeneration, skill)
	}

	now := e.now()
	session := &models.VerificationSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		Skill:     skill,
		AnswerKey: make(map[string]string, len(questions)),
		Questions: make([]models.QuizQuestion, 0, len(questions)),
		CreatedAt: now,
		ExpiresAt: now.Add(e.ttl),
	}
	safe := make([]models.SafeQuestion, 0, len(questions))
	for _, q := range questions {
		// quizgen.ParseQuestions renames repeated ids; for other
		// generators the first question with an id wins.
		if _, dup := session.AnswerKey[q.ID]; dup {
			continue
		}
		session.AnswerKey[q.ID] = q.CorrectAnswer
		session.Questions = append(session.Questions, q)
		safe = append(safe, q.Safe())
	}

	if err := e.store.Put(ctx, session, e.ttl); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionStore, err)
	}

	metrics.VerificationSessionsStarted.WithLabelValues(skill).Inc()
	e.log.Info("Verification session started", map[string]interface{}{
		"sessionId": session.ID,
		"userId":    userID,
		"skill":     skill,
		"questions": len(safe),
	})

	return &models.StartResult{
		SessionID: session.ID,
		Questions: safe,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Submit grades answers against the session and consumes it. A passing
// score marks the skill verified; a failed mark is logged and reported via
// VerificationRecorded.
func (e *Engine) Submit(ctx context.Context, sessionID string, answers map[string]string) (*models.SubmissionResult, error) {
	session, err := e.store.Take(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			metrics.VerificationSubmissions.WithLabelValues("not_found").Inc()
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrSessionStore, err)
	}

	result := grade(session, answers)
	result.Passed = Passed(result.ScorePercent, e.threshold)

	fields := map[string]interface{}{
		"sessionId":    sessionID,
		"userId":       session.UserID,
		"skill":        session.Skill,
		"correct":      result.Correct,
		"total":        result.Total,
		"scorePercent": result.ScorePercent,
	}

	if result.Passed {
		metrics.VerificationSubmissions.WithLabelValues("passed").Inc()
		if err := e.verifier.MarkSkillVerified(ctx, session.UserID, session.Skill); err != nil {
			metrics.SkillMarkFailures.Inc()
			e.log.WithError(err).Error("Failed to record verified skill", fields)
		} else {
			result.VerificationRecorded = true
		}
	} else {
		metrics.VerificationSubmissions.WithLabelValues("failed").Inc()
	}

	fields["passed"] = result.Passed
	e.log.Info("Verification submitted", fields)
	return result, nil
}

// Passed reports whether score meets threshold.
func Passed(score, threshold float64) bool {
	return score >= threshold
}

func grade(session *models.VerificationSession, answers map[string]string) *models.SubmissionResult {
	result := &models.SubmissionResult{
		UserID:    session.UserID,
		Skill:     session.Skill,
		Total:     len(session.AnswerKey),
		Solutions: make([]models.Solution, 0, len(session.Questions)),
	}

	for _, q := range session.Questions {
		correct, ok := session.AnswerKey[q.ID]
		if !ok {
			continue
		}
		submitted, answered := answers[q.ID]
		if answered && sameAnswer(submitted, correct) {
			result.Correct++
		}
		result.Solutions = append(result.Solutions, models.Solution{
			ID:            q.ID,
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: correct,
			YourAnswer:    submitted,
		})
	}

	if result.Total > 0 {
		result.ScorePercent = 100 * float64(result.Correct) / float64(result.Total)
	}
	return result
}

func sameAnswer(submitted, correct string) bool {
	fold := cases.Fold()
	return fold.String(strings.TrimSpace(submitted)) == fold.String(strings.TrimSpace(correct))
}
