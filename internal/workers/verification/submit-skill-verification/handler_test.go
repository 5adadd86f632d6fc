// internal/workers/verification/submit-skill-verification/handler_test.go
package submitskillverification

import (
	"context"
	"testing"
	"time"

	apperrors "collabquest/internal/common/errors"
	"collabquest/internal/common/logger"
	"collabquest/internal/models"
	"collabquest/internal/verification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct{}

func (stubGenerator) Generate(context.Context, string) ([]models.QuizQuestion, error) {
	return []models.QuizQuestion{
		{ID: "q1", Question: "Capital of France?", Options: []string{"Paris", "Rome"}, CorrectAnswer: "Paris"},
		{ID: "q2", Question: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: "4"},
	}, nil
}

type recordingVerifier struct {
	marked []string
}

func (r *recordingVerifier) MarkSkillVerified(_ context.Context, userID, skill string) error {
	r.marked = append(r.marked, userID+":"+skill)
	return nil
}

func newEngine(t *testing.T, verifier verification.SkillVerifier) *verification.Engine {
	return verification.New(stubGenerator{}, verifier, verification.NewMemoryStore(), logger.NewTestLogger(t), verification.Options{})
}

func TestHandler_Execute_GradesSession(t *testing.T) {
	verifier := &recordingVerifier{}
	engine := newEngine(t, verifier)
	handler := NewHandler(&Config{Timeout: 5 * time.Second}, engine, logger.NewTestLogger(t))

	started, err := engine.Start(context.Background(), "u1", "Geography")
	require.NoError(t, err)

	output, err := handler.Execute(context.Background(), &Input{
		SessionID: started.SessionID,
		Answers:   map[string]string{"q1": "paris", "q2": "5"},
	})
	require.NoError(t, err)
	assert.Equal(t, &Output{
		UserID:       "u1",
		Skill:        "Geography",
		Correct:      1,
		Total:        2,
		ScorePercent: 50,
	}, output)
	assert.Empty(t, verifier.marked)
}

func TestHandler_Execute_PassRecordsSkill(t *testing.T) {
	verifier := &recordingVerifier{}
	engine := newEngine(t, verifier)
	handler := NewHandler(&Config{Timeout: 5 * time.Second}, engine, logger.NewTestLogger(t))

	started, err := engine.Start(context.Background(), "u1", "Geography")
	require.NoError(t, err)

	output, err := handler.Execute(context.Background(), &Input{
		SessionID: started.SessionID,
		Answers:   map[string]string{"q1": "Paris", "q2": "4"},
	})
	require.NoError(t, err)
	assert.True(t, output.SkillVerified)
	assert.True(t, output.VerificationRecorded)
	assert.Equal(t, []string{"u1:Geography"}, verifier.marked)
}

func TestHandler_Execute_Errors(t *testing.T) {
	handler := NewHandler(&Config{Timeout: 5 * time.Second}, newEngine(t, &recordingVerifier{}), logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeValidationFailed, apperrors.AsStandardError(err).Code)

	_, err = handler.Execute(context.Background(), &Input{SessionID: "missing"})
	require.Error(t, err)
	stdErr := apperrors.AsStandardError(err)
	assert.Equal(t, apperrors.ErrCodeSessionNotFound, stdErr.Code)
	assert.False(t, apperrors.ConvertToBPMNError(stdErr).Retryable)
}

func TestHandler_Execute_ReplaysUnsettledResult(t *testing.T) {
	verifier := &recordingVerifier{}
	engine := newEngine(t, verifier)
	handler := NewHandler(&Config{Timeout: 5 * time.Second}, engine, logger.NewTestLogger(t))

	started, err := engine.Start(context.Background(), "u1", "Geography")
	require.NoError(t, err)
	input := &Input{SessionID: started.SessionID, Answers: map[string]string{"q1": "Paris", "q2": "4"}}

	graded, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	// Completion was not acknowledged; the retried job must see the same result.
	handler.hold(started.SessionID, graded)
	retried, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, graded, retried)
	assert.Equal(t, []string{"u1:Geography"}, verifier.marked)

	handler.settle(started.SessionID)
	_, err = handler.Execute(context.Background(), input)
	assert.Equal(t, apperrors.ErrCodeSessionNotFound, apperrors.AsStandardError(err).Code)
}
