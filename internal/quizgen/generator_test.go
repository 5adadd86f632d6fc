package quizgen

import (
	"context"
	"errors"
	"testing"

	"collabquest/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	answer string
	err    error
	prompt string
}

func (s *stubCompleter) Name() string { return "stub" }

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.answer, s.err
}

func TestGenerator_Generate(t *testing.T) {
	stub := &stubCompleter{answer: `[{"id":"q1","question":"Q","options":["a","b"],"correct_answer":"a"}]`}
	gen := NewGenerator(stub, 5, logger.NewTestLogger(t))

	qs, err := gen.Generate(context.Background(), "Docker")
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "Generate 5 multiple-choice questions (MCQ) for: Docker. "+
		"Format: JSON Array of objects with keys: id, question, options, correct_answer.", stub.prompt)
}

func TestGenerator_ProviderError(t *testing.T) {
	cause := &ErrProviderUnavailable{Provider: "stub", Err: errors.New("down")}
	gen := NewGenerator(&stubCompleter{err: cause}, 0, nil)

	_, err := gen.Generate(context.Background(), "Go")
	var unavailable *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavailable)
}

func TestGenerator_BadAnswer(t *testing.T) {
	gen := NewGenerator(&stubCompleter{answer: "no quiz today"}, 3, logger.NewNoOpLogger())
	_, err := gen.Generate(context.Background(), "Go")
	assert.ErrorIs(t, err, ErrInvalidQuiz)
}

func TestNewGenerator_DefaultCount(t *testing.T) {
	assert.Equal(t, 10, NewGenerator(&stubCompleter{}, 0, nil).count)
}
