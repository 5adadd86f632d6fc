package quizgen

import (
	"context"
	"fmt"
	"time"

	"collabquest/internal/common/logger"
	"collabquest/internal/common/metrics"
	"collabquest/internal/models"
)

const promptTemplate = "Generate %d multiple-choice questions (MCQ) for: %s. " +
	"Format: JSON Array of objects with keys: id, question, options, correct_answer."

// Generator turns a skill name into a validated list of quiz questions.
type Generator struct {
	completer Completer
	count     int
	log       logger.Logger
}

func NewGenerator(completer Completer, count int, log logger.Logger) *Generator {
	if count <= 0 {
		count = 10
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Generator{completer: completer, count: count, log: log}
}

// Generate asks the model for a quiz on skill. Provider errors are returned
// as is; unusable answers wrap ErrInvalidQuiz.
func (g *Generator) Generate(ctx context.Context, skill string) ([]models.QuizQuestion, error) {
	start := time.Now()
	fields := map[string]interface{}{"skill": skill, "provider": g.completer.Name()}

	text, err := g.completer.Complete(ctx, fmt.Sprintf(promptTemplate, g.count, skill))
	if err != nil {
		metrics.QuizGenerationFailures.WithLabelValues(g.completer.Name()).Inc()
		g.log.WithError(err).Warn("Quiz completion failed", fields)
		return nil, err
	}

	questions, err := ParseQuestions(text)
	if err != nil {
		metrics.QuizGenerationFailures.WithLabelValues(g.completer.Name()).Inc()
		g.log.WithError(err).Warn("Quiz answer rejected", fields)
		return nil, err
	}

	fields["questions"] = len(questions)
	fields["duration"] = time.Since(start).String()
	g.log.Debug("Quiz generated", fields)
	return questions, nil
}
