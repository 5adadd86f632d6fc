package compatibility

import (
	"context"

	"collabquest/internal/common/logger"
	"collabquest/internal/common/metrics"
	"collabquest/internal/common/observability"
	"collabquest/internal/models"

	"go.opentelemetry.io/otel/attribute"
)

// Scorer wraps Score with logging, metrics and tracing.
type Scorer struct {
	logger logger.Logger
	obs    *observability.Observability
}

func NewScorer(log logger.Logger, obs *observability.Observability) *Scorer {
	if obs == nil {
		obs = &observability.Observability{}
	}
	return &Scorer{
		logger: log.WithFields(map[string]interface{}{"component": "compatibility"}),
		obs:    obs,
	}
}

func (s *Scorer) Score(ctx context.Context, a, b interface{}) models.CompatibilityResult {
	_, span := s.obs.StartSpan(ctx, "compatibility.score")
	defer span.End()

	res, outcome, cause := evaluate(a, b)
	if cause != nil {
		s.logger.Warn("compatibility scoring degraded", map[string]interface{}{
			"outcome": string(outcome),
			"error":   cause,
		})
	}

	metrics.CompatibilityOutcomes.WithLabelValues(string(outcome)).Inc()
	metrics.CompatibilityScores.Observe(res.Score)
	span.SetAttributes(
		attribute.String("outcome", string(outcome)),
		attribute.Float64("score", res.Score),
	)
	return res
}
