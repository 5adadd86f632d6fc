// internal/workers/matching/compute-compatibility/handler.go
package computecompatibility

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "collabquest/internal/common/errors"
	"collabquest/internal/common/logger"
	"collabquest/internal/common/metrics"
	"collabquest/internal/compatibility"
	"collabquest/internal/models"
	"collabquest/internal/userstore"
)

const (
	TaskType = "compute-compatibility"
)

type Handler struct {
	config       *Config
	store        userstore.Store
	scorer       *compatibility.Scorer
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, store userstore.Store, scorer *compatibility.Scorer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        store,
		scorer:       scorer,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, apperrors.NewValidationError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if len(input.Skills1) > 0 && len(input.Skills2) > 0 {
		a, err := models.SkillSetFromJSON(input.Skills1).Value()
		if err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("skills1: %v", err))
		}
		b, err := models.SkillSetFromJSON(input.Skills2).Value()
		if err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("skills2: %v", err))
		}
		return toOutput(h.scorer.Score(ctx, a, b)), nil
	}

	if input.User1 == "" || input.User2 == "" {
		return nil, apperrors.NewValidationError("user1 and user2 are required")
	}

	users, err := userstore.ResolveAll(ctx, h.store, input.User1, input.User2)
	if err != nil {
		return nil, err
	}

	a, _ := users[0].Skills.Value()
	b, _ := users[1].Skills.Value()
	res := h.scorer.Score(ctx, a, b)

	h.logger.Info("compatibility computed", map[string]interface{}{
		"user1": users[0].ID,
		"user2": users[1].ID,
		"score": res.Score,
	})
	return toOutput(res), nil
}

func toOutput(res models.CompatibilityResult) *Output {
	return &Output{CompatibilityScore: res.Score, CompatibilityReason: res.Reason}
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err = cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.AsStandardError(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
