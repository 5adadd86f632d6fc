// internal/workers/verification/start-skill-verification/handler.go
package startskillverification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "collabquest/internal/common/errors"
	"collabquest/internal/common/logger"
	"collabquest/internal/common/metrics"
	"collabquest/internal/models"
	"collabquest/internal/userstore"
	"collabquest/internal/verification"
)

const (
	TaskType = "start-skill-verification"
)

type Starter interface {
	Start(ctx context.Context, userID, skill string) (*models.StartResult, error)
}

type Handler struct {
	config       *Config
	store        userstore.Store
	starter      Starter
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, store userstore.Store, starter Starter, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        store,
		starter:      starter,
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
	input.Skill = strings.TrimSpace(input.Skill)
	if input.UserID == "" || input.Skill == "" {
		return nil, apperrors.NewValidationError("user_id and skill are required")
	}

	if _, err := h.store.GetUser(ctx, input.UserID); err != nil {
		if errors.Is(err, userstore.ErrUserNotFound) {
			return nil, apperrors.NewUserNotFoundError(input.UserID)
		}
		return nil, err
	}

	res, err := h.starter.Start(ctx, input.UserID, input.Skill)
	if err != nil {
		return nil, verification.ToStandardError(err, "", input.Skill)
	}

	h.logger.Info("verification session started", map[string]interface{}{
		"userId":    input.UserID,
		"skill":     input.Skill,
		"sessionId": res.SessionID,
		"questions": len(res.Questions),
	})
	return &Output{SessionID: res.SessionID, Questions: res.Questions, ExpiresAt: res.ExpiresAt}, nil
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
