// internal/workers/verification/submit-skill-verification/handler.go
package submitskillverification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "collabquest/internal/common/errors"
	"collabquest/internal/common/logger"
	"collabquest/internal/common/metrics"
	"collabquest/internal/models"
	"collabquest/internal/verification"
)

const (
	TaskType = "submit-skill-verification"
)

type Submitter interface {
	Submit(ctx context.Context, sessionID string, answers map[string]string) (*models.SubmissionResult, error)
}

// Handler grades sessions for Zeebe jobs. Grading consumes the session, so a
// result whose job completion could not be sent is kept by session id and
// replayed when the job is retried.
type Handler struct {
	config       *Config
	submitter    Submitter
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger

	mu        sync.Mutex
	unsettled map[string]*Output
}

func NewHandler(config *Config, submitter Submitter, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		submitter:    submitter,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log,
		unsettled:    make(map[string]*Output),
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

	if h.completeJob(ctx, client, job, output) {
		h.settle(input.SessionID)
		return
	}
	h.hold(input.SessionID, output)
}

func (h *Handler) hold(sessionID string, output *Output) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unsettled[sessionID] = output
}

func (h *Handler) settle(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.unsettled, sessionID)
}

func (h *Handler) unsettledResult(sessionID string) (*Output, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out, ok := h.unsettled[sessionID]
	return out, ok
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.SessionID == "" {
		return nil, apperrors.NewValidationError("session_id is required")
	}
	if out, ok := h.unsettledResult(input.SessionID); ok {
		h.logger.Info("replaying graded result", map[string]interface{}{"sessionId": input.SessionID})
		return out, nil
	}

	res, err := h.submitter.Submit(ctx, input.SessionID, input.Answers)
	if err != nil {
		return nil, verification.ToStandardError(err, input.SessionID, "")
	}

	h.logger.Info("verification graded", map[string]interface{}{
		"sessionId": input.SessionID,
		"userId":    res.UserID,
		"skill":     res.Skill,
		"score":     res.ScorePercent,
		"passed":    res.Passed,
	})
	return &Output{
		UserID:               res.UserID,
		Skill:                res.Skill,
		Correct:              res.Correct,
		Total:                res.Total,
		ScorePercent:         res.ScorePercent,
		SkillVerified:        res.Passed,
		VerificationRecorded: res.VerificationRecorded,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) bool {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return false
	}
	if _, err = cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return false
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	return true
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.AsStandardError(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
