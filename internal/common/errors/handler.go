package errors

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler settles a failed job: technical errors are failed with the
// remaining retries, business errors are thrown into the process.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// jobOutcome is how a failed job is reported back to the broker.
type jobOutcome struct {
	throw   bool
	retries int32
}

// resolveOutcome never hands a job more retries than the broker has left.
func resolveOutcome(jobRetries int32, bpmnErr *BPMNError) jobOutcome {
	if bpmnErr.Retries <= 0 || jobRetries <= 0 {
		return jobOutcome{throw: true}
	}
	retries := int32(bpmnErr.Retries)
	if left := jobRetries - 1; left < retries {
		retries = left
	}
	return jobOutcome{retries: retries}
}

func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := AsStandardError(err)
	bpmnErr := ConvertToBPMNError(stdErr)
	outcome := resolveOutcome(job.Retries, bpmnErr)

	h.logger.Error("Job failed", map[string]interface{}{
		"jobKey":          job.Key,
		"jobType":         job.Type,
		"processInstance": job.ProcessInstanceKey,
		"errorCode":       string(stdErr.Code),
		"category":        GetErrorCategory(stdErr.Code),
		"details":         stdErr.Details,
		"thrown":          outcome.throw,
		"retriesLeft":     outcome.retries,
	})

	vars, _ := json.Marshal(bpmnErr.ToErrorVariables())

	if outcome.throw {
		cmd := client.NewThrowErrorCommand().JobKey(job.Key).ErrorCode(bpmnErr.Code).ErrorMessage(bpmnErr.Message)
		if withVars, verr := cmd.VariablesFromString(string(vars)); verr == nil {
			_, _ = withVars.Send(ctx)
			return
		}
		_, _ = cmd.Send(ctx)
		return
	}

	cmd := client.NewFailJobCommand().JobKey(job.Key).Retries(outcome.retries).ErrorMessage(bpmnErr.Message)
	if withVars, verr := cmd.VariablesFromString(string(vars)); verr == nil {
		_, _ = withVars.Send(ctx)
		return
	}
	_, _ = cmd.Send(ctx)
}
