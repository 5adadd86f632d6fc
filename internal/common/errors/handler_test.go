package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveOutcome(t *testing.T) {
	tests := []struct {
		name       string
		err        *StandardError
		jobRetries int32
		want       jobOutcome
	}{
		{"technical error fails with retries", NewQueryExecutionFailedError("user_by_id", stderrors.New("timeout")), 5, jobOutcome{retries: 3}},
		{"capped by broker retries", NewQuizGenerationFailedError("go", stderrors.New("empty")), 2, jobOutcome{retries: 1}},
		{"last broker retry still fails", NewLLMTimeoutError(stderrors.New("deadline")), 1, jobOutcome{retries: 0}},
		{"business error is thrown", NewSessionNotFoundError("s-1"), 3, jobOutcome{throw: true}},
		{"exhausted job is thrown", NewDatabaseConnectionFailedError(stderrors.New("refused")), 0, jobOutcome{throw: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveOutcome(tt.jobRetries, ConvertToBPMNError(tt.err)))
		})
	}
}
