// Package errors provides standardized error handling for the HTTP layer and BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeQuizGenerationFailed ErrorCode = "QUIZ_GENERATION_FAILED"
	ErrCodeLLMTimeout           ErrorCode = "LLM_TIMEOUT"

	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeUserNotFound    ErrorCode = "USER_NOT_FOUND"

	ErrCodeSkillVerificationWriteFailed ErrorCode = "SKILL_VERIFICATION_WRITE_FAILED"
	ErrCodeSessionStoreFailed           ErrorCode = "SESSION_STORE_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeSearchQueryFailed        ErrorCode = "SEARCH_QUERY_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// StandardError is the error shape returned to HTTP clients and converted for BPMN.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// BPMNError represents an error that can be thrown to a BPMN process.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables converts the error into process variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 2. Constructors
// ==========================

func NewQuizGenerationFailedError(skill string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQuizGenerationFailed,
		Message:   "Failed to generate quiz",
		Details:   fmt.Sprintf("skill: %s, error: %s", skill, errString(err)),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewLLMTimeoutError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMTimeout,
		Message:   "Quiz generation timed out",
		Details:   errString(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewSessionNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Session not found",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserNotFoundError lists every identifier that could not be resolved.
func NewUserNotFoundError(identifiers ...string) *StandardError {
	msg := "User not found"
	if len(identifiers) > 0 {
		msg = "Users not found: " + strings.Join(identifiers, ", ")
	}
	return &StandardError{
		Code:      ErrCodeUserNotFound,
		Message:   msg,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewSkillVerificationWriteFailedError(userID, skill string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSkillVerificationWriteFailed,
		Message:   "Failed to record verified skill",
		Details:   fmt.Sprintf("userId: %s, skill: %s, error: %s", userID, skill, errString(err)),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewSessionStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   "Verification session store error",
		Details:   errString(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   errString(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, errString(err)),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewSearchQueryFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Elasticsearch query error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, errString(err)),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, errString(err)),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   errString(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// AsStandardError returns the first StandardError in err's chain, or wraps err as INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// ==========================
// 3. HTTP & BPMN Mapping
// ==========================

// HTTPStatus maps an error code to the response status of the HTTP boundary.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed:
		return http.StatusBadRequest
	case ErrCodeSessionNotFound, ErrCodeUserNotFound:
		return http.StatusNotFound
	case ErrCodeLLMTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeQuizGenerationFailed:         "QUIZ_GENERATION_FAILED",
	ErrCodeLLMTimeout:                   "LLM_TIMEOUT",
	ErrCodeSessionNotFound:              "SESSION_NOT_FOUND",
	ErrCodeUserNotFound:                 "USER_NOT_FOUND",
	ErrCodeSkillVerificationWriteFailed: "SKILL_VERIFICATION_WRITE_FAILED",
	ErrCodeSessionStoreFailed:           "SESSION_STORE_FAILED",
	ErrCodeDatabaseConnectionFailed:     "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:         "QUERY_EXECUTION_FAILED",
	ErrCodeSearchQueryFailed:            "SEARCH_QUERY_FAILED",
	ErrCodeNotificationSendFailed:       "NOTIFICATION_SEND_FAILED",
	ErrCodeValidationFailed:             "VALIDATION_FAILED",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeQuizGenerationFailed,
		ErrCodeSkillVerificationWriteFailed,
		ErrCodeSessionStoreFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeNotificationSendFailed:
		return 3

	case ErrCodeLLMTimeout:
		return 1

	default:
		return 0 // business errors
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "SESSION"):
		return "SESSION"
	case strings.Contains(codeStr, "USER") || strings.Contains(codeStr, "SKILL"):
		return "USER"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "QUIZ") || strings.Contains(codeStr, "LLM"):
		return "AI"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
