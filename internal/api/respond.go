package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	apperrors "collabquest/internal/common/errors"
	"collabquest/internal/common/validation"
	"collabquest/internal/userstore"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Detail string                   `json:"detail"`
	Error  *apperrors.StandardError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var stdErr *apperrors.StandardError
	if errors.Is(err, userstore.ErrUserNotFound) && !errors.As(err, &stdErr) {
		stdErr = apperrors.NewUserNotFoundError()
	} else {
		stdErr = apperrors.AsStandardError(err)
	}

	status := apperrors.HTTPStatus(stdErr.Code)
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).Error("Request failed", map[string]interface{}{
			"path":      r.URL.Path,
			"errorCode": string(stdErr.Code),
		})
	}
	writeJSON(w, status, errorResponse{Detail: stdErr.Message, Error: stdErr})
}

// decode reads a JSON body into dst and runs its validation rules.
func decode(r *http.Request, dst interface{ Validate() error }) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("invalid JSON body: %v", err))
	}
	return validated(dst.Validate())
}

func validated(err error) error {
	if err == nil {
		return nil
	}
	result := validation.FromOzzo(err)
	return apperrors.NewValidationError(strings.Join(result.GetErrorMessages(), "; ")).
		WithMetadata("fields", result.Errors)
}

// queryInt parses an optional positive integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperrors.NewValidationError(fmt.Sprintf("%s must be a positive integer", name))
	}
	return n, nil
}
