package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"foodflow/pkg/food"
)

// Error codes returned in ErrorResponse.Code.
const (
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeConflict       = "CONFLICT"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeRateLimited    = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal       = "INTERNAL"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: RequestID(r.Context()),
	})
}

// classify maps a repository error onto a status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, food.ErrQuery), errors.Is(err, food.ErrMissingPartitionKey):
		return http.StatusBadRequest, ErrCodeInvalidRequest
	case errors.Is(err, food.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, food.ErrConflict):
		return http.StatusConflict, ErrCodeConflict
	}
	return http.StatusInternalServerError, ErrCodeInternal
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error(r.Context(), op, "error", err, "user", User(r.Context()))
		msg = "internal error"
	} else {
		h.log.Warn(r.Context(), op, "error", err, "status", status, "user", User(r.Context()))
	}
	writeError(w, r, status, code, msg)
}
