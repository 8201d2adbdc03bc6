// Package httputil writes JSON responses and maps errors onto the
// {"error","error_description"} envelope.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"metapanel/pkg/platform/sentinel"
)

// Error is an error with a fixed HTTP status and code.
type Error struct {
	Status      int
	Code        string
	Description string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Description
}

func BadRequest(description string) error {
	return &Error{Status: http.StatusBadRequest, Code: "bad_request", Description: description}
}

func NotFound(description string) error {
	return &Error{Status: http.StatusNotFound, Code: "not_found", Description: description}
}

type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteJSON writes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err to a status and code. Descriptions of unexpected
// errors are never written.
func WriteError(w http.ResponseWriter, err error) {
	var httpErr *Error
	switch {
	case errors.As(err, &httpErr):
		WriteJSON(w, httpErr.Status, errorResponse{Error: httpErr.Code, Description: httpErr.Description})
	case errors.Is(err, sentinel.ErrNotFound):
		WriteJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Description: err.Error()})
	case errors.Is(err, sentinel.ErrConflict):
		WriteJSON(w, http.StatusConflict, errorResponse{Error: "conflict", Description: err.Error()})
	case errors.Is(err, sentinel.ErrInvalidState):
		WriteJSON(w, http.StatusConflict, errorResponse{Error: "invalid_state", Description: err.Error()})
	case errors.Is(err, sentinel.ErrUnavailable):
		WriteJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "unavailable"})
	default:
		WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
	}
}
