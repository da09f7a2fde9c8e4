package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pkordes/travel-planner/internal/domain"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine-readable code and a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// notFound writes a 404 for a missing resource. The caller supplies the
// message because the handler is the layer that knows what was looked up.
func notFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, "not_found", message)
}

// validationFailed writes a 422 for a domain validation failure.
func validationFailed(w http.ResponseWriter, err error) {
	writeError(w, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err))
}

// badRequest writes a 400 for a request rejected before reaching the domain
// (malformed JSON, unparseable parameters).
func badRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, "bad_request", message)
}

// writeDomainError maps the domain sentinels to HTTP statuses and logs
// anything unexpected as an internal error.
func writeDomainError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrValidation):
		validationFailed(w, err)
	case errors.Is(err, domain.ErrNotFound):
		notFound(w, "bin not found")
	case errors.Is(err, domain.ErrRemoteNotFound):
		notFound(w, "shared trip not found")
	case errors.Is(err, domain.ErrRemoteUnavailable):
		writeError(w, http.StatusBadGateway, "remote_unavailable", "shared trip store is unavailable, try again later")
	case errors.As(err, &maxBytes):
		writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large")
	default:
		log.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// unwrapMessage extracts the human-readable part from a wrapped validation
// error, e.g. "collab.Controller.Mutate: validation error: name is required"
// becomes "name is required".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if _, after, ok := strings.Cut(msg, domain.ErrValidation.Error()+": "); ok && after != "" {
		return after
	}
	return msg
}
