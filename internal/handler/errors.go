package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pkordes/trainline/internal/domain"
)

// ErrorDetail is the body of every error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorDetail as {"error": {...}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// errorStatus maps domain sentinels to HTTP status and error code, checked
// in order.
var errorStatus = []struct {
	sentinel error
	status   int
	code     string
}{
	// Must stay first: a failed save may wrap a cause carrying another sentinel.
	{domain.ErrPersistence, http.StatusInternalServerError, "persistence_failure"},
	{domain.ErrValidation, http.StatusUnprocessableEntity, "validation_error"},
	{domain.ErrDuplicateID, http.StatusConflict, "duplicate_id"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
}

// writeServiceError maps err to a JSON error response. Errors that carry no
// domain sentinel are logged and reported as a generic 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.sentinel) {
			if e.status >= http.StatusInternalServerError {
				s.logger.ErrorContext(r.Context(), "request failed", slog.String("error", err.Error()))
			}
			writeError(w, e.status, e.code, unwrapMessage(err, e.sentinel))
			return
		}
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
		return
	}

	s.logger.ErrorContext(r.Context(), "unexpected error", slog.String("error", err.Error()))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

// badRequest reports a request rejected before reaching the service layer
// (missing parameter, malformed body).
func badRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, "bad_request", message)
}

func notFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, "not_found", message)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel error.
// e.g. "service.TrainRegistry.Add: duplicate id: \"Texas Eagle\"" -> "duplicate id: \"Texas Eagle\""
// The sentinel text is kept so the message still reads on its own.
func unwrapMessage(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()); i >= 0 {
		return msg[i:]
	}
	return msg
}
