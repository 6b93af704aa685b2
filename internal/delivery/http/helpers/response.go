package helpers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"eventteams/internal/domain"
)

// Error codes carried in APIError.Code.
const (
	ErrCodeBadRequest    = "bad_request"
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodeForbidden     = "forbidden"
	ErrCodeNotFound      = "not_found"
	ErrCodeConflict      = "conflict"
	ErrCodeInternalError = "internal_error"
)

// APIError is the error half of the envelope.
// swagger:model APIError
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the envelope of every response: exactly one of Data and Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// errorKinds maps the domain error kinds to their HTTP status and error code.
var errorKinds = []struct {
	kind   error
	status int
	code   string
}{
	{domain.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
	{domain.ErrBadRequest, http.StatusBadRequest, ErrCodeBadRequest},
	{domain.ErrConflict, http.StatusConflict, ErrCodeConflict},
	{domain.ErrForbidden, http.StatusForbidden, ErrCodeForbidden},
}

// statusFor returns the status and error code for err. The bool is false for errors
// that carry no domain kind.
func statusFor(err error) (int, string, bool) {
	for _, k := range errorKinds {
		if errors.Is(err, k.kind) {
			return k.status, k.code, true
		}
	}
	return http.StatusInternalServerError, ErrCodeInternalError, false
}

func writeEnvelope(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteJSONSuccess writes data under the envelope's data key.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeEnvelope(w, statusCode, APIResponse{Data: data})
}

// WriteJSONError writes an error envelope with a nil data key.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	writeEnvelope(w, statusCode, APIResponse{Error: &APIError{Code: code, Message: message}})
}

// WriteServiceError reports an error returned by a service. Domain errors keep their message;
// anything else is logged and answered with a generic 500.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, code, known := statusFor(err)
	if !known {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, status, code, "internal server error")
		return
	}
	WriteJSONError(w, status, code, err.Error())
}
