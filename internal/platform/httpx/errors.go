package httpx

import (
	"errors"
	"net/http"

	apperrors "watchless/internal/platform/errors"
)

const (
	MsgAccessTokenRequired = "Access token required"
	MsgInvalidToken        = "Invalid or expired token"
	MsgAuthFailed          = "Authentication failed"
	MsgNotFound            = "Not found"
)

// MapError turns an application error into a status and a client-safe
// message. Unknown errors become 500 with fallback.
func MapError(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrMissingToken):
		return http.StatusUnauthorized, MsgAccessTokenRequired
	case errors.Is(err, apperrors.ErrInvalidToken):
		return http.StatusForbidden, MsgInvalidToken
	case errors.Is(err, apperrors.ErrInvalidCredential):
		return http.StatusBadRequest, MsgAuthFailed
	case errors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest, fallback
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrNoActiveSession):
		return http.StatusNotFound, MsgNotFound
	default:
		return http.StatusInternalServerError, fallback
	}
}

// Fail logs err against the request and writes the mapped envelope.
func Fail(w http.ResponseWriter, r *http.Request, operation string, err error, fallback string) {
	status, msg := MapError(err, fallback)
	fields := []any{
		"operation", operation,
		"outcome", "failure",
		"status_code", status,
		"message", msg,
		"request_id", RequestIDFrom(r.Context()),
		"error", err.Error(),
	}
	if status >= http.StatusInternalServerError {
		Logger().ErrorContext(r.Context(), "http operation failed", fields...)
	} else {
		Logger().WarnContext(r.Context(), "http operation failed", fields...)
	}
	WriteError(w, status, msg)
}
