// Package apperr defines the service error taxonomy and its HTTP mapping.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// ErrContention marks a transactional conflict that exhausted its retry
// budget. Callers may resubmit the same event safely.
var ErrContention = errors.New("transaction contention")

// ErrSnapshotGone marks a ranked-pool generation that is no longer
// addressable (expired or never built).
var ErrSnapshotGone = errors.New("pool snapshot gone")

// ValidationError is a caller error: the request must be fixed before retrying.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// Validation creates a ValidationError with a formatted message.
func Validation(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a caller validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// HTTPStatus maps service and infra errors onto HTTP status codes.
// Keeps handlers clean by centralizing the mapping.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	case IsValidation(err):
		return http.StatusBadRequest

	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound

	case errors.Is(err, ErrSnapshotGone):
		return http.StatusGone

	case errors.Is(err, ErrContention):
		return http.StatusServiceUnavailable

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	case errors.Is(err, context.Canceled):
		return 499 // client closed request

	default:
		return http.StatusInternalServerError
	}
}
