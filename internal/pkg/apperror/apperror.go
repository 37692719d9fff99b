package apperror

import "errors"

// Kinds name the error taxonomy exposed to API clients.
const (
	KindNotFound            = "NotFoundError"
	KindInvalidRange        = "InvalidRangeError"
	KindScheduleUnavailable = "ScheduleUnavailableError"
	KindConflict            = "ConflictError"
	KindInvalidDuration     = "InvalidDurationError"
	KindValidation          = "ValidationError"
	KindForbidden           = "ForbiddenError"
	KindRetryable           = "RetryableError"
)

// AppError is a custom error type that includes an HTTP status code and a taxonomy kind.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Kind    string // Taxonomy name returned to clients
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another AppError carrying the same kind and message, so a wrapped
// copy created by Wrap still compares equal to its sentinel.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message && e.Code == t.Code
}

// New creates a new AppError with a status code, kind and message.
func New(code int, kind, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// Wrap returns a copy of sentinel that carries err as its cause.
func Wrap(sentinel *AppError, err error) *AppError {
	return &AppError{
		Code:    sentinel.Code,
		Kind:    sentinel.Kind,
		Message: sentinel.Message,
		Err:     err,
	}
}

// IsRetryable reports whether err is a transient storage failure the caller may resubmit.
func IsRetryable(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == KindRetryable
}
