package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the acting principal lacks the grant for the requested action.
var ErrForbidden = errors.New("permission denied")

// ErrUnauthorized indicates a credential failure. Callers must not reveal which part was wrong.
var ErrUnauthorized = errors.New("authentication failed")

// ErrInitialization indicates that bootstrapping the first administrator failed or was already done.
var ErrInitialization = errors.New("initialization error")

// ErrAlreadyInitialized is returned by stores when the bootstrap sentinel is already claimed.
var ErrAlreadyInitialized = errors.New("system already initialized")

// ErrStoreUnavailable indicates a transient persistence failure. Retryable by the caller with backoff.
var ErrStoreUnavailable = errors.New("store unavailable")

// ErrInternal indicates an unexpected server side failure.
var ErrInternal = errors.New("internal error")

// AppError is the error envelope returned to HTTP clients.
type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewValidationError creates a 400 error that satisfies errors.Is(err, ErrValidation).
func NewValidationError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrValidation)
}

// NewNotFoundError creates a 404 error that satisfies errors.Is(err, ErrNotFound).
func NewNotFoundError(message string) *AppError {
	return NewAppError(http.StatusNotFound, message, ErrNotFound)
}

func NewBadRequestError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, nil)
}

func NewUnauthorizedError(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, message, ErrUnauthorized)
}

func NewForbiddenError(message string) *AppError {
	return NewAppError(http.StatusForbidden, message, ErrForbidden)
}

func NewConflictError(message string) *AppError {
	return NewAppError(http.StatusConflict, message, ErrDuplicate)
}

func NewInternalServerError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, message, ErrInternal)
}

func NewServiceUnavailableError(message string) *AppError {
	return NewAppError(http.StatusServiceUnavailable, message, ErrStoreUnavailable)
}

func NewGatewayTimeoutError(message string) *AppError {
	return NewAppError(http.StatusGatewayTimeout, message, nil)
}

// Validationf wraps ErrValidation with a human readable reason.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Forbiddenf wraps ErrForbidden with a human readable reason.
func Forbiddenf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// reason strips the sentinel prefix so that only the operator-facing part remains.
func reason(err error, sentinel error, fallback string) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if idx := strings.LastIndex(msg, prefix); idx >= 0 {
		msg = msg[idx+len(prefix):]
	}
	if msg == "" || msg == sentinel.Error() {
		return fallback
	}
	return msg
}

// FromError maps any error produced by the core to the HTTP envelope.
// Messages never carry internal identifiers for store or authentication failures.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var initErr *InitializationError
	if errors.As(err, &initErr) {
		msg := "initialization failed: " + initErr.Reason
		switch {
		case initErr.AlreadyInitialized():
			return NewAppError(http.StatusConflict, msg, err)
		case errors.Is(err, ErrValidation):
			return NewAppError(http.StatusBadRequest, msg, err)
		case errors.Is(err, ErrStoreUnavailable):
			return NewAppError(http.StatusServiceUnavailable, msg, err)
		default:
			return NewAppError(http.StatusInternalServerError, msg, err)
		}
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr
	}

	switch {
	case errors.Is(err, ErrValidation):
		return NewAppError(http.StatusBadRequest, reason(err, ErrValidation, "invalid input"), err)
	case errors.Is(err, ErrForbidden):
		return NewAppError(http.StatusForbidden, reason(err, ErrForbidden, "permission denied"), err)
	case errors.Is(err, ErrUnauthorized):
		return NewAppError(http.StatusUnauthorized, "invalid email or password", err)
	case errors.Is(err, ErrNotFound):
		return NewAppError(http.StatusNotFound, "resource not found", err)
	case errors.Is(err, ErrDuplicate):
		return NewAppError(http.StatusConflict, reason(err, ErrDuplicate, "resource already exists"), err)
	case errors.Is(err, ErrStoreUnavailable):
		return NewAppError(http.StatusServiceUnavailable, "service temporarily unavailable, please retry", err)
	default:
		return NewAppError(http.StatusInternalServerError, "internal server error", err)
	}
}
