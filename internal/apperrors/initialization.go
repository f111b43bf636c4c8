package apperrors

import "fmt"

// Bootstrap stages reported by InitializationError.
const (
	StageCheck      = "check"
	StageCredential = "credential"
	StagePersist    = "persist"
	StageCompensate = "compensate"
)

// ReasonAlreadyInitialized is the reason reported once a first administrator exists.
const ReasonAlreadyInitialized = "already initialized"

// InitializationError describes a failed bootstrap attempt. When IdentityID is set the
// credential with that id was created but could not be removed and needs manual cleanup.
type InitializationError struct {
	Stage      string
	Reason     string
	IdentityID string
	Err        error
}

// NewInitializationError creates an InitializationError for the given stage.
func NewInitializationError(stage, reason string, cause error) *InitializationError {
	return &InitializationError{Stage: stage, Reason: reason, Err: cause}
}

func (e *InitializationError) Error() string {
	if e.IdentityID != "" {
		return fmt.Sprintf("initialization failed at %s: %s (orphaned credential %s)", e.Stage, e.Reason, e.IdentityID)
	}
	return fmt.Sprintf("initialization failed: %s", e.Reason)
}

// Unwrap exposes both ErrInitialization and the underlying cause to errors.Is.
func (e *InitializationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInitialization}
	}
	return []error{ErrInitialization, e.Err}
}

// AlreadyInitialized reports whether the bootstrap failed only because an admin exists.
func (e *InitializationError) AlreadyInitialized() bool {
	return e.Reason == ReasonAlreadyInitialized
}
