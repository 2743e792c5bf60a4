package sentrynative

import (
	"errors"
	"fmt"
)

// Errors returned by the lifecycle and envelope surface.
var (
	// ErrAlreadyInitialized is returned by Init while a previous
	// initialization is still live or shutting down. Not retryable
	// without shutting down first.
	ErrAlreadyInitialized = errors.New("sentry: already initialized")

	// ErrInitFailed is returned when the native engine rejects the
	// configuration (invalid database directory, missing crash handler,
	// transport construction failure).
	ErrInitFailed = errors.New("sentry: native initialization failed")

	// ErrEnvelopeConsumed is returned when taking ownership of an
	// envelope outside the send callback it was delivered to.
	ErrEnvelopeConsumed = errors.New("sentry: envelope no longer valid")

	// ErrEnvelopeReleased is returned when reading an owned envelope
	// after it has been freed.
	ErrEnvelopeReleased = errors.New("sentry: envelope already released")
)

// ConfigError reports a configuration value that violates a local
// precondition. It is raised by the Options setters before the value ever
// reaches native code and is always recoverable.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("sentry: invalid option %s: %s", e.Field, e.Reason)
}

// StateError reports a call made in the wrong lifecycle state, such as a
// consent change before Init or an options mutation after Init consumed
// them. It indicates a usage bug in the caller, not a transient condition.
type StateError struct {
	Op    string
	State string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("sentry: %s not allowed while %s", e.Op, e.State)
}
