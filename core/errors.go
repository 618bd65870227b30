package core

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for comparison using errors.Is()
// These are generic errors that can be wrapped with additional context
var (
	// Registration errors
	ErrInvalidSender = errors.New("invalid sender capability")

	// Lifecycle errors
	ErrLoggerDisposed = errors.New("logger disposed")
	ErrNotInitialized = errors.New("not initialized")
	ErrAlreadyStarted = errors.New("already started")

	// Configuration errors
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrMissingConfiguration = errors.New("missing required configuration")
)

// TelemetryError provides structured error information with context.
// It implements the error interface and supports error wrapping.
type TelemetryError struct {
	Op      string // Operation that failed (e.g., "coordinator.CreateLogger")
	Kind    string // Error kind (e.g., "sender", "config", "logger")
	ID      string // Optional ID of the entity involved (e.g., emitter identity)
	Message string // Human-readable message
	Err     error  // Underlying error for wrapping
}

// Error returns the string representation of the error
func (e *TelemetryError) Error() string {
	if e.Op != "" && e.Err != nil {
		if e.ID != "" {
			return fmt.Sprintf("%s [%s]: %v", e.Op, e.ID, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s error", e.Kind)
}

// Unwrap returns the underlying error for use with errors.Is/As
func (e *TelemetryError) Unwrap() error {
	return e.Err
}

// NewTelemetryError creates a new TelemetryError
func NewTelemetryError(op, kind string, err error) *TelemetryError {
	return &TelemetryError{
		Op:   op,
		Kind: kind,
		Err:  err,
	}
}

// NewSenderError creates an error for a sender that failed shape validation
func NewSenderError(op, emitterID, message string) *TelemetryError {
	return &TelemetryError{
		Op:      op,
		Kind:    "sender",
		ID:      emitterID,
		Message: message,
		Err:     ErrInvalidSender,
	}
}

// NewConfigError creates a configuration error with a descriptive message
func NewConfigError(op, message string) *TelemetryError {
	return &TelemetryError{
		Op:      op,
		Kind:    "config",
		Message: message,
		Err:     ErrInvalidConfiguration,
	}
}
