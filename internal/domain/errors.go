package domain

import (
	"errors"
	"fmt"
)

// Structural errors. These are programmer or setup errors and abort a run
// before any fix executes.
var (
	ErrInvalidCatalog  = errors.New("invalid fix catalog")
	ErrInvalidSnapshot = errors.New("invalid project snapshot")
	ErrInvalidOptions  = errors.New("invalid run options")
)

// CheckError means a fix could not determine whether it applies.
type CheckError struct {
	FixID string
	Err   error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("check %s: %v", e.FixID, e.Err)
}

func (e *CheckError) Unwrap() error { return e.Err }

// ApplyError means a fix's mutation failed partway or fully.
type ApplyError struct {
	FixID string
	Err   error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply %s: %v", e.FixID, e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }

// PromptError means the confirmation for a fix could not be obtained.
type PromptError struct {
	FixID string
	Err   error
}

func (e *PromptError) Error() string {
	return fmt.Sprintf("confirm %s: %v", e.FixID, e.Err)
}

func (e *PromptError) Unwrap() error { return e.Err }

// PanicError wraps a value recovered from a panicking fix.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func invalidCatalogf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidCatalog, fmt.Sprintf(format, args...))
}

func invalidSnapshotf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSnapshot, fmt.Sprintf(format, args...))
}
