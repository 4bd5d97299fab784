package gen

import (
	"errors"
	"fmt"
)

// FaultKind classifies generation failures.
type FaultKind string

const (
	// FaultConfiguration covers invalid or missing generation parameters:
	// empty distribution tables, zero volume targets, inverted windows.
	FaultConfiguration FaultKind = "CONFIGURATION"

	// FaultPrerequisiteMissing is returned when a generator is invoked
	// before its upstream collection exists.
	FaultPrerequisiteMissing FaultKind = "PREREQUISITE_MISSING"

	// FaultInvalidRange is returned by timestamp sampling when given an
	// inverted range. A programming defect, never retried.
	FaultInvalidRange FaultKind = "INVALID_RANGE"

	// FaultIntegrityViolation is raised by post-load validation when a
	// foreign key does not resolve or an id is duplicated. Always fatal.
	FaultIntegrityViolation FaultKind = "INTEGRITY_VIOLATION"
)

// Fault is the structured error type used throughout the generation engine.
type Fault struct {
	Kind    FaultKind
	Message string
	Cause   error
}

func (e *Fault) Error() string {
	s := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *Fault) Unwrap() error {
	return e.Cause
}

// Is matches any Fault of the same kind, so callers can compare against
// a bare &Fault{Kind: ...} sentinel via errors.Is.
func (e *Fault) Is(target error) bool {
	var t *Fault
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// IsKind reports whether err is (or wraps) a Fault of the given kind.
func IsKind(err error, kind FaultKind) bool {
	var f *Fault
	if !errors.As(err, &f) {
		return false
	}
	return f.Kind == kind
}

func Configurationf(format string, args ...interface{}) *Fault {
	return &Fault{Kind: FaultConfiguration, Message: fmt.Sprintf(format, args...)}
}

func PrerequisiteMissingf(format string, args ...interface{}) *Fault {
	return &Fault{Kind: FaultPrerequisiteMissing, Message: fmt.Sprintf(format, args...)}
}

func InvalidRangef(format string, args ...interface{}) *Fault {
	return &Fault{Kind: FaultInvalidRange, Message: fmt.Sprintf(format, args...)}
}

func IntegrityViolationf(format string, args ...interface{}) *Fault {
	return &Fault{Kind: FaultIntegrityViolation, Message: fmt.Sprintf(format, args...)}
}
