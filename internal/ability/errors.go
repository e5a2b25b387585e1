package ability

import "errors"

var (
	// ErrMalformedField marks a recognized tag whose value cannot be read,
	// such as a non-numeric level.
	ErrMalformedField = errors.New("malformed field")
	// ErrInvariantViolation is returned when two records that must share a
	// key do not.
	ErrInvariantViolation = errors.New("invariant violation")
	ErrIncomplete         = errors.New("incomplete ability")
	ErrUnsupported        = errors.New("not supported by rule system")
)
