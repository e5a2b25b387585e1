package parser

import (
	"errors"
	"fmt"

	"ability-lst/internal/ability"
)

var (
	errMissingValue = errors.New("missing value")
	errNegative     = errors.New("negative value")
)

// FieldError reports a recognized tag whose value could not be read.
type FieldError struct {
	Line   string
	LineNo int
	Token  string
	Err    error
}

func (e *FieldError) Error() string {
	if e.LineNo > 0 {
		return fmt.Sprintf("line %d: field %q: %v", e.LineNo, e.Token, e.Err)
	}
	return fmt.Sprintf("field %q: %v", e.Token, e.Err)
}

// Unwrap exposes both the cause and ability.ErrMalformedField.
func (e *FieldError) Unwrap() []error {
	return []error{ability.ErrMalformedField, e.Err}
}
