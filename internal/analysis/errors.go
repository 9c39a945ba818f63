// Package analysis holds what the three calculation engines share: the error
// taxonomy and the fixed-precision formatting used by summary text.
package analysis

import "fmt"

// ValidationError reports malformed or out-of-range input. It is always
// raised before any computation begins; the caller must fix the input and
// resubmit.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid input: %s", e.Message)
}

// Invalid creates a ValidationError for a field.
func Invalid(field, format string, a ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, a...)}
}

// DomainError reports a mathematically undefined operation on otherwise
// well-formed input, e.g. a break-even division when selling price equals
// production cost. Surfaced distinctly from validation so the caller can
// explain why valid-looking numbers fail.
type DomainError struct {
	Op      string
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Undefined creates a DomainError for an operation.
func Undefined(op, format string, a ...interface{}) error {
	return &DomainError{Op: op, Message: fmt.Sprintf(format, a...)}
}
