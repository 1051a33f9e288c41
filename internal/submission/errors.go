package submission

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation matches every error that makes a payload unsubmittable.
var ErrValidation = errors.New("submission: validation failed")

// ConfigurationError is returned by Transform when scores for an instrument
// or category are missing.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	if len(e.Missing) == 0 {
		return "all assessments must be completed"
	}
	return fmt.Sprintf("all assessments must be completed: missing %s", strings.Join(e.Missing, ", "))
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrValidation
}

// BankError is returned by CheckBank when a question bank lacks categories
// the payload is built from.
type BankError struct {
	Missing []string
}

func (e *BankError) Error() string {
	return fmt.Sprintf("bank cannot produce a submittable payload: missing categories %s", strings.Join(e.Missing, ", "))
}

func (e *BankError) Is(target error) bool {
	return target == ErrValidation
}

// FieldError is one invalid payload field.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (f FieldError) String() string {
	return f.Path + ": " + f.Message
}

// ValidationError carries every field violation found in a payload.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.String()
	}
	return fmt.Sprintf("invalid submission (%d errors): %s", len(e.Errors), strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IsValidation reports whether err is a configuration or validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
