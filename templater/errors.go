package templater

import (
	"errors"
	"fmt"
)

// ErrorKind classifies template failures independently of the engine's own
// error types.
type ErrorKind int

const (
	// SyntaxError means the template source could not be parsed.
	SyntaxError ErrorKind = iota + 1
	// EvaluationError means a parsed template failed while rendering.
	EvaluationError
)

func (k ErrorKind) String() string {
	switch k {
	case SyntaxError:
		return "syntax error"
	case EvaluationError:
		return "evaluation error"
	default:
		return "unknown error"
	}
}

var (
	// ErrDomain is returned by log2_floor for zero, negative, non-finite or
	// non-numeric input.
	ErrDomain = errors.New("value outside the domain of log2_floor")
	// ErrCyclicValue is returned when a container contains itself.
	ErrCyclicValue = errors.New("cyclic value")
	// ErrMaxDepth is returned when nesting exceeds constants.MaxEvaluateDepth.
	ErrMaxDepth = errors.New("maximum nesting depth exceeded")
	// ErrUnknownFilter is returned when a filter name is not registered.
	ErrUnknownFilter = errors.New("unknown filter")
)

// TemplateError wraps an engine failure together with the template source
// that caused it.
type TemplateError struct {
	Kind   ErrorKind
	Source string
	Err    error
}

func (e *TemplateError) Error() string {
	if e.Kind == SyntaxError {
		return fmt.Sprintf("unable to parse template string: %s", e.Source)
	}
	return fmt.Sprintf("unable to evaluate template string: %s: %v", e.Source, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

// IsSyntaxError reports whether err carries a SyntaxError TemplateError.
func IsSyntaxError(err error) bool {
	var te *TemplateError
	return errors.As(err, &te) && te.Kind == SyntaxError
}

// IsEvaluationError reports whether err carries an EvaluationError
// TemplateError.
func IsEvaluationError(err error) bool {
	var te *TemplateError
	return errors.As(err, &te) && te.Kind == EvaluationError
}
