package types

import (
	"fmt"
	"strings"
)

// Error tag constants classifying evaluation failures.
const (
	TagUnknownOperatorError = "UnknownOperatorError"
	TagInvalidOperandsError = "InvalidOperandsError"
	TagConversionError      = "ConversionError"
	TagTypeError            = "TypeError"
	TagValueError           = "ValueError"
	TagSyntaxError          = "SyntaxError"
)

// EvalError represents a style expression evaluation failure with a message
// and classification tags.
type EvalError struct {
	Message string
	Tags    []string
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	return fmt.Sprintf("%s (tags=[%s])", e.Message, strings.Join(e.Tags, ", "))
}

// HasTag returns true if the error has the specified tag.
func (e *EvalError) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ToValue converts an EvalError to a map value for API payloads.
func (e *EvalError) ToValue() Value {
	m := NewOrderedMap()
	m.Set("message", NewString(e.Message))

	tags := make([]Value, len(e.Tags))
	for i, tag := range e.Tags {
		tags[i] = NewString(tag)
	}
	m.Set("tags", NewList(tags))

	return NewMap(m)
}

// Common error constructors.

// NewUnknownOperatorError reports a call to an operator absent from the
// registry.
func NewUnknownOperatorError(op string) *EvalError {
	return &EvalError{
		Message: fmt.Sprintf("unsupported operator %q", op),
		Tags:    []string{TagUnknownOperatorError},
	}
}

// NewInvalidOperandsError reports operands an operator cannot work with.
func NewInvalidOperandsError(op, msg string) *EvalError {
	return &EvalError{
		Message: fmt.Sprintf("invalid operands for %q: %s", op, msg),
		Tags:    []string{TagInvalidOperandsError},
	}
}

// NewConversionError reports a cast with no convertible argument.
func NewConversionError(msg string) *EvalError {
	return &EvalError{Message: msg, Tags: []string{TagConversionError}}
}

// NewTypeError creates a TypeError.
func NewTypeError(msg string) *EvalError {
	return &EvalError{Message: msg, Tags: []string{TagTypeError}}
}

// NewValueError creates a ValueError.
func NewValueError(msg string) *EvalError {
	return &EvalError{Message: msg, Tags: []string{TagValueError}}
}

// NewSyntaxError reports a malformed expression document.
func NewSyntaxError(msg string) *EvalError {
	return &EvalError{Message: msg, Tags: []string{TagSyntaxError}}
}
