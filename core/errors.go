package core

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	// the translated reasons already name their field
	msgs := make([]string, 0, len(err.Fields))
	for _, fe := range err.Fields {
		msgs = append(msgs, fe.Error)
	}
	return strings.Join(msgs, "; ")
}

// Unwrap lets errors.Is match the sentinel, when there is one.
func (err ValidationError) Unwrap() error { return err.Err }

// Reason returns the first human readable reason, suitable for a single prompt line.
func (err ValidationError) Reason() string {
	if len(err.Fields) > 0 {
		return err.Fields[0].Error
	}
	return err.Error()
}

// NotFoundError reports a lookup miss, with close matches when there are any.
type NotFoundError struct {
	Err         error
	Key         string
	Suggestions []string
}

func NewNotFoundError(err error, key string, candidates []string) error {
	return &NotFoundError{Err: err, Key: key, Suggestions: ClosestMatches(key, candidates)}
}

func (err NotFoundError) Error() string {
	msg := err.Err.Error()
	if len(err.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(err.Suggestions, ", "))
	}
	return msg
}

// Unwrap lets errors.Is match the sentinel.
func (err NotFoundError) Unwrap() error { return err.Err }

func IsValidation(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}
