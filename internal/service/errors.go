package service

import (
	"errors"
	"strings"
)

// Error kinds for every account operation. The HTTP layer maps these to
// status codes; nothing below it knows about transport.
var (
	ErrConflict        = errors.New("email already registered")
	ErrUnauthorized    = errors.New("not authorized")
	ErrNotFound        = errors.New("not found")
	ErrAlreadyVerified = errors.New("Verification has already been passed")
	ErrProcessing      = errors.New("avatar processing failed")
)

type FieldError struct {
	Field  string
	Reason string
}

// ValidationError carries per-field reasons; the first one becomes the
// response message.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Reason
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Message() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return e.Fields[0].Reason
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Reason: reason}}}
}
