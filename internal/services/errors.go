package services

import (
	"encoding/json"
	"errors"
)

var (
	// ErrNotFound is returned when a single resource is absent or owned by
	// someone else. The two cases are indistinguishable.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated is returned when credentials do not check out.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// ValidationError collects per-field input problems.
type ValidationError struct {
	Fields map[string]string
}

// Error renders the field map as JSON, e.g. {"title":"must be provided"}.
func (e *ValidationError) Error() string {
	data, err := json.Marshal(e.Fields)
	if err != nil {
		return "validation failed"
	}
	return string(data)
}

// PreconditionError wraps a failure reported by the store. Its message is the
// store's message.
type PreconditionError struct {
	Err error
}

func (e *PreconditionError) Error() string { return e.Err.Error() }

func (e *PreconditionError) Unwrap() error { return e.Err }

func precondition(err error) error {
	if err == nil {
		return nil
	}
	return &PreconditionError{Err: err}
}

type validator struct {
	errors map[string]string
}

func newValidator() *validator {
	return &validator{errors: make(map[string]string)}
}

func (v *validator) checkCond(cond bool, key, msg string) {
	if cond {
		return
	}
	if _, ok := v.errors[key]; !ok {
		v.errors[key] = msg
	}
}

func (v *validator) required(value, key string) {
	v.checkCond(value != "", key, "must be provided")
}

func (v *validator) err() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.errors}
}
