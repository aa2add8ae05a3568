package model

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks against the typed errors below.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("task not found")
	ErrInvalidAspect = errors.New("invalid aspect")
)

// ValidationError reports a violated field constraint.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError reports an id with no matching task.
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InvalidAspectError reports an update aspect outside the known set.
type InvalidAspectError struct {
	Aspect string
}

func (e *InvalidAspectError) Error() string {
	return fmt.Sprintf("invalid aspect %q, must be one of: title, description, due_date, complete_task", e.Aspect)
}

func (e *InvalidAspectError) Is(target error) bool {
	return target == ErrInvalidAspect
}
