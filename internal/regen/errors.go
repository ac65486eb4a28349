package regen

import (
	"errors"
	"fmt"
)

var errEmptyResponse = errors.New("model returned empty text")

// ErrInvalidInput means the request was rejected locally before any network
// call was made.
type ErrInvalidInput struct {
	Field   string
	Message string
}

func (e *ErrInvalidInput) Error() string {
	return fmt.Sprintf("regenerate %s: %s", e.Field, e.Message)
}

// ErrRequestPending means another regeneration is already in flight.
type ErrRequestPending struct {
	Field string
}

func (e *ErrRequestPending) Error() string {
	return fmt.Sprintf("regenerate %s: another regeneration is already in progress", e.Field)
}

// ErrGenerationFailed wraps a model error. The original field value is left
// untouched and the request can be retried.
type ErrGenerationFailed struct {
	Field string
	Cause error
}

func (e *ErrGenerationFailed) Error() string {
	return fmt.Sprintf("regenerate %s: %v", e.Field, e.Cause)
}

func (e *ErrGenerationFailed) Unwrap() error { return e.Cause }
