package publish

import "fmt"

// ErrDraftDirty indicates a publish or unpublish attempt while the draft has
// unsaved edits. Publishing stale content is disallowed; the request is
// never sent.
type ErrDraftDirty struct{}

func (e *ErrDraftDirty) Error() string {
	return "draft has unsaved changes; save before publishing"
}

// ErrOperationPending indicates the same operation is already in flight for
// this session.
type ErrOperationPending struct {
	Operation string
}

func (e *ErrOperationPending) Error() string {
	return fmt.Sprintf("%s already in progress", e.Operation)
}

// ErrSaveFailed wraps a persistence failure during save. Local state is left
// untouched and the save can be retried.
type ErrSaveFailed struct {
	Cause error
}

func (e *ErrSaveFailed) Error() string {
	return fmt.Sprintf("save failed: %v", e.Cause)
}

func (e *ErrSaveFailed) Unwrap() error { return e.Cause }

// ErrPublishFailed wraps a persistence failure during publish or unpublish.
type ErrPublishFailed struct {
	Cause error
}

func (e *ErrPublishFailed) Error() string {
	return fmt.Sprintf("publish failed: %v", e.Cause)
}

func (e *ErrPublishFailed) Unwrap() error { return e.Cause }
