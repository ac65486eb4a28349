// Package draft owns the in-memory working copy of a profile document and
// its presentation settings for one editing session.
package draft

import "fmt"

// ErrUnknownPath indicates an UpdateField path that does not address any
// document field.
type ErrUnknownPath struct {
	Path string
}

func (e *ErrUnknownPath) Error() string {
	return fmt.Sprintf("unknown document path: %s", e.Path)
}

// ErrTypeMismatch indicates an UpdateField value whose type does not match
// the addressed field.
type ErrTypeMismatch struct {
	Path     string
	Expected string
}

func (e *ErrTypeMismatch) Error() string {
	return fmt.Sprintf("value for %s must be %s", e.Path, e.Expected)
}

// ErrIndexOutOfRange indicates an array index beyond the addressed sequence.
type ErrIndexOutOfRange struct {
	Path  string
	Index int
	Len   int
}

func (e *ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("index %d out of range for %s (len %d)", e.Index, e.Path, e.Len)
}

// ErrUnknownSection indicates a section key outside the known section set.
type ErrUnknownSection struct {
	Key string
}

func (e *ErrUnknownSection) Error() string {
	return fmt.Sprintf("unknown section key: %s", e.Key)
}
