package export

import "fmt"

// Stage identifies where in the pipeline an export failed.
type Stage string

const (
	StagePrepare Stage = "prepare"
	StageCapture Stage = "capture"
	StagePrint   Stage = "print"
)

// Error describes an export failure. The browser context is torn down before
// the error reaches the caller, so a retry starts from a clean slate.
type Error struct {
	Stage   Stage
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("export %s: %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("export %s: %s", e.Stage, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }
