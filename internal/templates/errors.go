package templates

import "fmt"

// RenderError wraps a template execution failure.
type RenderError struct {
	TemplateID string
	Cause      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render template %q: %v", e.TemplateID, e.Cause)
}

func (e *RenderError) Unwrap() error { return e.Cause }
