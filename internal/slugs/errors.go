package slugs

import "fmt"

// ErrNotCommittable indicates a commit attempt without a confirmed-available
// candidate, or with a candidate equal to the current slug.
type ErrNotCommittable struct {
	Candidate string
	Reason    string
}

func (e *ErrNotCommittable) Error() string {
	return fmt.Sprintf("slug %q cannot be committed: %s", e.Candidate, e.Reason)
}

// ErrConflict indicates the slug was no longer available at commit time. The
// persistence layer returns it when the uniqueness constraint rejects the
// assignment.
type ErrConflict struct {
	Slug string
}

func (e *ErrConflict) Error() string {
	return fmt.Sprintf("slug %q is already taken", e.Slug)
}
