// Package slugs resolves public-identifier availability: it sanitizes input,
// debounces availability checks, discards stale responses, and commits a new
// slug through the persistence boundary.
package slugs

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jordan/portfolio-studio/internal/draft"
)

// Slug length bounds enforced before any network call.
const (
	MinLength = 3
	MaxLength = 40
)

// DefaultDebounce is the inactivity window before an availability check fires.
const DefaultDebounce = 500 * time.Millisecond

const checkTimeout = 10 * time.Second

// State is the resolver's view of the current candidate.
type State string

const (
	// StateIdle means no candidate is being resolved.
	StateIdle State = "idle"
	// StateInvalid means the input is too short; no query is issued.
	StateInvalid State = "invalid"
	// StateChecking means an availability query is pending or in flight.
	StateChecking State = "checking"
	// StateAvailable means the latest query confirmed the candidate is free.
	StateAvailable State = "available"
	// StateTaken means the latest query reported the candidate in use.
	StateTaken State = "taken"
	// StateCheckFailed means the latest query errored. Distinct from taken:
	// the user may retry, and future input is never blocked.
	StateCheckFailed State = "check_failed"
)

// Availability is the persistence boundary's answer for one candidate.
type Availability struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason"`
}

// Checker answers availability queries.
type Checker interface {
	CheckSlug(ctx context.Context, slug string) (Availability, error)
}

// Committer assigns a new slug, rejecting if it is no longer available at
// commit time.
type Committer interface {
	CommitSlug(ctx context.Context, slug string) error
}

// Resolution is a snapshot of the resolver's state.
type Resolution struct {
	State     State
	Candidate string
	Reason    string
}

// Resolver debounces slug input and enforces latest-wins on responses via a
// monotonically increasing generation number, not timer cancellation alone.
type Resolver struct {
	store     *draft.Store
	checker   Checker
	committer Committer
	debounce  time.Duration

	mu         sync.Mutex
	timer      *time.Timer
	generation uint64
	state      State
	candidate  string
	reason     string
	closed     bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDebounce overrides the debounce window (used by tests).
func WithDebounce(d time.Duration) Option {
	return func(r *Resolver) { r.debounce = d }
}

// NewResolver wires a resolver to its store and persistence boundary.
func NewResolver(store *draft.Store, checker Checker, committer Committer, opts ...Option) *Resolver {
	r := &Resolver{
		store:     store,
		checker:   checker,
		committer: committer,
		debounce:  DefaultDebounce,
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sanitize lowercases the input, strips everything outside [a-z0-9-], and
// caps the result at MaxLength.
func Sanitize(raw string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(raw) {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' {
			b.WriteRune(c)
		}
		if b.Len() >= MaxLength {
			break
		}
	}
	return b.String()
}

// OnInput accepts raw user input and returns the sanitized candidate.
// Inputs shorter than MinLength set StateInvalid and issue no query.
// Otherwise the check fires after the debounce window, tagged with a fresh
// generation; superseded checks never reach the network and superseded
// responses are discarded.
func (r *Resolver) OnInput(raw string) string {
	candidate := Sanitize(raw)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return candidate
	}

	// Supersede whatever was scheduled or in flight.
	r.generation++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.candidate = candidate
	r.reason = ""

	if len(candidate) < MinLength {
		r.state = StateInvalid
		return candidate
	}

	r.state = StateChecking
	gen := r.generation
	r.timer = time.AfterFunc(r.debounce, func() {
		r.check(gen, candidate)
	})
	return candidate
}

// check runs the availability query for one settled input. The generation is
// compared again when the response lands; anything but the latest is dropped.
func (r *Resolver) check(gen uint64, candidate string) {
	r.mu.Lock()
	if r.closed || gen != r.generation {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()
	avail, err := r.checker.CheckSlug(ctx, candidate)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || gen != r.generation {
		return // stale response, superseded by newer input
	}

	switch {
	case err != nil:
		r.state = StateCheckFailed
		r.reason = err.Error()
	case avail.Available:
		r.state = StateAvailable
		r.reason = avail.Reason
	default:
		r.state = StateTaken
		r.reason = avail.Reason
	}
}

// Resolution returns the current state, candidate, and reason.
func (r *Resolver) Resolution() Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Resolution{State: r.state, Candidate: r.candidate, Reason: r.reason}
}

// Commit assigns the candidate as the new slug. It is permitted only when
// the latest resolution is available, the candidate matches it, and the
// candidate differs from the current slug. The store's slug is replaced
// atomically on success.
func (r *Resolver) Commit(ctx context.Context, candidate string) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return &ErrNotCommittable{Candidate: candidate, Reason: "resolver closed"}
	}
	if r.state != StateAvailable || candidate != r.candidate {
		state := r.state
		r.mu.Unlock()
		return &ErrNotCommittable{Candidate: candidate, Reason: "availability not confirmed (state " + string(state) + ")"}
	}
	gen := r.generation
	r.mu.Unlock()

	if candidate == r.store.Snapshot().Slug {
		return &ErrNotCommittable{Candidate: candidate, Reason: "already the current slug"}
	}

	if err := r.committer.CommitSlug(ctx, candidate); err != nil {
		r.mu.Lock()
		if gen == r.generation {
			var conflict *ErrConflict
			if errors.As(err, &conflict) {
				// The server is authoritative at commit time; reflect the loss.
				r.state = StateTaken
			} else {
				r.state = StateCheckFailed
			}
			r.reason = err.Error()
		}
		r.mu.Unlock()
		return err
	}

	r.store.AdoptSlug(r.store.Generation(), candidate)
	return nil
}

// Close cancels any pending debounce timer. Responses already in flight are
// discarded by the generation check.
func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
