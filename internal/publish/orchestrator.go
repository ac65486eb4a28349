// Package publish coordinates save, publish, and unpublish transitions for a
// draft session and derives the session's publication status.
package publish

import (
	"context"
	"sync"

	"github.com/jordan/portfolio-studio/internal/draft"
	"github.com/jordan/portfolio-studio/internal/types"
)

// Status is the derived publication state of a draft session.
type Status string

const (
	// StatusUnsaved means the draft has edits not yet persisted.
	StatusUnsaved Status = "unsaved"
	// StatusNeverSaved means the session has no persisted state at all.
	StatusNeverSaved Status = "never_saved"
	// StatusSavedUnpublished means the draft is persisted but not public.
	StatusSavedUnpublished Status = "saved_unpublished"
	// StatusSavedPublished means the persisted draft is publicly visible.
	StatusSavedPublished Status = "saved_published"
)

// Draft is the full payload sent to the persistence boundary on save.
type Draft struct {
	Document     types.ProfileDocument
	Presentation types.PresentationSettings
}

// Persister is the persistence boundary for save and publish transitions.
type Persister interface {
	// SaveDraft persists the full draft. Partial commits are not permitted:
	// either the whole draft lands or the call errors.
	SaveDraft(ctx context.Context, d Draft) error
	// SetPublished toggles the publication flag and returns the authoritative
	// resulting value.
	SetPublished(ctx context.Context, published bool) (bool, error)
}

// Orchestrator drives save/publish/unpublish for one draft store.
type Orchestrator struct {
	store     *draft.Store
	persister Persister

	mu             sync.Mutex
	savePending    bool
	publishPending bool
}

// NewOrchestrator wires an orchestrator to its store and persistence boundary.
func NewOrchestrator(store *draft.Store, persister Persister) *Orchestrator {
	return &Orchestrator{store: store, persister: persister}
}

// DeriveStatus computes the status from the dirty/everSaved/isPublished
// flags. It is a pure function; Status on the orchestrator is a convenience
// over the store's current snapshot.
func DeriveStatus(dirty, everSaved, isPublished bool) Status {
	switch {
	case dirty:
		return StatusUnsaved
	case isPublished:
		return StatusSavedPublished
	case !everSaved:
		return StatusNeverSaved
	default:
		return StatusSavedUnpublished
	}
}

// Status returns the current derived status.
func (o *Orchestrator) Status() Status {
	snap := o.store.Snapshot()
	return DeriveStatus(snap.Dirty, snap.EverSaved, snap.IsPublished)
}

// Save sends the full current draft to the persistence boundary. On success
// the dirty flag clears and everSaved is set; on failure local state is
// untouched and the error surfaces. Saving an already-clean draft is
// permitted and idempotent.
func (o *Orchestrator) Save(ctx context.Context) error {
	o.mu.Lock()
	if o.savePending {
		o.mu.Unlock()
		return &ErrOperationPending{Operation: "save"}
	}
	o.savePending = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.savePending = false
		o.mu.Unlock()
	}()

	snap := o.store.Snapshot()
	d := Draft{
		Document: snap.Document,
		Presentation: types.PresentationSettings{
			TemplateID:     snap.TemplateID,
			ThemeID:        snap.ThemeID,
			ColorMode:      snap.ColorMode,
			PrimaryColor:   snap.PrimaryColor,
			HiddenSections: types.DecodeHiddenSections(types.EncodeHiddenSections(snap.HiddenSections)),
		},
	}

	if err := o.persister.SaveDraft(ctx, d); err != nil {
		return &ErrSaveFailed{Cause: err}
	}

	// Dropped silently if the store was reset while the save was in flight.
	o.store.AdoptSaveResult(snap.Generation)
	return nil
}

// Publish makes the portfolio public. It refuses while the draft is dirty,
// returning the unchanged status; the resulting flag is adopted only from
// the server response.
func (o *Orchestrator) Publish(ctx context.Context) (Status, error) {
	return o.setPublished(ctx, true)
}

// Unpublish withdraws the portfolio from public view under the same rules as
// Publish.
func (o *Orchestrator) Unpublish(ctx context.Context) (Status, error) {
	return o.setPublished(ctx, false)
}

func (o *Orchestrator) setPublished(ctx context.Context, published bool) (Status, error) {
	snap := o.store.Snapshot()
	status := DeriveStatus(snap.Dirty, snap.EverSaved, snap.IsPublished)
	if snap.Dirty {
		return status, &ErrDraftDirty{}
	}

	o.mu.Lock()
	if o.publishPending {
		o.mu.Unlock()
		return status, &ErrOperationPending{Operation: "publish"}
	}
	o.publishPending = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.publishPending = false
		o.mu.Unlock()
	}()

	result, err := o.persister.SetPublished(ctx, published)
	if err != nil {
		return status, &ErrPublishFailed{Cause: err}
	}

	o.store.AdoptPublishResult(snap.Generation, result)
	return o.Status(), nil
}
