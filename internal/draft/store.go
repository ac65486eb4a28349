package draft

import (
	"sync"

	"github.com/jordan/portfolio-studio/internal/types"
)

// Store is the single in-memory owner of one session's working copy: the
// profile document, presentation settings, and publication flags. All
// mutations happen under the store's mutex and are fully applied before the
// mutating call returns, so no reader ever observes a partial update.
//
// A Store is constructed per session and passed explicitly to everything
// that needs it; there is no package-level instance.
type Store struct {
	mu sync.Mutex

	initialized bool
	generation  uint64

	doc            types.ProfileDocument
	templateID     string
	themeID        string
	colorMode      string
	primaryColor   string
	hiddenSections map[string]bool

	slug         string
	customDomain *string
	isPublished  bool

	dirty     bool
	everSaved bool
}

// Snapshot is a deep, read-only copy of the store's state at one instant.
type Snapshot struct {
	Document       types.ProfileDocument
	TemplateID     string
	ThemeID        string
	ColorMode      string
	PrimaryColor   string
	HiddenSections map[string]bool
	Slug           string
	CustomDomain   *string
	IsPublished    bool
	Dirty          bool
	EverSaved      bool
	Generation     uint64
}

// PresentationUpdate carries a partial presentation change; nil members are
// left untouched.
type PresentationUpdate struct {
	TemplateID   *string
	ThemeID      *string
	ColorMode    *string
	PrimaryColor *string
}

// NewStore returns a store holding the default presentation and an empty
// document, not yet initialized from a server record.
func NewStore() *Store {
	s := &Store{}
	s.applyDefaults()
	return s
}

func (s *Store) applyDefaults() {
	s.doc = types.ProfileDocument{}
	s.templateID = types.DefaultTemplateID
	s.themeID = types.DefaultThemeID
	s.colorMode = types.DefaultColorMode
	s.primaryColor = types.DefaultPrimaryColor
	s.hiddenSections = map[string]bool{}
	s.slug = ""
	s.customDomain = nil
	s.isPublished = false
	s.dirty = false
	s.everSaved = false
}

// Initialize hydrates the store from a fetched server record. It returns
// false without touching anything if the session has already initialized, so
// a background refetch can never clobber unsaved local edits.
func (s *Store) Initialize(rec *types.PortfolioRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return false
	}
	s.initialized = true

	if rec == nil {
		return true
	}

	s.doc = rec.Document.Clone()
	if rec.Presentation.TemplateID != "" {
		s.templateID = rec.Presentation.TemplateID
	}
	if rec.Presentation.ThemeID != "" {
		s.themeID = rec.Presentation.ThemeID
	}
	if rec.Presentation.ColorMode != "" {
		s.colorMode = rec.Presentation.ColorMode
	}
	if rec.Presentation.PrimaryColor != "" {
		s.primaryColor = rec.Presentation.PrimaryColor
	}
	for _, key := range rec.Presentation.HiddenSections {
		if types.KnownSection(key) {
			s.hiddenSections[key] = true
		}
	}
	s.slug = rec.Publication.Slug
	s.customDomain = rec.Publication.CustomDomain
	s.isPublished = rec.Publication.IsPublished
	s.everSaved = true
	return true
}

// UpdateField merges one change into the document, addressed by path
// ("summary", "skills", "projects[2].description", ...), and marks the draft
// dirty. Sibling fields and array entries are untouched.
func (s *Store) UpdateField(path string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := applyField(&s.doc, path, value); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// SetPresentation merges a partial presentation change and marks dirty.
func (s *Store) SetPresentation(u PresentationUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.TemplateID != nil {
		s.templateID = *u.TemplateID
	}
	if u.ThemeID != nil {
		s.themeID = *u.ThemeID
	}
	if u.ColorMode != nil {
		s.colorMode = *u.ColorMode
	}
	if u.PrimaryColor != nil {
		s.primaryColor = *u.PrimaryColor
	}
	s.dirty = true
}

// ToggleSection flips a section key's membership in the hidden set and marks
// dirty. Keys outside the known section set are rejected.
func (s *Store) ToggleSection(key string) error {
	if !types.KnownSection(key) {
		return &ErrUnknownSection{Key: key}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hiddenSections[key] {
		delete(s.hiddenSections, key)
	} else {
		s.hiddenSections[key] = true
	}
	s.dirty = true
	return nil
}

// Reset restores all fields to defaults and bumps the generation so results
// of async work started before the reset are detected as stale and dropped.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.applyDefaults()
	s.initialized = false
	s.generation++
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	hidden := make(map[string]bool, len(s.hiddenSections))
	for k, v := range s.hiddenSections {
		hidden[k] = v
	}
	var domain *string
	if s.customDomain != nil {
		d := *s.customDomain
		domain = &d
	}
	return Snapshot{
		Document:       s.doc.Clone(),
		TemplateID:     s.templateID,
		ThemeID:        s.themeID,
		ColorMode:      s.colorMode,
		PrimaryColor:   s.primaryColor,
		HiddenSections: hidden,
		Slug:           s.slug,
		CustomDomain:   domain,
		IsPublished:    s.isPublished,
		Dirty:          s.dirty,
		EverSaved:      s.everSaved,
		Generation:     s.generation,
	}
}

// Generation returns the current session generation.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// AdoptSaveResult clears the dirty flag and records that the draft has been
// saved, unless the store was reset since the save started (generation
// mismatch), in which case the result is dropped and false returned.
func (s *Store) AdoptSaveResult(generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		return false
	}
	s.dirty = false
	s.everSaved = true
	return true
}

// AdoptPublishResult records the authoritative published flag from a server
// response. Stale results (post-reset) are dropped.
func (s *Store) AdoptPublishResult(generation uint64, published bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		return false
	}
	s.isPublished = published
	return true
}

// AdoptSlug atomically replaces the slug after a successful commit. Stale
// results (post-reset) are dropped.
func (s *Store) AdoptSlug(generation uint64, slug string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		return false
	}
	s.slug = slug
	return true
}

// ApplyRegenerated replaces one targeted field with an improved value, used
// by the field-regeneration flow. Stale results are dropped.
func (s *Store) ApplyRegenerated(generation uint64, path string, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		return false, nil
	}
	if err := applyField(&s.doc, path, value); err != nil {
		return false, err
	}
	s.dirty = true
	return true, nil
}
