package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jordan/portfolio-studio/internal/draft"
	"github.com/jordan/portfolio-studio/internal/publish"
	"github.com/jordan/portfolio-studio/internal/schemas"
	"github.com/jordan/portfolio-studio/internal/server/middleware"
	"github.com/jordan/portfolio-studio/internal/slugs"
	"github.com/jordan/portfolio-studio/internal/templates"
	"github.com/jordan/portfolio-studio/internal/types"
)

const maxBodyBytes = 1 << 20

// checkSlugWait bounds how long the check-slug endpoint waits for the
// debounced availability query to settle before answering.
const checkSlugWait = 3 * time.Second

// draftPayload is the owner's view of their session: the editable draft plus
// the derived publication status.
type draftPayload struct {
	Document     types.ProfileDocument      `json:"document"`
	Presentation types.PresentationSettings `json:"presentation"`
	Publication  types.PublicationRecord    `json:"publication"`
	Status       publish.Status             `json:"status"`
	Dirty        bool                       `json:"dirty"`
}

func draftState(sess *session) draftPayload {
	snap := sess.store.Snapshot()
	rec := snapshotRecord(snap)
	return draftPayload{
		Document:     rec.Document,
		Presentation: rec.Presentation,
		Publication:  rec.Publication,
		Status:       publish.DeriveStatus(snap.Dirty, snap.EverSaved, snap.IsPublished),
		Dirty:        snap.Dirty,
	}
}

// authedSession resolves the request's user and their hydrated session,
// writing the error response itself when either step fails.
func (s *Server) authedSession(w http.ResponseWriter, r *http.Request) (*session, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	sess, err := s.session(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to load portfolio")
		return nil, false
	}
	return sess, true
}

var validate = validator.New()

// decodeJSON decodes the request body into dst and checks its validate tags.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return false
	}
	return true
}

// handleGetMe returns the caller's current draft and publication status.
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.authedSession(w, r)
	if !ok {
		return
	}
	snap := sess.store.Snapshot()
	if !snap.EverSaved && !snap.Dirty {
		s.errorResponse(w, http.StatusNotFound, "no portfolio found; upload a profile document first")
		return
	}
	s.jsonResponse(w, http.StatusOK, draftState(sess))
}

type presentationPatch struct {
	TemplateID   *string `json:"template_id"`
	ThemeID      *string `json:"theme_id"`
	ColorMode    *string `json:"color_mode" validate:"omitempty,oneof=light dark"`
	PrimaryColor *string `json:"primary_color" validate:"omitempty,hexcolor"`
}

type updateDraftRequest struct {
	Fields         map[string]json.RawMessage `json:"fields"`
	Presentation   *presentationPatch         `json:"presentation"`
	ToggleSections []string                   `json:"toggle_sections"`
	Save           *bool                      `json:"save"`
}

// handleUpdateMe applies a batch of draft edits: targeted field updates,
// partial presentation changes, and section visibility toggles. Unless the
// request opts out, the full draft is saved afterwards.
func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.authedSession(w, r)
	if !ok {
		return
	}

	var req updateDraftRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	paths := make([]string, 0, len(req.Fields))
	for path := range req.Fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		var value any
		if err := json.Unmarshal(req.Fields[path], &value); err != nil {
			s.errorResponse(w, http.StatusBadRequest, "invalid value for field "+path)
			return
		}
		if err := sess.store.UpdateField(path, value); err != nil {
			s.domainError(w, err)
			return
		}
	}

	if req.Presentation != nil {
		sess.store.SetPresentation(draft.PresentationUpdate{
			TemplateID:   req.Presentation.TemplateID,
			ThemeID:      req.Presentation.ThemeID,
			ColorMode:    req.Presentation.ColorMode,
			PrimaryColor: req.Presentation.PrimaryColor,
		})
	}

	for _, key := range req.ToggleSections {
		if err := sess.store.ToggleSection(key); err != nil {
			s.domainError(w, err)
			return
		}
	}

	if req.Save == nil || *req.Save {
		if err := sess.orchestrator.Save(r.Context()); err != nil {
			s.domainError(w, err)
			return
		}
	}

	s.jsonResponse(w, http.StatusOK, draftState(sess))
}

// handleReplaceDocument validates a complete profile document against the
// schema and persists it as the user's portfolio, generating a slug on first
// upload. The session is dropped so the next touch hydrates the new record.
func (s *Server) handleReplaceDocument(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if err := schemas.ValidateDocument(raw); err != nil {
		s.domainError(w, err)
		return
	}

	var doc types.ProfileDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid document")
		return
	}

	rec, err := s.store.CreateFromParse(r.Context(), userID, doc)
	if err != nil {
		s.domainError(w, err)
		return
	}

	s.dropSession(userID)
	s.jsonResponse(w, http.StatusCreated, rec)
}

// handlePublish makes the portfolio public. A dirty draft refuses the
// transition; the client must save first.
func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	s.setPublished(w, r, true)
}

// handleUnpublish withdraws the portfolio from public view.
func (s *Server) handleUnpublish(w http.ResponseWriter, r *http.Request) {
	s.setPublished(w, r, false)
}

func (s *Server) setPublished(w http.ResponseWriter, r *http.Request, published bool) {
	sess, ok := s.authedSession(w, r)
	if !ok {
		return
	}

	var (
		status publish.Status
		err    error
	)
	if published {
		status, err = sess.orchestrator.Publish(r.Context())
	} else {
		status, err = sess.orchestrator.Unpublish(r.Context())
	}
	if err != nil {
		s.domainError(w, err)
		return
	}

	snap := sess.store.Snapshot()
	resp := map[string]any{
		"status":       status,
		"is_published": snap.IsPublished,
	}
	if snap.IsPublished && snap.Slug != "" {
		resp["public_url"] = s.publicURL(snap.Slug)
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleReset discards unsaved edits and re-hydrates the session from the
// stored record. Results of async work started before the reset are dropped
// by the generation bump.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.authedSession(w, r)
	if !ok {
		return
	}

	sess.store.Reset()
	if err := s.hydrate(r.Context(), sess); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to reload portfolio")
		return
	}
	s.jsonResponse(w, http.StatusOK, draftState(sess))
}

type slugResolution struct {
	State     slugs.State `json:"state"`
	Candidate string      `json:"candidate"`
	Reason    string      `json:"reason,omitempty"`
	Available bool        `json:"available"`
}

// handleCheckSlug feeds the candidate through the session's slug resolver
// and waits, bounded, for the debounced availability check to settle. Rapid
// successive requests supersede each other; only the newest candidate's
// resolution is ever reported.
func (s *Server) handleCheckSlug(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.authedSession(w, r)
	if !ok {
		return
	}

	raw := r.URL.Query().Get("slug")
	if raw == "" {
		s.errorResponse(w, http.StatusBadRequest, "slug query parameter is required")
		return
	}

	sess.resolver.OnInput(raw)
	res := sess.resolver.Resolution()
	deadline := time.Now().Add(checkSlugWait)
	for res.State == slugs.StateChecking && time.Now().Before(deadline) {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(25 * time.Millisecond):
		}
		res = sess.resolver.Resolution()
	}

	s.jsonResponse(w, http.StatusOK, slugResolution{
		State:     res.State,
		Candidate: res.Candidate,
		Reason:    res.Reason,
		Available: res.State == slugs.StateAvailable,
	})
}

// handleCommitSlug assigns a new slug. The resolver only permits the commit
// when the candidate's availability was confirmed and still holds; the
// database re-checks at commit time and may still report a conflict.
func (s *Server) handleCommitSlug(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.authedSession(w, r)
	if !ok {
		return
	}

	var req struct {
		Slug string `json:"slug" validate:"required"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}

	candidate := slugs.Sanitize(req.Slug)
	if err := sess.resolver.Commit(r.Context(), candidate); err != nil {
		s.domainError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{
		"slug":       candidate,
		"public_url": s.publicURL(candidate),
	})
}

type regenerateRequest struct {
	Field        string `json:"field" validate:"required"`
	CurrentValue string `json:"current_value"`
	Context      string `json:"context"`
	Path         string `json:"path"`
}

// handleRegenerate asks the model for an improved version of one text field.
// When a document path is supplied the result is applied to the draft,
// unless the session moved on while the request was in flight.
func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.authedSession(w, r)
	if !ok {
		return
	}

	var req regenerateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	generation := sess.store.Generation()
	improved, err := sess.regen.Regenerate(r.Context(), req.Field, req.CurrentValue, req.Context)
	if err != nil {
		s.domainError(w, err)
		return
	}

	applied := false
	if req.Path != "" {
		applied, err = sess.store.ApplyRegenerated(generation, req.Path, improved)
		if err != nil {
			s.domainError(w, err)
			return
		}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"field":    req.Field,
		"improved": improved,
		"applied":  applied,
	})
}

// handlePreview renders the caller's current draft as HTML, including
// unsaved edits. Preview pages carry no canonical link and no view counter.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.authedSession(w, r)
	if !ok {
		return
	}

	rec := snapshotRecord(sess.store.Snapshot())
	var buf bytes.Buffer
	if err := templates.Render(&buf, rec, templates.RenderOptions{
		IsPreview: true,
		Year:      time.Now().Year(),
	}); err != nil {
		s.domainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// handlePublicJSON returns a published portfolio by slug. Each hit counts
// as a view.
func (s *Server) handlePublicJSON(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetPublished(r.Context(), r.PathValue("slug"))
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

// handleDomainJSON returns a published portfolio by custom domain.
func (s *Server) handleDomainJSON(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetByDomain(r.Context(), r.PathValue("domain"))
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

// handlePublicPage serves the published portfolio as a full HTML page.
// Export renders pass pdf=true, which skips the view counter and switches
// the template into export mode.
func (s *Server) handlePublicPage(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	isExport := r.URL.Query().Get("pdf") == "true"

	var (
		rec types.PortfolioRecord
		err error
	)
	if isExport {
		rec, err = s.store.GetBySlug(r.Context(), slug)
	} else {
		rec, err = s.store.GetPublished(r.Context(), slug)
	}
	if err != nil {
		http.Error(w, "portfolio not found", HTTPStatus(err))
		return
	}

	var buf bytes.Buffer
	if err := templates.Render(&buf, rec, templates.RenderOptions{
		CanonicalURL: s.publicURL(slug),
		IsExport:     isExport,
		Year:         time.Now().Year(),
	}); err != nil {
		http.Error(w, "failed to render portfolio", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
