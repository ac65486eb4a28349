package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordan/portfolio-studio/internal/config"
	"github.com/jordan/portfolio-studio/internal/db"
	"github.com/jordan/portfolio-studio/internal/llm"
	"github.com/jordan/portfolio-studio/internal/slugs"
	"github.com/jordan/portfolio-studio/internal/types"
)

// memoryStore is an in-memory Store for handler tests, mirroring the
// database layer's semantics including slug conflicts and view counting.
type memoryStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*types.PortfolioRecord
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[uuid.UUID]*types.PortfolioRecord)}
}

func (m *memoryStore) put(userID uuid.UUID, rec types.PortfolioRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[userID] = &rec
}

func (m *memoryStore) slugOwner(slug string) (uuid.UUID, bool) {
	for id, rec := range m.records {
		if rec.Publication.Slug == slug {
			return id, true
		}
	}
	return uuid.Nil, false
}

func (m *memoryStore) GetByUser(_ context.Context, userID uuid.UUID) (types.PortfolioRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[userID]
	if !ok {
		return types.PortfolioRecord{}, db.ErrNotFound
	}
	return *rec, nil
}

func (m *memoryStore) CreateFromParse(_ context.Context, userID uuid.UUID, doc types.ProfileDocument) (types.PortfolioRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[userID]; ok {
		rec.Document = doc
		return *rec, nil
	}
	rec := &types.PortfolioRecord{
		Document:     doc,
		Presentation: types.DefaultPresentation(),
		Publication:  types.PublicationRecord{Slug: slugs.Generate(doc.Name, userID)},
	}
	m.records[userID] = rec
	return *rec, nil
}

func (m *memoryStore) SaveDraft(_ context.Context, userID uuid.UUID, doc types.ProfileDocument, pres types.PresentationSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[userID]
	if !ok {
		return db.ErrNotFound
	}
	rec.Document = doc
	rec.Presentation = pres
	return nil
}

func (m *memoryStore) SetPublished(_ context.Context, userID uuid.UUID, published bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[userID]
	if !ok {
		return false, db.ErrNotFound
	}
	rec.Publication.IsPublished = published
	return rec.Publication.IsPublished, nil
}

func (m *memoryStore) CheckSlug(_ context.Context, userID uuid.UUID, slug string) (slugs.Availability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	owner, taken := m.slugOwner(slug)
	if taken && owner != userID {
		return slugs.Availability{Available: false, Reason: "slug is taken"}, nil
	}
	if taken {
		return slugs.Availability{Available: true, Reason: "already yours"}, nil
	}
	return slugs.Availability{Available: true}, nil
}

func (m *memoryStore) CommitSlug(_ context.Context, userID uuid.UUID, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	owner, taken := m.slugOwner(slug)
	if taken && owner != userID {
		return &slugs.ErrConflict{Slug: slug}
	}
	rec, ok := m.records[userID]
	if !ok {
		return db.ErrNotFound
	}
	rec.Publication.Slug = slug
	return nil
}

func (m *memoryStore) GetPublished(_ context.Context, slug string) (types.PortfolioRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.Publication.Slug == slug && rec.Publication.IsPublished {
			rec.Publication.ViewCount++
			return *rec, nil
		}
	}
	return types.PortfolioRecord{}, db.ErrNotFound
}

func (m *memoryStore) GetBySlug(_ context.Context, slug string) (types.PortfolioRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.Publication.Slug == slug && rec.Publication.IsPublished {
			return *rec, nil
		}
	}
	return types.PortfolioRecord{}, db.ErrNotFound
}

func (m *memoryStore) GetByDomain(_ context.Context, domain string) (types.PortfolioRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.Publication.CustomDomain != nil && *rec.Publication.CustomDomain == domain && rec.Publication.IsPublished {
			rec.Publication.ViewCount++
			return *rec, nil
		}
	}
	return types.PortfolioRecord{}, db.ErrNotFound
}

type stubLLM struct {
	reply string
}

func (s *stubLLM) GenerateText(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	return s.reply, nil
}

func (s *stubLLM) Close() error { return nil }

func newTestServer(t *testing.T, store Store) *Server {
	t.Helper()
	srv, err := New(Config{
		Port:          8080,
		PublicBaseURL: "https://folio.test",
		JWT:           &config.JWTConfig{Secret: "test-secret", ExpirationHours: 1},
	}, store, &stubLLM{reply: "  Polished text.  "})
	require.NoError(t, err)
	srv.resolverOpts = []slugs.Option{slugs.WithDebounce(time.Millisecond)}
	return srv
}

func authToken(t *testing.T, srv *Server, userID uuid.UUID) string {
	t.Helper()
	token, err := srv.jwtService.GenerateToken(userID)
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, srv *Server, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), dst))
}

const minimalDocument = `{
	"name": "Jordan Example",
	"title": "Software Engineer",
	"summary": "Builder of small sharp tools.",
	"skills": ["Go", "PostgreSQL"],
	"projects": [{"title": "folio", "description": "Portfolio engine."}]
}`

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t, newMemoryStore())

	rr := doRequest(t, srv, http.MethodGet, "/portfolio/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGetMeWithoutPortfolio(t *testing.T) {
	srv := newTestServer(t, newMemoryStore())
	token := authToken(t, srv, uuid.New())

	rr := doRequest(t, srv, http.MethodGet, "/portfolio/me", token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUploadDocumentAndFetch(t *testing.T) {
	srv := newTestServer(t, newMemoryStore())
	token := authToken(t, srv, uuid.New())

	rr := doRequest(t, srv, http.MethodPost, "/portfolio/me/document", token, minimalDocument)
	require.Equal(t, http.StatusCreated, rr.Code)

	var created types.PortfolioRecord
	decodeBody(t, rr, &created)
	assert.Equal(t, "Jordan Example", created.Document.Name)
	assert.NotEmpty(t, created.Publication.Slug)

	rr = doRequest(t, srv, http.MethodGet, "/portfolio/me", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var state draftPayload
	decodeBody(t, rr, &state)
	assert.Equal(t, "Jordan Example", state.Document.Name)
	assert.Equal(t, "standard", state.Presentation.TemplateID)
	assert.Equal(t, "saved_unpublished", string(state.Status))
	assert.False(t, state.Dirty)
}

func TestUploadRejectsInvalidDocument(t *testing.T) {
	srv := newTestServer(t, newMemoryStore())
	token := authToken(t, srv, uuid.New())

	rr := doRequest(t, srv, http.MethodPost, "/portfolio/me/document", token,
		`{"name": "X", "unexpected_field": true}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateFieldsAndPresentation(t *testing.T) {
	srv := newTestServer(t, newMemoryStore())
	token := authToken(t, srv, uuid.New())
	doRequest(t, srv, http.MethodPost, "/portfolio/me/document", token, minimalDocument)

	rr := doRequest(t, srv, http.MethodPut, "/portfolio/me", token, map[string]any{
		"fields": map[string]any{
			"summary":               "A sharper summary.",
			"projects[0].description": "Rewritten project pitch.",
		},
		"presentation": map[string]any{
			"template_id":   "tech",
			"primary_color": "#10b981",
		},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var state draftPayload
	decodeBody(t, rr, &state)
	assert.Equal(t, "A sharper summary.", state.Document.Summary)
	assert.Equal(t, "Rewritten project pitch.", state.Document.Projects[0].Description)
	assert.Equal(t, "tech", state.Presentation.TemplateID)
	assert.Equal(t, "#10b981", state.Presentation.PrimaryColor)
	assert.False(t, state.Dirty)
	assert.Equal(t, "saved_unpublished", string(state.Status))
}

func TestUpdateUnknownPathRejected(t *testing.T) {
	srv := newTestServer(t, newMemoryStore())
	token := authToken(t, srv, uuid.New())
	doRequest(t, srv, http.MethodPost, "/portfolio/me/document", token, minimalDocument)

	rr := doRequest(t, srv, http.MethodPut, "/portfolio/me", token, map[string]any{
		"fields": map[string]any{"nonsense": "value"},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPublishRefusedWhileDirty(t *testing.T) {
	srv := newTestServer(t, newMemoryStore())
	token := authToken(t, srv, uuid.New())
	doRequest(t, srv, http.MethodPost, "/portfolio/me/document", token, minimalDocument)

	// Edit without saving.
	rr := doRequest(t, srv, http.MethodPut, "/portfolio/me", token, map[string]any{
		"fields": map[string]any{"tagline": "Fresh tagline"},
		"save":   false,
	})
	require.Equal(t, http.StatusOK, rr.Code)
	var state draftPayload
	decodeBody(t, rr, &state)
	require.True(t, state.Dirty)

	rr = doRequest(t, srv, http.MethodPost, "/portfolio/me/publish", token, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	// Save, then publish succeeds.
	rr = doRequest(t, srv, http.MethodPut, "/portfolio/me", token, map[string]any{})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, srv, http.MethodPost, "/portfolio/me/publish", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]any
	decodeBody(t, rr, &resp)
	assert.Equal(t, "saved_published", resp["status"])
	assert.Equal(t, true, resp["is_published"])
	url, _ := resp["public_url"].(string)
	assert.True(t, strings.HasPrefix(url, "https://folio.test/u/"))
}

func TestUnpublish(t *testing.T) {
	srv := newTestServer(t, newMemoryStore())
	token := authToken(t, srv, uuid.New())
	doRequest(t, srv, http.MethodPost, "/portfolio/me/document", token, minimalDocument)
	doRequest(t, srv, http.MethodPost, "/portfolio/me/publish", token, nil)

	rr := doRequest(t, srv, http.MethodPost, "/portfolio/me/unpublish", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]any
	decodeBody(t, rr, &resp)
	assert.Equal(t, "saved_unpublished", resp["status"])
	assert.Equal(t, false, resp["is_published"])
}

func TestResetDiscardsUnsavedEdits(t *testing.T) {
	srv := newTestServer(t, newMemoryStore())
	token := authToken(t, srv, uuid.New())
	doRequest(t, srv, http.MethodPost, "/portfolio/me/document", token, minimalDocument)

	doRequest(t, srv, http.MethodPut, "/portfolio/me", token, map[string]any{
		"fields": map[string]any{"summary": "Discard me"},
		"save":   false,
	})

	rr := doRequest(t, srv, http.MethodPost, "/portfolio/me/reset", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var state draftPayload
	decodeBody(t, rr, &state)
	assert.Equal(t, "Builder of small sharp tools.", state.Document.Summary)
	assert.False(t, state.Dirty)
}

func TestCheckSlug(t *testing.T) {
	store := newMemoryStore()
	other := uuid.New()
	store.put(other, types.PortfolioRecord{
		Publication: types.PublicationRecord{Slug: "taken-slug"},
	})

	srv := newTestServer(t, store)
	token := authToken(t, srv, uuid.New())
	doRequest(t, srv, http.MethodPost, "/portfolio/me/document", token, minimalDocument)

	rr := doRequest(t, srv, http.MethodGet, "/portfolio/check-slug?slug=Taken-Slug%21", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var res slugResolution
	decodeBody(t, rr, &res)
	assert.Equal(t, "taken-slug", res.Candidate)
	assert.Equal(t, slugs.StateTaken, res.State)
	assert.False(t, res.Available)

	rr = doRequest(t, srv, http.MethodGet, "/portfolio/check-slug?slug=fresh-handle", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeBody(t, rr, &res)
	assert.Equal(t, slugs.StateAvailable, res.State)
	assert.True(t, res.Available)

	rr = doRequest(t, srv, http.MethodGet, "/portfolio/check-slug?slug=ab", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeBody(t, rr, &res)
	assert.Equal(t, slugs.StateInvalid, res.State)
	assert.False(t, res.Available)
}

func TestCommitSlug(t *testing.T) {
	srv := newTestServer(t, newMemoryStore())
	token := authToken(t, srv, uuid.New())
	doRequest(t, srv, http.MethodPost, "/portfolio/me/document", token, minimalDocument)

	// Committing without a confirmed availability check is refused.
	rr := doRequest(t, srv, http.MethodPatch, "/portfolio/me/slug", token, map[string]string{
		"slug": "never-checked",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = doRequest(t, srv, http.MethodGet, "/portfolio/check-slug?slug=my-new-handle", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, srv, http.MethodPatch, "/portfolio/me/slug", token, map[string]string{
		"slug": "my-new-handle",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	decodeBody(t, rr, &resp)
	assert.Equal(t, "my-new-handle", resp["slug"])
	assert.Equal(t, "https://folio.test/u/my-new-handle", resp["public_url"])

	rr = doRequest(t, srv, http.MethodGet, "/portfolio/me", token, nil)
	var state draftPayload
	decodeBody(t, rr, &state)
	assert.Equal(t, "my-new-handle", state.Publication.Slug)
}

func TestRegenerateAppliesToDraft(t *testing.T) {
	srv := newTestServer(t, newMemoryStore())
	token := authToken(t, srv, uuid.New())
	doRequest(t, srv, http.MethodPost, "/portfolio/me/document", token, minimalDocument)

	rr := doRequest(t, srv, http.MethodPost, "/portfolio/me/regenerate", token, map[string]string{
		"field":         "summary",
		"current_value": "Builder of small sharp tools.",
		"path":          "summary",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]any
	decodeBody(t, rr, &resp)
	assert.Equal(t, "Polished text.", resp["improved"])
	assert.Equal(t, true, resp["applied"])

	rr = doRequest(t, srv, http.MethodGet, "/portfolio/me", token, nil)
	var state draftPayload
	decodeBody(t, rr, &state)
	assert.Equal(t, "Polished text.", state.Document.Summary)
	assert.True(t, state.Dirty)
}

func TestRegenerateUnknownField(t *testing.T) {
	srv := newTestServer(t, newMemoryStore())
	token := authToken(t, srv, uuid.New())
	doRequest(t, srv, http.MethodPost, "/portfolio/me/document", token, minimalDocument)

	rr := doRequest(t, srv, http.MethodPost, "/portfolio/me/regenerate", token, map[string]string{
		"field":         "haiku",
		"current_value": "text",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPreviewShowsUnsavedEdits(t *testing.T) {
	srv := newTestServer(t, newMemoryStore())
	token := authToken(t, srv, uuid.New())
	doRequest(t, srv, http.MethodPost, "/portfolio/me/document", token, minimalDocument)

	doRequest(t, srv, http.MethodPut, "/portfolio/me", token, map[string]any{
		"fields": map[string]any{"name": "Draft Only Name"},
		"save":   false,
	})

	rr := doRequest(t, srv, http.MethodGet, "/portfolio/preview", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "Draft Only Name")
	assert.NotContains(t, rr.Body.String(), `rel="canonical"`)
}

func TestPublicPageAndViewCounting(t *testing.T) {
	store := newMemoryStore()
	owner := uuid.New()
	store.put(owner, types.PortfolioRecord{
		Document: types.ProfileDocument{
			Name:    "Casey Public",
			Summary: "Published portfolio.",
		},
		Presentation: types.DefaultPresentation(),
		Publication:  types.PublicationRecord{Slug: "casey", IsPublished: true},
	})
	srv := newTestServer(t, store)

	rr := doRequest(t, srv, http.MethodGet, "/u/casey", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Casey Public")
	assert.Contains(t, rr.Body.String(), "https://folio.test/u/casey")

	// Export renders do not count as visits.
	rr = doRequest(t, srv, http.MethodGet, "/u/casey?pdf=true", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, srv, http.MethodGet, "/portfolio/public/casey", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var rec types.PortfolioRecord
	decodeBody(t, rr, &rec)
	assert.Equal(t, 2, rec.Publication.ViewCount)
}

func TestPublicPageNotFound(t *testing.T) {
	srv := newTestServer(t, newMemoryStore())

	rr := doRequest(t, srv, http.MethodGet, "/u/ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doRequest(t, srv, http.MethodGet, "/portfolio/public/ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRehydrateNeverClobbersEdits(t *testing.T) {
	srv := newTestServer(t, newMemoryStore())
	token := authToken(t, srv, uuid.New())
	doRequest(t, srv, http.MethodPost, "/portfolio/me/document", token, minimalDocument)

	doRequest(t, srv, http.MethodPut, "/portfolio/me", token, map[string]any{
		"fields": map[string]any{"summary": "Unsaved edit"},
		"save":   false,
	})

	// Every request re-fetches the stored record; the edit must survive.
	rr := doRequest(t, srv, http.MethodGet, "/portfolio/me", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var state draftPayload
	decodeBody(t, rr, &state)
	assert.Equal(t, "Unsaved edit", state.Document.Summary)
	assert.True(t, state.Dirty)
}
