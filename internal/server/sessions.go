package server

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jordan/portfolio-studio/internal/db"
	"github.com/jordan/portfolio-studio/internal/draft"
	"github.com/jordan/portfolio-studio/internal/publish"
	"github.com/jordan/portfolio-studio/internal/regen"
	"github.com/jordan/portfolio-studio/internal/slugs"
	"github.com/jordan/portfolio-studio/internal/types"
)

// session bundles the per-user editing state: the draft store plus the
// components that operate on it. One session per authenticated user, created
// on first touch and hydrated from the stored record.
type session struct {
	userID       uuid.UUID
	store        *draft.Store
	resolver     *slugs.Resolver
	orchestrator *publish.Orchestrator
	regen        *regen.Client
}

// boundary adapts the shared persistence layer to the per-user interfaces
// the draft components expect.
type boundary struct {
	store  Store
	userID uuid.UUID
}

func (b boundary) SaveDraft(ctx context.Context, d publish.Draft) error {
	return b.store.SaveDraft(ctx, b.userID, d.Document, d.Presentation)
}

func (b boundary) SetPublished(ctx context.Context, published bool) (bool, error) {
	return b.store.SetPublished(ctx, b.userID, published)
}

func (b boundary) CheckSlug(ctx context.Context, slug string) (slugs.Availability, error) {
	return b.store.CheckSlug(ctx, b.userID, slug)
}

func (b boundary) CommitSlug(ctx context.Context, slug string) error {
	return b.store.CommitSlug(ctx, b.userID, slug)
}

// session returns the user's session, creating and hydrating it on first
// touch. A hydration fetch on an existing session never clobbers local
// edits: Initialize is a no-op after the first call.
func (s *Server) session(ctx context.Context, userID uuid.UUID) (*session, error) {
	s.sessionsMu.Lock()
	sess, ok := s.sessions[userID]
	if !ok {
		store := draft.NewStore()
		bound := boundary{store: s.store, userID: userID}
		sess = &session{
			userID:       userID,
			store:        store,
			resolver:     slugs.NewResolver(store, bound, bound, s.resolverOpts...),
			orchestrator: publish.NewOrchestrator(store, bound),
			regen:        regen.NewClient(s.llm),
		}
		s.sessions[userID] = sess
	}
	s.sessionsMu.Unlock()

	if err := s.hydrate(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// hydrate initializes the session's store from the persisted record. A user
// with no record hydrates an empty store. Initialize only acts on a store
// that has not been initialized since its last reset.
func (s *Server) hydrate(ctx context.Context, sess *session) error {
	rec, err := s.store.GetByUser(ctx, sess.userID)
	switch {
	case err == nil:
		sess.store.Initialize(&rec)
	case errors.Is(err, db.ErrNotFound):
		sess.store.Initialize(nil)
	default:
		return err
	}
	return nil
}

// dropSession closes and removes a user's session, forcing a re-hydrate on
// next touch.
func (s *Server) dropSession(userID uuid.UUID) {
	s.sessionsMu.Lock()
	sess, ok := s.sessions[userID]
	if ok {
		delete(s.sessions, userID)
	}
	s.sessionsMu.Unlock()
	if ok {
		sess.resolver.Close()
	}
}

func (s *Server) closeSessions() {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	for id, sess := range s.sessions {
		sess.resolver.Close()
		delete(s.sessions, id)
	}
}

// snapshotRecord converts a draft snapshot into the record shape used by the
// template dispatcher.
func snapshotRecord(snap draft.Snapshot) types.PortfolioRecord {
	hidden := make([]string, 0, len(snap.HiddenSections))
	for _, key := range types.SectionKeys() {
		if snap.HiddenSections[key] {
			hidden = append(hidden, key)
		}
	}
	return types.PortfolioRecord{
		Document: snap.Document,
		Presentation: types.PresentationSettings{
			TemplateID:     snap.TemplateID,
			ThemeID:        snap.ThemeID,
			ColorMode:      snap.ColorMode,
			PrimaryColor:   snap.PrimaryColor,
			HiddenSections: hidden,
		},
		Publication: types.PublicationRecord{
			Slug:         snap.Slug,
			CustomDomain: snap.CustomDomain,
			IsPublished:  snap.IsPublished,
		},
	}
}
