// Package server provides the HTTP API for the portfolio studio.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jordan/portfolio-studio/internal/config"
	"github.com/jordan/portfolio-studio/internal/llm"
	"github.com/jordan/portfolio-studio/internal/server/middleware"
	"github.com/jordan/portfolio-studio/internal/slugs"
	"github.com/jordan/portfolio-studio/internal/types"
)

// Store is the persistence boundary the server depends on. *db.DB satisfies
// it; tests substitute a fake.
type Store interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (types.PortfolioRecord, error)
	CreateFromParse(ctx context.Context, userID uuid.UUID, doc types.ProfileDocument) (types.PortfolioRecord, error)
	SaveDraft(ctx context.Context, userID uuid.UUID, doc types.ProfileDocument, pres types.PresentationSettings) error
	SetPublished(ctx context.Context, userID uuid.UUID, published bool) (bool, error)
	CheckSlug(ctx context.Context, userID uuid.UUID, slug string) (slugs.Availability, error)
	CommitSlug(ctx context.Context, userID uuid.UUID, slug string) error
	GetPublished(ctx context.Context, slug string) (types.PortfolioRecord, error)
	GetBySlug(ctx context.Context, slug string) (types.PortfolioRecord, error)
	GetByDomain(ctx context.Context, domain string) (types.PortfolioRecord, error)
}

// Server is the HTTP server for draft editing, publication, and public pages.
type Server struct {
	httpServer *http.Server
	store      Store
	llm        llm.Client
	jwtService *JWTService
	baseURL    string

	sessionsMu   sync.Mutex
	sessions     map[uuid.UUID]*session
	resolverOpts []slugs.Option
}

// Config holds server configuration.
type Config struct {
	Port          int
	PublicBaseURL string
	JWT           *config.JWTConfig
}

// New creates a server on top of an already-connected store and LLM client.
func New(cfg Config, store Store, llmClient llm.Client) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}

	s := &Server{
		store:      store,
		llm:        llmClient,
		jwtService: NewJWTService(cfg.JWT),
		baseURL:    cfg.PublicBaseURL,
		sessions:   make(map[uuid.UUID]*session),
	}

	mux := http.NewServeMux()
	auth := middleware.Auth(s.jwtService.AsTokenValidator())
	protected := func(h http.HandlerFunc) http.Handler { return auth(h) }

	// Owner (authenticated) endpoints
	mux.Handle("GET /portfolio/me", protected(s.handleGetMe))
	mux.Handle("PUT /portfolio/me", protected(s.handleUpdateMe))
	mux.Handle("POST /portfolio/me/document", protected(s.handleReplaceDocument))
	mux.Handle("POST /portfolio/me/publish", protected(s.handlePublish))
	mux.Handle("POST /portfolio/me/unpublish", protected(s.handleUnpublish))
	mux.Handle("POST /portfolio/me/reset", protected(s.handleReset))
	mux.Handle("GET /portfolio/check-slug", protected(s.handleCheckSlug))
	mux.Handle("PATCH /portfolio/me/slug", protected(s.handleCommitSlug))
	mux.Handle("POST /portfolio/me/regenerate", protected(s.handleRegenerate))
	mux.Handle("GET /portfolio/preview", protected(s.handlePreview))

	// Public endpoints
	mux.HandleFunc("GET /portfolio/public/{slug}", s.handlePublicJSON)
	mux.HandleFunc("GET /portfolio/domain/{domain}", s.handleDomainJSON)
	mux.HandleFunc("GET /u/{slug}", s.handlePublicPage)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[SERVER] Listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[SERVER] Server error: %v", err)
		}
	}()

	<-stop
	log.Println("[SERVER] Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.closeSessions()
	log.Println("[SERVER] Stopped")
	return nil
}

// Handler exposes the configured handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withCORS adds CORS headers.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// domainError writes an error response with the status derived from the
// error's type.
func (s *Server) domainError(w http.ResponseWriter, err error) {
	s.errorResponse(w, HTTPStatus(err), err.Error())
}

// publicURL builds the canonical public URL for a slug.
func (s *Server) publicURL(slug string) string {
	return s.baseURL + "/u/" + slug
}
