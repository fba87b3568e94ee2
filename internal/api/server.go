package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dgallion1/hearinglist/internal/clean"
	"github.com/dgallion1/hearinglist/internal/config"
	"github.com/dgallion1/hearinglist/internal/extract"
	"github.com/dgallion1/hearinglist/internal/pipeline"
	"github.com/dgallion1/hearinglist/internal/report"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// EntityStore answers read queries over stored documents. *store.Store
// satisfies it.
type EntityStore interface {
	HearingEntities(ctx context.Context, hearingID string) ([]string, error)
	EntityCounts(ctx context.Context, limit int) ([]report.Count, error)
}

// Server is the HTTP API server for hearinglist.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	cleaner      *clean.Cleaner
	store        EntityStore
	stats        *extract.Stats
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. stats may be nil.
func NewServer(orch *pipeline.Orchestrator, cleaner *clean.Cleaner, st EntityStore, stats *extract.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		cleaner:      cleaner,
		store:        st,
		stats:        stats,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.Server.APIKey, s.log))

		r.Post("/api/extract", s.handleExtract)
		r.Get("/api/extract/{jobID}", s.handleExtractStatus)
		r.Get("/api/hearings/{hearingID}/entities", s.handleHearingEntities)
		r.Get("/api/entities/counts", s.handleEntityCounts)
		r.Post("/api/clean", s.handleClean)
		r.Get("/api/stats/extraction", s.handleExtractionStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
