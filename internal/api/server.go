// Package api exposes the search pipeline and its sinks over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/buscajob/buscajob/internal/cache"
	"github.com/buscajob/buscajob/internal/model"
	"github.com/buscajob/buscajob/internal/report"
	"github.com/buscajob/buscajob/internal/snapshot"
	"github.com/buscajob/buscajob/internal/stats"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Searcher runs searches. *pipeline.Pipeline satisfies it.
type Searcher interface {
	Run(ctx context.Context, criteria model.SearchCriteria) ([]model.JobPosting, error)
	Sites() []string
}

// ReportGenerator builds the fixed report. *report.Generator satisfies it.
type ReportGenerator interface {
	Generate(ctx context.Context) (report.Result, error)
}

// Deps are the collaborators the handlers use.
type Deps struct {
	Searcher    Searcher
	Sink        *snapshot.Sink
	Cache       cache.Store
	Store       model.CriteriaStore
	Stats       *stats.Stats
	Report      ReportGenerator
	CORSOrigins []string
}

type Server struct {
	router *chi.Mux
	deps   Deps
	now    func() time.Time
	logger *slog.Logger
}

func NewServer(deps Deps, logger *slog.Logger) *Server {
	if len(deps.CORSOrigins) == 0 {
		deps.CORSOrigins = []string{"*"}
	}
	s := &Server{
		router: chi.NewRouter(),
		deps:   deps,
		now:    time.Now,
		logger: logger,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.deps.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
	}))

	s.router.Get("/", s.handleRoot)
	s.router.Get("/metrics", s.deps.Stats.Handler().ServeHTTP)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/sites", s.handleSites)
		r.Get("/estatisticas", s.handleStats)
		r.Get("/ultimo-resultado", s.handleLatestResult)
		r.Get("/configuracoes", s.handleListCriteria)
		r.Get("/relatorio-fixo", s.handleFixedReport)
		r.Post("/buscar-vagas", s.handleSearch)
		r.Post("/salvar-configuracao", s.handleSaveCriteria)
		r.Post("/salvar-vaga", s.handleSaveFavorite)
		r.Post("/exportar-vagas", s.handleExport)
	})
}

func (s *Server) Router() http.Handler {
	return s.router
}

// requestLogger logs one line per request with status and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{"success": false, "error": message})
}
