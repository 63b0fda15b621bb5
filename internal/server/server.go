// Package server provides the HTTP API for Kiji.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/kiji/internal/config"
	"github.com/hyperjump/kiji/internal/docstore"
	"github.com/hyperjump/kiji/internal/ingest"
	"github.com/hyperjump/kiji/internal/search"
	"github.com/hyperjump/kiji/internal/storage"
	"go.uber.org/zap"
)

// Server is the HTTP server for the Kiji API.
type Server struct {
	service     *search.Service
	coordinator *ingest.Coordinator
	storage     storage.ArticleStore
	docs        docstore.Store
	config      *config.Config
	logger      *zap.Logger
	server      *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	service *search.Service,
	coordinator *ingest.Coordinator,
	store storage.ArticleStore,
	docs docstore.Store,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		service:     service,
		coordinator: coordinator,
		storage:     store,
		docs:        docs,
		config:      cfg,
		logger:      logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/ingest", s.handleIngest)
	r.Get("/api/v1/search", s.handleSearchGet)
	r.Post("/api/v1/search", s.handleSearchPost)
	r.Get("/api/v1/articles/{id}", s.handleGetArticle)
	r.Get("/api/v1/articles/{id}/similar", s.handleSimilar)
	r.Get("/api/v1/tags/aggregate", s.handleAggregateTags)
	r.Get("/api/v1/trending", s.handleTrending)
	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
