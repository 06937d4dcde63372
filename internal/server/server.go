// Package server provides the HTTP API for the search service.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ateliernoir/search/internal/config"
	"github.com/ateliernoir/search/internal/search"
	"github.com/ateliernoir/search/internal/storage"
)

// Server is the HTTP server for the search API.
type Server struct {
	service *search.Service
	storage storage.Store
	config  *config.ServerConfig
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(service *search.Service, store storage.Store, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	return &Server{
		service: service,
		storage: store,
		config:  cfg,
		logger:  logger,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/api/v1/quick-search", s.handleQuickSearch)
	r.Post("/api/v1/products/search", s.handleProductSearch)
	r.Post("/api/v1/products", s.handleUpsertProduct)
	r.Get("/api/v1/products/{id}", s.handleGetProduct)
	r.Post("/api/v1/vocabulary/refresh", s.handleRefreshVocabulary)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
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
