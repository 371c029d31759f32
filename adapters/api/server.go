// Package api exposes the merge pipeline over HTTP. The surface is thin and
// stateless: merged results go back to the caller, never to storage.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"propmerge/internal/config"
	"propmerge/ports"
)

// Server wires the merge pipeline behind a chi router
type Server struct {
	router   *chi.Mux
	merger   ports.ResultMerger
	renderer ports.ResultRenderer
	logger   zerolog.Logger
}

// NewServer creates the HTTP surface
func NewServer(merger ports.ResultMerger, renderer ports.ResultRenderer, logger zerolog.Logger) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		merger:   merger,
		renderer: renderer,
		logger:   logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler exposes the router for serving and tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks serving HTTP until the context is canceled
func (s *Server) ListenAndServe(ctx context.Context, cfg config.ServerConfig) error {
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/merge", s.handleMerge)
		r.Post("/merge/report", s.handleMergeReport)
	})
}
