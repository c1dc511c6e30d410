package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// HealthFunc reports readiness; a non-nil error turns /healthz into a 503.
type HealthFunc func(ctx context.Context) error

// Server exposes the admin endpoints: /metrics and /healthz.
type Server struct {
	port   int
	health HealthFunc
	server *http.Server
	log    *zerolog.Logger
}

func NewServer(port int, health HealthFunc, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "AdminHTTP").Logger()
	return &Server{port: port, health: health, log: &l}
}

// Router builds the chi router. Exposed for tests.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// Start blocks until the server stops. It returns nil after Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info().Int("port", s.port).Msg("admin HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health(ctx); err != nil {
			s.log.Warn().Err(err).Msg("health check failed")
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
