package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// ReadinessFunc reports whether the service can accept traffic.
type ReadinessFunc func(ctx context.Context) error

// Server exposes health, readiness and metrics endpoints and mounts the
// application API under the same listener.
type Server struct {
	port      int
	ready     ReadinessFunc
	api       http.Handler
	apiPrefix string
	logger    *zerolog.Logger
}

func NewServer(port int, ready ReadinessFunc, logger *zerolog.Logger) *Server {
	return &Server{
		port:   port,
		ready:  ready,
		logger: logger,
	}
}

// NewServerWithAPI creates a server that also serves the given API handler at prefix.
func NewServerWithAPI(port int, ready ReadinessFunc, prefix string, api http.Handler, logger *zerolog.Logger) *Server {
	s := NewServer(port, ready, logger)
	s.api = api
	s.apiPrefix = prefix

	return s
}

// Handler builds the router. It is exported for tests.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "OK")
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if s.ready != nil {
			if err := s.ready(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = fmt.Fprintf(w, "not ready: %v", err)

				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "OK")
	})

	r.Handle("/metrics", promhttp.Handler())

	if s.api != nil {
		prefix := s.apiPrefix
		if prefix == "" {
			prefix = "/"
		}

		r.Mount(prefix, s.api)
	}

	return r
}

func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)

		defer cancel()

		//nolint:errcheck,contextcheck // shutdown in signal handler is best-effort, non-inherited context intentional
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Int("port", s.port).Msg("HTTP server starting")

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}
