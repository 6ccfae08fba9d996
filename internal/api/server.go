package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds graceful shutdown once the run context ends.
const ShutdownTimeout = 5 * time.Second

// ServerConfig holds the listen address and expiry schedule.
type ServerConfig struct {
	Addr           string
	ExpirySchedule string
}

// Server serves the API and runs the expiry job.
type Server struct {
	config  ServerConfig
	backend Backend
	logger  *slog.Logger
	now     func() time.Time
}

// NewServer returns a server for backend. Call Run to start it.
func NewServer(config ServerConfig, backend Backend, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{config: config, backend: backend, logger: logger, now: time.Now}
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.config.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           NewRouter(s.backend, s.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.config.ExpirySchedule != "" {
		job, err := StartExpiryJob(s.config.ExpirySchedule, s.backend, s.now, s.logger)
		if err != nil {
			ln.Close()
			return err
		}
		defer job.Stop()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		s.logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
