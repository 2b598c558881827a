// Package daemon provides the trafdat server bootstrap and lifecycle
// management.
package daemon

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mnit-rtmc/trafdat/internal/log"
	"github.com/rs/zerolog"
)

// Config holds server lifecycle configuration.
type Config struct {
	// ListenAddr is the HTTP server listen address.
	ListenAddr string

	// Server timeouts.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// ShutdownTimeout is the graceful shutdown timeout.
	ShutdownTimeout time.Duration
}

// Daemon runs the trafdat HTTP server until its context is cancelled.
type Daemon struct {
	config Config
	server *http.Server
	logger zerolog.Logger
}

// New creates a daemon instance, filling in default timeouts.
func New(cfg Config) *Daemon {
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 60 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 120 * time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &Daemon{
		config: cfg,
		logger: log.WithComponent("daemon"),
	}
}

// Start runs the HTTP server with the given handler. It returns when the
// context is cancelled or the listener fails.
func (d *Daemon) Start(ctx context.Context, handler http.Handler) error {
	d.server = &http.Server{
		Addr:         d.config.ListenAddr,
		Handler:      handler,
		ReadTimeout:  d.config.ReadTimeout,
		WriteTimeout: d.config.WriteTimeout,
		IdleTimeout:  d.config.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		d.logger.Info().Msgf("HTTP server listening on %s", d.config.ListenAddr)
		if err := d.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return d.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server.
func (d *Daemon) Shutdown(ctx context.Context) error {
	d.logger.Info().Msg("Shutting down daemon...")

	shutdownCtx, cancel := context.WithTimeout(ctx, d.config.ShutdownTimeout)
	defer cancel()

	if d.server != nil {
		if err := d.server.Shutdown(shutdownCtx); err != nil {
			d.logger.Error().Err(err).Msg("HTTP server shutdown error")
			return err
		}
	}

	d.logger.Info().Msg("Daemon stopped")
	return nil
}
