package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

const shutdownTimeout = 10 * time.Second

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// serve runs srv until ctx is done or the listener fails. The HTTP side is
// shut down first so no upload reaches a closed queue, then each closer
// runs in order. serve returns only after the last closer has finished.
func serve(ctx context.Context, srv httpServer, log *slog.Logger, closers ...func() error) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
		log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", "error", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	}

	for _, c := range closers {
		if err := c(); err != nil {
			log.Warn("shutdown step failed", "error", err)
		}
	}
	return serveErr
}
