package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sonuudigital/lovecakes/internal/logs"
)

const (
	serverReadHeaderTimeout time.Duration = 20 * time.Second
	serverWriteTimeout      time.Duration = 1 * time.Minute
	serverIdleTimeout       time.Duration = 3 * time.Minute
	serverShutdownTimeout   time.Duration = 10 * time.Second
)

func InitializeServer(port string, handler http.Handler) (*http.Server, error) {
	if port == "" {
		return nil, errors.New("http port is empty")
	}

	return &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: serverReadHeaderTimeout,
		WriteTimeout:      serverWriteTimeout,
		IdleTimeout:       serverIdleTimeout,
	}, nil
}

// StartServerAndWaitForShutdown serves until ctx is cancelled, then drains
// in-flight requests. It returns early if the listener fails.
func StartServerAndWaitForShutdown(ctx context.Context, srv *http.Server, logger logs.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("failed to serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	logger.Info("http server stopped")
	return nil
}
