package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/transport"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

// Serve runs h on ln until ctx ends, then shuts the server down gracefully.
func Serve(ctx context.Context, ln net.Listener, h http.Handler) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("module", "adapters.http").Str("addr", ln.Addr().String()).Msg("http server started")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Str("module", "adapters.http").Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("server forced to shutdown")
		return err
	}
	log.Info().Str("module", "adapters.http").Msg("server exited gracefully")
	return nil
}

// Advertised returns the configured endpoint, or the mailbox endpoint of the bound listener.
func Advertised(configured string, ln net.Listener) domain.Endpoint {
	if configured != "" {
		return domain.Endpoint(configured)
	}
	return transport.EndpointFor(ln.Addr().String())
}
