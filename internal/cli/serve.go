package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/leadchat/internal/metrics"
	httpAdapter "github.com/aretw0/leadchat/pkg/adapters/http"
	"github.com/aretw0/leadchat/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 5 * time.Second

// NewServeHandler wires the HTTP API: store, metrics, SSE streams.
// The returned close func releases the store.
func NewServeHandler(ctx context.Context, opts ServeOptions) (http.Handler, func() error, error) {
	logger, err := createLogger(opts.Config.LogLevel, opts.Debug)
	if err != nil {
		return nil, nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.New(registry)

	hooks := collector.Hooks()
	if opts.Debug {
		hooks = hooks.Merge(createDebugHooks(logger))
	}

	bot, err := createBot(opts.Config, logger, hooks)
	if err != nil {
		return nil, nil, err
	}

	stores, err := createStore(ctx, opts.Config)
	if err != nil {
		return nil, nil, err
	}

	streams := httpAdapter.NewStreamManager(logger)
	sessionOpts := []session.Option{session.WithObserver(streams.Observe)}
	if stores.Locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(stores.Locker))
	}
	sessions := bot.Sessions(stores.Store, sessionOpts...)

	handler := httpAdapter.NewHandler(sessions,
		httpAdapter.WithLogger(logger),
		httpAdapter.WithStreams(streams),
		httpAdapter.WithMetricsHandler(metrics.Handler(registry)),
		httpAdapter.WithAllowedOrigin(opts.Config.CORSOrigin),
	)

	logger.Info("HTTP API ready", "store", opts.Config.Store, "nodes", bot.Graph().Len())
	return handler, stores.Close, nil
}

// RunServe serves the HTTP API until ctx is canceled.
func RunServe(ctx context.Context, opts ServeOptions) error {
	handler, closeStore, err := NewServeHandler(ctx, opts)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := &http.Server{
		Addr:              opts.Config.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		printSystemMessage(opts.stdout(), "Starting leadchat server on %s", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		printSystemMessage(opts.stdout(), "Shutting down...")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
		}
		if err := <-serverErrors; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		printSystemMessage(opts.stdout(), "leadchat server stopped gracefully")
		return nil
	}
}
