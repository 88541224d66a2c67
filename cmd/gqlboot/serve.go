package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	bootstrap "github.com/hanpama/gqlboot/internal/bootstrap"
	config "github.com/hanpama/gqlboot/internal/config"
	eventbus "github.com/hanpama/gqlboot/internal/eventbus"
	events "github.com/hanpama/gqlboot/internal/events"
	introspection "github.com/hanpama/gqlboot/internal/introspection"
	logging "github.com/hanpama/gqlboot/internal/logging"
	model "github.com/hanpama/gqlboot/internal/model"
	otel "github.com/hanpama/gqlboot/internal/otel"
	reqid "github.com/hanpama/gqlboot/internal/reqid"
	server "github.com/hanpama/gqlboot/internal/server"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve a schema model over HTTP",
		Long: `Serve compiles the model and exposes it at /graphql. Business methods are
resolved from the method registry; operations without a registered method
answer with a field error, which makes serve useful for previewing a model.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			eventbus.Use(eventbus.New())
			shutdown, err := otel.Setup(cfg.Otel.Endpoint, cfg.Otel.Service)
			if err != nil {
				return fmt.Errorf("otel setup: %w", err)
			}
			defer func() { _ = shutdown(context.Background()) }()
			defer accessLog(logger)()

			path, _ := cmd.Flags().GetString("model")
			m, err := model.Load(path)
			if err != nil {
				return err
			}
			h, err := newHandler(ctx, cfg, m, logger)
			if err != nil {
				return err
			}

			mux := http.NewServeMux()
			mux.Handle("/graphql", h)
			srv := &http.Server{Addr: cfg.Server.Addr, Handler: mux}

			errc := make(chan error, 1)
			go func() { errc <- srv.ListenAndServe() }()
			logger.Info("GraphQL server listening", zap.String("addr", cfg.Server.Addr))

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}

// newHandler bootstraps m and wraps the result for HTTP.
func newHandler(ctx context.Context, cfg *config.Config, m *model.Schema, logger *zap.Logger, opts ...bootstrap.Option) (http.Handler, error) {
	opts = append([]bootstrap.Option{
		bootstrap.WithContext(ctx),
		bootstrap.WithConfig(cfg),
		bootstrap.WithLogger(logger),
	}, opts...)
	res, err := bootstrap.Bootstrap(m, opts...)
	if err != nil {
		return nil, err
	}
	if res.Empty() {
		return nil, errors.New("model declares no operations")
	}

	w := introspection.Wrap(res.Runtime, res.Schema, res.Visibility)
	sopts := []server.Option{
		server.WithTimeout(cfg.Server.Timeout),
		server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		server.WithDocumentCache(cfg.Server.DocumentCache),
		server.WithGraphiQL(cfg.Server.GraphiQL),
	}
	if cfg.Server.Pretty {
		sopts = append(sopts, server.WithPretty())
	}
	return server.New(w.Runtime, w.Schema, sopts...)
}

// accessLog logs every finished HTTP request until the returned func is called.
func accessLog(logger *zap.Logger) func() {
	return eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
		rid, _ := reqid.FromContext(ctx)
		logger.Info("request",
			zap.String("request_id", rid),
			zap.String("method", e.Request.Method),
			zap.String("path", e.Request.URL.Path),
			zap.Int("status", e.Status),
			zap.Duration("duration", e.Duration))
	})
}
