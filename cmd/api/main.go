package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/kirillkom/compliance-checker/internal/adapters/http"
	"github.com/kirillkom/compliance-checker/internal/bootstrap"
	"github.com/kirillkom/compliance-checker/internal/config"
	"github.com/kirillkom/compliance-checker/internal/observability/logging"
	"github.com/kirillkom/compliance-checker/internal/observability/metrics"
)

const serviceName = "compliance-api"

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_load_failed", "error", err)
		os.Exit(1)
	}
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpMetrics := metrics.NewHTTPServerMetrics(serviceName)
	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		Role:     bootstrap.RoleAPI,
		Logger:   logger,
		Observer: httpMetrics.Dependencies(),
		Recorder: httpMetrics,
	})
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	router, err := httpadapter.NewRouter(cfg, app.IngestUC, app.DocumentsUC, app.ComplianceUC,
		httpadapter.WithMetrics(httpMetrics),
		httpadapter.WithHealthCheck(app.Repo.Ping),
		httpadapter.WithLogger(logger),
		httpadapter.WithVersion(version),
	)
	if err != nil {
		logger.Error("router_init_failed", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "port", cfg.APIPort, "version", version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	if bootstrap.IndexesInProcess(cfg) {
		go func() {
			logger.Info("indexer_in_process", "subject", cfg.NATSSubject, "vector_backend", cfg.VectorBackend)
			if err := app.RunIndexer(ctx, serviceName, nil); err != nil {
				logger.Error("indexer_subscribe_failed", "error", err)
				stop()
			}
		}()
	}

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_failed", "error", err)
	}
}
