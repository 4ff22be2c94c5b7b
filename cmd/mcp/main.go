package main

import (
	"log/slog"
	"os"

	mcpadapter "github.com/kirillkom/compliance-checker/internal/adapters/mcp"
	"github.com/kirillkom/compliance-checker/internal/bootstrap"
	"github.com/kirillkom/compliance-checker/internal/config"
	"github.com/kirillkom/compliance-checker/internal/observability/logging"
)

const serviceName = "compliance-mcp"

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_load_failed", "error", err)
		os.Exit(1)
	}
	// stdout carries the MCP protocol.
	logger := logging.NewJSONLoggerTo(os.Stderr, serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	compliance, err := bootstrap.NewCompliance(cfg, bootstrap.Options{Role: bootstrap.RoleMCP, Logger: logger})
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}

	server := mcpadapter.NewServer(cfg, compliance.ComplianceUC, logger, version)
	logger.Info("mcp_serving_stdio", "collection", compliance.Index.Name())
	if err := server.ServeStdio(); err != nil {
		logger.Error("mcp_server_failed", "error", err)
		os.Exit(1)
	}
}
