package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/payroll/internal/audit"
	"github.com/JonMunkholm/payroll/internal/config"
	"github.com/JonMunkholm/payroll/internal/core"
	"github.com/JonMunkholm/payroll/internal/logging"
	"github.com/JonMunkholm/payroll/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"upload_max_file_size", cfg.Upload.MaxFileSize,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"history_enabled", cfg.Database.Enabled(),
	)
	slog.Debug("configuration", "config", cfg.String())

	rules, err := core.LoadRules(cfg.Rules.File)
	if err != nil {
		slog.Error("failed to load override rules", "file", cfg.Rules.File, "error", err)
		os.Exit(1)
	}
	slog.Info("override rules loaded", "count", len(rules), "file", cfg.Rules.File)

	// Run history is optional; without a database the service keeps none.
	var recorder core.RunRecorder
	if cfg.Database.Enabled() {
		db, err := audit.Open(context.Background(), cfg.Database)
		if err != nil {
			slog.Error("failed to open history database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		recorder = db.Store()
		slog.Info("run history enabled")
	}

	service := core.NewService(core.ServiceOptions{
		Rules: rules,
		Encoder: &core.Encoder{
			Delimiter: cfg.Export.DelimiterRune(),
			BOM:       cfg.Export.BOM,
			FileName:  cfg.Export.FileName,
		},
		Recorder:      recorder,
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		MaxWait:       cfg.Upload.MaxWaitTime,
		Logger:        logger,
	})

	server := web.NewServer(service, cfg)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active uploads to complete (with timeout)
		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for uploads to complete", "active", status.Active)
			if err := service.WaitForUploads(shutdownCtx); err != nil {
				slog.Warn("uploads did not complete in time", "error", err)
			} else {
				slog.Info("all uploads completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
