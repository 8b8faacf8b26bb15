package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"time"

	"moneytracker/internal/backend"
	"moneytracker/internal/cache"
	"moneytracker/internal/cli"
	apphttp "moneytracker/internal/http"
	applog "moneytracker/internal/log"
)

func main() {
	configPath := flag.String("config", "", "config file")
	flag.Parse()

	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig(*configPath)
	if err != nil {
		applog.New(applog.DefaultConfig()).Error("Configuration validation failed",
			applog.FieldErrorType, applog.ErrorTypeConfiguration,
			applog.FieldError, err.Error())
		os.Exit(1)
	}

	logger, err := cli.SetupLogger(cfg, os.Stdout)
	if err != nil {
		applog.New(applog.DefaultConfig()).Error("Invalid log settings", applog.FieldError, err.Error())
		os.Exit(1)
	}

	if cfg.DataBackend == string(backend.SQLiteBackend) {
		if err := cfg.EnsureSQLiteDir(); err != nil {
			logger.Error("Failed to prepare SQLite directory", applog.FieldError, err.Error())
			os.Exit(1)
		}
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration",
			applog.FieldErrorType, applog.ErrorTypeConfiguration,
			applog.FieldError, err.Error())
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend",
			applog.FieldErrorType, applog.ErrorTypeDatabase,
			applog.FieldError, err.Error(),
			"backend", cfg.DataBackend)
		os.Exit(1)
	}

	mgr := cache.NewManager(logger)
	mgr.Register(res.Stats)

	srv := apphttp.NewServer(":"+cfg.Port, res.Service, res.Ping, mgr, logger)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err.Error())
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", applog.FieldError, err.Error())
		}
	})

	logger.Info("Starting moneytracker server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		applog.FieldOperation, applog.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
