package main

import (
	"context"
	"flag"
	"os"
	"time"

	"moneytracker/internal/amqp"
	"moneytracker/internal/api"
	"moneytracker/internal/cli"
	applog "moneytracker/internal/log"
	"moneytracker/internal/sheets/google"
	"moneytracker/internal/worker"
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
	if err := cfg.ValidateExport(); err != nil {
		logger.Error("Export configuration invalid", applog.FieldError, err.Error())
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required by the export worker")
		os.Exit(1)
	}

	logger.Info("Starting moneytracker-worker", applog.FieldOperation, applog.OpStartup)

	client, err := api.NewClient(nil, cfg.APIBaseURL, cfg.APITimeout)
	if err != nil {
		logger.Error("Failed to initialize backend client", applog.FieldError, err.Error())
		os.Exit(1)
	}

	sheetsClient, err := google.New(context.Background(), google.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err.Error())
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if err := amqpClient.Close(); err != nil {
			logger.Error("AMQP close error", applog.FieldError, err.Error())
		}
	})

	w := worker.NewExportWorker(client, sheetsClient, logger)
	if err := w.Run(ctx, amqpClient, cfg.ExportInterval); err != nil {
		logger.Error("Message consumption failed", applog.FieldError, err.Error())
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
}
