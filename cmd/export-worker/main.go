package main

import (
	"context"
	"errors"
	"os"
	"time"

	"accountant/internal/amqp"
	"accountant/internal/cli"
	"accountant/internal/locale"
	"accountant/internal/log"
	"accountant/internal/services"
	gsheet "accountant/internal/sheets/google"
	"accountant/internal/worker"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentWorker)
	logger.Info("Starting export-worker")

	if err := cfg.ValidateExport(); err != nil {
		logger.Error("Export configuration invalid", "error", err)
		os.Exit(1)
	}

	res := cli.InitBackend(context.Background(), logger, cfg)
	defer res.Close()

	dashboard := services.NewDashboardService(res.Reader, res.Integrity, nil, services.DashboardServiceConfig{
		Timeout:     cfg.RequestTimeout,
		MonthCount:  cfg.MonthCount,
		HorizonDays: cfg.HorizonDays,
		Location:    services.BusinessLocation(cfg.Timezone),
	}, logger.WithComponent(log.ComponentDashboard).Logger)

	writer, err := gsheet.New(context.Background(), gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
		RevenueSheet:       cfg.GoogleRevenueSheet,
		BreakdownSheet:     cfg.GoogleBreakdownSheet,
		OverdueSheet:       cfg.GoogleOverdueSheet,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	l, ok := locale.Parse(cfg.ExportLocale)
	if !ok {
		l = locale.Default
	}
	exporter := worker.NewExportWorker(dashboard, writer, l)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	if err := exporter.StartupExport(ctx); err != nil {
		// Don't exit - the next change or tick retries
		logger.Error("Startup export failed", "error", err)
	}

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(log.ComponentAMQP).Logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		go func() {
			if err := client.ConsumeRecordsChanged(ctx, exporter.HandleRecordsChanged); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", "error", err)
			}
		}()
	} else {
		logger.Info("AMQP disabled, exporting on the interval only")
	}

	if cfg.ExportInterval > 0 {
		ticker := time.NewTicker(cfg.ExportInterval)
		defer ticker.Stop()
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					dashboard.InvalidateCache(ctx)
					if _, err := exporter.Export(ctx, dashboard.Today()); err != nil {
						logger.Error("Periodic export failed", "error", err)
					}
				}
			}
		}()
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Export-worker shutdown complete")
}
