package main

import (
	"context"
	"os"
	"time"

	"planeja/internal/cli"
	"planeja/internal/insights"
	applog "planeja/internal/log"
	"planeja/internal/services"
	"planeja/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.LogLevel, applog.ComponentWorker)

	logger.Info("Starting planeja-worker")

	stores, err := cli.OpenStores(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to open stores", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer stores.Close()

	analyzer, err := cli.NewAnalyzer(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize Gemini client", "error", err)
		os.Exit(1)
	}

	cadence, err := services.GetReminderCadence(cfg.ReminderCadence)
	if err != nil {
		logger.Error("Invalid reminder cadence", "error", err)
		os.Exit(1)
	}

	broker, err := cli.ConnectBroker(cfg)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	// The worker consumes jobs; it never re-publishes insight refreshes.
	insightSvc := services.NewInsightService(stores.Planner, stores.Settings, analyzer,
		insights.NewBoard(stores.Backend.Store), nil, cfg.AMQPInsightsQueue)

	var (
		reminderPublisher services.ReminderPublisher
		consumer          worker.Consumer
	)
	if broker != nil {
		defer broker.Close()
		reminderPublisher, consumer = broker, broker
	} else {
		logger.Info("Reminders will be logged only")
	}

	reminders := services.NewReminderProcessor(stores.Planner, stores.Settings, stores.Backend.Store,
		reminderPublisher, cfg.AMQPRemindersQueue, cadence)

	var opts []worker.Option
	sheetSync, err := cli.NewSheetSync(context.Background(), cfg, stores.Planner)
	switch {
	case err != nil:
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		// Don't exit - reminders work without the mirror
	case sheetSync != nil:
		opts = append(opts, worker.WithSheetSync(sheetSync))
		logger.Info("Google Sheets mirror enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	w := worker.New(insightSvc, reminders, consumer, worker.Queues{
		Insights:  cfg.AMQPInsightsQueue,
		Reminders: cfg.AMQPRemindersQueue,
	}, cfg.ReminderInterval, opts...)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		insightSvc.Wait()
	})

	// On startup, send any reminders missed while the worker was down
	if err := w.StartupCheck(ctx); err != nil {
		logger.Error("Failed startup reminder check", "error", err)
		// Don't exit - continue with normal operation
	}

	logger.Info("Worker running",
		"interval", cfg.ReminderInterval.String(),
		"cadence", cfg.ReminderCadence,
		"broker", broker != nil)

	if err := w.Run(ctx); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
