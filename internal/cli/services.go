package cli

import (
	"context"
	"log/slog"

	"planeja/internal/amqp"
	"planeja/internal/config"
	"planeja/internal/insights"
	"planeja/internal/insights/gemini"
	applog "planeja/internal/log"
	"planeja/internal/planner"
	"planeja/internal/services"
	"planeja/internal/sheets/google"
)

// NewAnalyzer returns an analyzer backed by Gemini when an API key is
// configured, and a disabled one otherwise.
func NewAnalyzer(ctx context.Context, cfg *config.Config) (*insights.Analyzer, error) {
	if cfg.GeminiAPIKey == "" {
		slog.InfoContext(ctx, "Gemini disabled - no GEMINI_API_KEY provided",
			applog.FieldComponent, applog.ComponentInsights)
		return insights.NewAnalyzer(nil), nil
	}
	client, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, err
	}
	return insights.NewAnalyzer(client), nil
}

// ConnectBroker dials the message broker and declares both queues. It
// returns nil when no AMQP_URL is configured.
func ConnectBroker(cfg *config.Config) (*amqp.Client, error) {
	if !cfg.AMQPEnabled() {
		slog.Info("AMQP disabled - no AMQP_URL provided")
		return nil, nil
	}
	return amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPInsightsQueue, cfg.AMQPRemindersQueue)
}

// NewSheetSync connects the spreadsheet mirror. It returns nil when no
// GOOGLE_SPREADSHEET_ID is configured.
func NewSheetSync(ctx context.Context, cfg *config.Config, p *planner.Store) (*services.SheetSync, error) {
	if !cfg.SheetsEnabled() {
		slog.InfoContext(ctx, "Google Sheets mirror disabled - no GOOGLE_SPREADSHEET_ID provided",
			applog.FieldComponent, applog.ComponentSheets)
		return nil, nil
	}
	client, err := google.New(ctx, cfg.GoogleSpreadsheetID, cfg.SheetsListsTab, cfg.SheetsProductsTab)
	if err != nil {
		return nil, err
	}
	return services.NewSheetSync(p, client), nil
}
