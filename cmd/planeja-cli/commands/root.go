// Package commands implements planeja-cli, a terminal front end over the
// same stores the HTTP server uses.
package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"planeja/internal/cache"
	"planeja/internal/cli"
	"planeja/internal/core"
	"planeja/internal/insights"
	applog "planeja/internal/log"
	"planeja/internal/planner"
	"planeja/internal/services"
	"planeja/internal/settings"
)

// App is what every command operates on.
type App struct {
	Planner  *planner.Store
	Settings *settings.Store
	Insights *services.InsightService
	Drafts   *services.DraftService

	// Sheets connects the spreadsheet mirror on demand; nil means none is
	// configured.
	Sheets func(ctx context.Context) (*services.SheetSync, error)

	close func() error
}

// Close releases the backend behind the app, if any.
func (a *App) Close() error {
	if a.close == nil {
		return nil
	}
	return a.close()
}

// Opener builds the App before a command runs.
type Opener func(ctx context.Context) (*App, error)

// Execute runs the CLI against the backend configured in the environment.
func Execute() error {
	return NewRootCmd(openFromEnv).Execute()
}

func openFromEnv(ctx context.Context) (*App, error) {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.LogLevel, applog.ComponentCLI)

	stores, err := cli.OpenStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	analyzer, err := cli.NewAnalyzer(ctx, cfg)
	if err != nil {
		_ = stores.Close()
		return nil, err
	}
	app := NewApp(stores.Planner, stores.Settings, analyzer, insights.NewBoard(stores.Backend.Store), stores.Close)
	if cfg.SheetsEnabled() {
		app.Sheets = func(ctx context.Context) (*services.SheetSync, error) {
			return cli.NewSheetSync(ctx, cfg, stores.Planner)
		}
	}
	return app, nil
}

// NewApp wires the services a command needs. Insight refreshes always run
// inline and drafts only live for the duration of one command.
func NewApp(p *planner.Store, s *settings.Store, a *insights.Analyzer, board *insights.Board, closeFn func() error) *App {
	drafts := cache.NewLRUCache[core.ListDraft](1, time.Hour)
	return &App{
		Planner:  p,
		Settings: s,
		Insights: services.NewInsightService(p, s, a, board, nil, ""),
		Drafts:   services.NewDraftService(a, p, drafts, time.Hour),
		close:    closeFn,
	}
}

// NewRootCmd builds the command tree. open is called once per invocation.
func NewRootCmd(open Opener) *cobra.Command {
	var app *App

	root := &cobra.Command{
		Use:          "planeja-cli",
		Short:        "Plan savings lists from the terminal",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd.Context())
			if err != nil {
				return err
			}
			app = a
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app == nil {
				return nil
			}
			return app.Close()
		},
	}

	get := func() *App { return app }
	root.AddCommand(
		listsCmd(get),
		showCmd(get),
		createCmd(get),
		deleteCmd(get),
		addProductCmd(get),
		toggleCmd(get),
		depositCmd(get),
		totalsCmd(get),
		settingsCmd(get),
		exportCmd(get),
		clearCmd(get),
		insightsCmd(get),
		draftCmd(get),
		syncSheetCmd(get),
	)
	return root
}
