package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	applog "planeja/internal/log"
	"planeja/internal/planner"
	"planeja/internal/sheets"
)

// SheetSync mirrors the persisted lists to a spreadsheet.
type SheetSync struct {
	planner *planner.Store
	mirror  sheets.Mirror
	now     func() time.Time
}

func NewSheetSync(p *planner.Store, m sheets.Mirror) *SheetSync {
	return &SheetSync{planner: p, mirror: m, now: time.Now}
}

// Sync reloads the lists and overwrites the mirror. It returns how many
// lists were written.
func (s *SheetSync) Sync(ctx context.Context) (int, error) {
	start := time.Now()
	if err := s.planner.Reload(ctx); err != nil {
		return 0, fmt.Errorf("reload lists: %w", err)
	}
	lists := s.planner.Lists()
	if err := s.mirror.Write(ctx, sheets.BuildSnapshot(lists, s.now())); err != nil {
		return 0, fmt.Errorf("mirror lists: %w", err)
	}

	slog.InfoContext(ctx, "Lists mirrored to spreadsheet",
		applog.FieldComponent, applog.ComponentSheets,
		"lists", len(lists),
		applog.FieldDuration, time.Since(start).Milliseconds())
	return len(lists), nil
}
