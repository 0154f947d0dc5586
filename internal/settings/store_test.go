package settings

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"planeja/internal/core"
	"planeja/internal/kv"
	"planeja/internal/kv/memory"
)

func newTestStore(t *testing.T, backing *memory.Store, opts ...Option) *Store {
	t.Helper()
	s, err := New(context.Background(), backing, opts...)
	if err != nil {
		t.Fatalf("new settings store: %v", err)
	}
	return s
}

func TestNewUsesDefaultsWhenMissing(t *testing.T) {
	var applied []string
	s := newTestStore(t, memory.New(), WithThemeApplier(func(th string) { applied = append(applied, th) }))

	if got := s.Get(); got != Defaults() {
		t.Fatalf("expected defaults, got %+v", got)
	}
	if len(applied) != 1 || applied[0] != ThemeLight {
		t.Errorf("theme should be applied once on load, got %v", applied)
	}
}

func TestNewMergesPersistedOverDefaults(t *testing.T) {
	backing := memory.New()
	doc := `{"financial":{"currency":"USD"},"appearance":{"theme":"dark"}}`
	_ = backing.Set(context.Background(), kv.KeySettings, []byte(doc))

	s := newTestStore(t, backing)
	got := s.Get()

	if got.Financial.Currency != "USD" || got.Appearance.Theme != ThemeDark {
		t.Errorf("persisted values not applied: %+v", got)
	}
	if got.Financial.CloseDay != 5 || !got.Financial.AutoSaveGoal || got.Notifications.ReminderDays != 3 {
		t.Errorf("missing fields should keep defaults: %+v", got)
	}
}

func TestNewSanitizesOutOfRangeValues(t *testing.T) {
	backing := memory.New()
	doc := `{"financial":{"currency":"JPY","closeDay":40},"appearance":{"theme":"neon","hideValues":true}}`
	_ = backing.Set(context.Background(), kv.KeySettings, []byte(doc))

	got := newTestStore(t, backing).Get()
	if got.Financial.Currency != "BRL" || got.Financial.CloseDay != 5 || got.Appearance.Theme != ThemeLight {
		t.Errorf("invalid fields should fall back to defaults: %+v", got)
	}
	if !got.Appearance.HideValues {
		t.Error("valid fields must be kept")
	}
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name    string
		section string
		fields  string
		wantErr error
		check   func(t *testing.T, s Settings)
	}{
		{
			name:    "financial currency",
			section: SectionFinancial,
			fields:  `{"currency":"EUR","closeDay":28}`,
			check: func(t *testing.T, s Settings) {
				if s.Financial.Currency != "EUR" || s.Financial.CloseDay != 28 || !s.Financial.AutoSaveGoal {
					t.Errorf("unexpected financial section: %+v", s.Financial)
				}
			},
		},
		{
			name:    "notifications partial",
			section: SectionNotifications,
			fields:  `{"aiInsights":false}`,
			check: func(t *testing.T, s Settings) {
				if s.Notifications.AIInsights || !s.Notifications.DeadlineAlert || s.Notifications.ReminderDays != 3 {
					t.Errorf("unexpected notifications section: %+v", s.Notifications)
				}
			},
		},
		{name: "unknown section", section: "privacy", fields: `{}`, wantErr: ErrUnknownSection},
		{name: "unknown field", section: SectionAppearance, fields: `{"font":"big"}`, wantErr: ErrInvalid},
		{name: "unsupported currency", section: SectionFinancial, fields: `{"currency":"GBP"}`, wantErr: ErrInvalid},
		{name: "not a currency", section: SectionFinancial, fields: `{"currency":"REAL"}`, wantErr: ErrInvalid},
		{name: "close day out of range", section: SectionFinancial, fields: `{"closeDay":0}`, wantErr: ErrInvalid},
		{name: "reminder days out of range", section: SectionNotifications, fields: `{"reminderDays":31}`, wantErr: ErrInvalid},
		{name: "bad theme", section: SectionAppearance, fields: `{"theme":"blue"}`, wantErr: ErrInvalid},
		{name: "wrong type", section: SectionFinancial, fields: `{"closeDay":"5"}`, wantErr: ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backing := memory.New()
			s := newTestStore(t, backing)

			got, err := s.Update(context.Background(), tt.section, json.RawMessage(tt.fields))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if s.Get() != Defaults() {
					t.Errorf("rejected update must not change settings")
				}
				if backing.Len() != 0 {
					t.Errorf("rejected update must not persist")
				}
				return
			}
			if err != nil {
				t.Fatalf("update: %v", err)
			}
			tt.check(t, got)
			if s.Get() != got {
				t.Errorf("store does not reflect update")
			}

			reloaded := newTestStore(t, backing).Get()
			if reloaded != got {
				t.Errorf("update not persisted: %+v", reloaded)
			}
		})
	}
}

func TestToggleTheme(t *testing.T) {
	var applied []string
	s := newTestStore(t, memory.New(), WithThemeApplier(func(th string) { applied = append(applied, th) }))

	theme, err := s.ToggleTheme(context.Background())
	if err != nil || theme != ThemeDark {
		t.Fatalf("first toggle: %q err=%v", theme, err)
	}
	theme, _ = s.ToggleTheme(context.Background())
	if theme != ThemeLight {
		t.Fatalf("second toggle: %q", theme)
	}
	want := []string{ThemeLight, ThemeDark, ThemeLight}
	if strings.Join(applied, ",") != strings.Join(want, ",") {
		t.Errorf("applied themes = %v, want %v", applied, want)
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		currency string
		hide     bool
		cents    int64
		want     string
	}{
		{"BRL", false, 123450, "R$\u00a01.234,5"},
		{"BRL", false, 123456, "R$\u00a01.234,56"},
		{"BRL", false, 100000, "R$\u00a01.000"},
		{"BRL", false, 0, "R$\u00a00"},
		{"USD", false, 123450, "$1,234.5"},
		{"USD", false, 99, "$0.99"},
		{"EUR", false, 123450, "1.234,5\u00a0€"},
		{"EUR", false, -2500, "-25\u00a0€"},
		{"USD", true, 123450, MaskedValue},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			s := newTestStore(t, memory.New())
			fields, _ := json.Marshal(map[string]string{"currency": tt.currency})
			if _, err := s.Update(context.Background(), SectionFinancial, fields); err != nil {
				t.Fatalf("set currency: %v", err)
			}
			if tt.hide {
				if _, err := s.Update(context.Background(), SectionAppearance, json.RawMessage(`{"hideValues":true}`)); err != nil {
					t.Fatalf("hide values: %v", err)
				}
			}

			format := s.Formatter()
			if got := format(core.Money{Cents: tt.cents}); got != tt.want {
				t.Errorf("format(%d) = %q, want %q", tt.cents, got, tt.want)
			}
		})
	}
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	backing := memory.New()
	s := newTestStore(t, backing, WithClock(func() time.Time {
		return time.Date(2024, 7, 1, 23, 30, 0, 0, time.UTC)
	}))

	empty, err := s.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if empty.Filename != "planeja_backup_2024-07-01.json" {
		t.Errorf("filename = %q", empty.Filename)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(empty.Body, &doc); err != nil {
		t.Fatalf("decode backup: %v", err)
	}
	if string(doc["lists"]) != "[]" || string(doc["settings"]) != "{}" {
		t.Errorf("absent keys should export as [] and {}: %s", empty.Body)
	}

	_ = backing.Set(ctx, kv.KeyLists, []byte(`[{"id":"a"}]`))
	if _, err := s.ToggleTheme(ctx); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	full, err := s.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var out struct {
		Lists    []map[string]any `json:"lists"`
		Settings Settings         `json:"settings"`
	}
	if err := json.Unmarshal(full.Body, &out); err != nil {
		t.Fatalf("decode backup: %v", err)
	}
	if len(out.Lists) != 1 || out.Settings.Appearance.Theme != ThemeDark {
		t.Errorf("unexpected backup: %s", full.Body)
	}
	if !strings.Contains(string(full.Body), "\n  \"lists\"") {
		t.Errorf("backup should be indented: %s", full.Body)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	backing := memory.New()
	var applied []string
	cleared := 0
	s := newTestStore(t, backing,
		WithThemeApplier(func(th string) { applied = append(applied, th) }),
		OnClear(func(ctx context.Context) error { cleared++; return backing.Delete(ctx, kv.KeyLists) }),
	)
	s.OnClear(func(context.Context) error { cleared++; return nil })

	_ = backing.Set(ctx, kv.KeyLists, []byte(`[]`))
	_ = backing.Set(ctx, kv.KeyInsights, []byte(`{}`))
	if _, err := s.ToggleTheme(ctx); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	for _, key := range []string{kv.KeyLists, kv.KeySettings} {
		if _, err := backing.Get(ctx, key); !errors.Is(err, kv.ErrNotFound) {
			t.Errorf("%s should be deleted, got %v", key, err)
		}
	}
	if _, err := backing.Get(ctx, kv.KeyInsights); err != nil {
		t.Errorf("clear must only wipe lists and settings: %v", err)
	}
	if s.Get() != Defaults() {
		t.Errorf("settings should reset to defaults")
	}
	if cleared != 2 {
		t.Errorf("expected both hooks to run, got %d", cleared)
	}
	if applied[len(applied)-1] != ThemeLight {
		t.Errorf("default theme should be re-applied, got %v", applied)
	}
}

func TestClearWithoutHooksDeletesLists(t *testing.T) {
	ctx := context.Background()
	backing := memory.New()
	s := newTestStore(t, backing)
	_ = backing.Set(ctx, kv.KeyLists, []byte(`[]`))

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := backing.Get(ctx, kv.KeyLists); !errors.Is(err, kv.ErrNotFound) {
		t.Errorf("lists should be deleted, got %v", err)
	}
}

func TestClearStopsOnHookError(t *testing.T) {
	ctx := context.Background()
	backing := memory.New()
	s := newTestStore(t, backing,
		OnClear(func(context.Context) error { return errors.New("disk full") }))
	if _, err := s.ToggleTheme(ctx); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if err := s.Clear(ctx); err == nil {
		t.Fatal("expected hook error")
	}
	if _, err := backing.Get(ctx, kv.KeySettings); err != nil {
		t.Errorf("settings must survive a failed clear: %v", err)
	}
	if s.Get().Appearance.Theme != ThemeDark {
		t.Errorf("theme reset despite failed clear")
	}
}

func TestNextCloseDate(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		closeDay int
		want     time.Time
	}{
		{"before close day", time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), 5, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"on close day", time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC), 5, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"after close day", time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), 5, time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC)},
		{"clamped to february end", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 31, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"rolls into clamped month", time.Date(2023, 1, 31, 12, 0, 0, 0, time.UTC), 30, time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC)},
		{"year rollover", time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC), 10, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextCloseDate(tt.now, tt.closeDay); !got.Equal(tt.want) {
				t.Errorf("NextCloseDate() = %v, want %v", got, tt.want)
			}
		})
	}
}
func TestReloadPicksUpExternalWrites(t *testing.T) {
	ctx := context.Background()
	backing := memory.New()
	s := newTestStore(t, backing)

	if err := backing.Set(ctx, kv.KeySettings, []byte(`{"notifications":{"reminderDays":10}}`)); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := s.Get()
	if got.Notifications.ReminderDays != 10 {
		t.Errorf("reminderDays = %d, want 10", got.Notifications.ReminderDays)
	}
	if !got.Notifications.DeadlineAlert || got.Financial.Currency != "BRL" {
		t.Errorf("unset fields should keep defaults: %+v", got)
	}
}
