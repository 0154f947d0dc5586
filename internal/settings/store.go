package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"planeja/internal/kv"
	applog "planeja/internal/log"
)

// Store holds the process-wide settings and mirrors them to kv.KeySettings.
type Store struct {
	mu         sync.Mutex
	kv         kv.Store
	current    Settings
	applyTheme func(theme string)
	clearHooks []ClearHook
	now        func() time.Time
}

type Option func(*Store)

// WithThemeApplier registers the callback that reflects the active theme
// outside the store. It runs on load, on every theme change and after Clear.
func WithThemeApplier(fn func(theme string)) Option {
	return func(s *Store) { s.applyTheme = fn }
}

// ClearHook wipes data another store owns. Hooks run inside Clear.
type ClearHook func(ctx context.Context) error

// OnClear registers the hook of a store that owns kv.KeyLists. With at
// least one hook registered Clear leaves that key to the hooks.
func OnClear(fn ClearHook) Option {
	return func(s *Store) { s.clearHooks = append(s.clearHooks, fn) }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New loads settings, merging the persisted document over Defaults field by
// field. Out-of-range values fall back to their defaults.
func New(ctx context.Context, store kv.Store, opts ...Option) (*Store, error) {
	s := &Store{
		kv:         store,
		current:    Defaults(),
		applyTheme: func(string) {},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the current settings with the persisted document, for
// processes that share the store with another writer.
func (s *Store) Reload(ctx context.Context) error {
	loaded := Defaults()
	data, err := s.kv.Get(ctx, kv.KeySettings)
	switch {
	case errors.Is(err, kv.ErrNotFound):
	case err != nil:
		return fmt.Errorf("load settings: %w", err)
	default:
		if err := json.Unmarshal(data, &loaded); err != nil {
			return fmt.Errorf("decode settings: %w", err)
		}
		if fixed := loaded.sanitize(); len(fixed) > 0 {
			slog.WarnContext(ctx, "Persisted settings out of range, using defaults",
				applog.FieldComponent, applog.ComponentSettings, "fields", fixed)
		}
	}

	s.mu.Lock()
	s.current = loaded
	apply := s.applyTheme
	s.mu.Unlock()

	apply(loaded.Appearance.Theme)
	return nil
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// OnClear registers another clear hook after construction, for collaborators
// built later than the store.
func (s *Store) OnClear(fn ClearHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearHooks = append(s.clearHooks, fn)
}

// Update merges fields, a JSON object, into one section. Unknown sections
// and unknown field names are rejected; the merged result must validate.
func (s *Store) Update(ctx context.Context, section string, fields json.RawMessage) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	var target any
	switch section {
	case SectionFinancial:
		target = &next.Financial
	case SectionNotifications:
		target = &next.Notifications
	case SectionAppearance:
		target = &next.Appearance
	default:
		return Settings{}, fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}

	dec := json.NewDecoder(bytes.NewReader(fields))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := next.Validate(); err != nil {
		return Settings{}, err
	}

	if err := s.persist(ctx, next); err != nil {
		return Settings{}, err
	}
	themeChanged := next.Appearance.Theme != s.current.Appearance.Theme
	s.current = next
	if themeChanged {
		s.applyTheme(next.Appearance.Theme)
	}

	slog.InfoContext(ctx, "Settings updated",
		applog.FieldComponent, applog.ComponentSettings, applog.FieldSection, section)
	return next, nil
}

// ToggleTheme flips between light and dark and returns the new theme.
func (s *Store) ToggleTheme(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	if next.Appearance.Theme == ThemeDark {
		next.Appearance.Theme = ThemeLight
	} else {
		next.Appearance.Theme = ThemeDark
	}
	if err := s.persist(ctx, next); err != nil {
		return "", err
	}
	s.current = next
	s.applyTheme(next.Appearance.Theme)
	return next.Appearance.Theme, nil
}

func (s *Store) persist(ctx context.Context, next Settings) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.kv.Set(ctx, kv.KeySettings, data); err != nil {
		return fmt.Errorf("persist settings: %w", err)
	}
	return nil
}

// Backup is the combined export document.
type Backup struct {
	Filename string
	Body     []byte
}

// Export bundles both persisted documents as {lists, settings}. Keys never
// written export as [] and {}.
func (s *Store) Export(ctx context.Context) (Backup, error) {
	lists, err := s.raw(ctx, kv.KeyLists, "[]")
	if err != nil {
		return Backup{}, err
	}
	prefs, err := s.raw(ctx, kv.KeySettings, "{}")
	if err != nil {
		return Backup{}, err
	}

	body, err := json.MarshalIndent(struct {
		Lists    json.RawMessage `json:"lists"`
		Settings json.RawMessage `json:"settings"`
	}{lists, prefs}, "", "  ")
	if err != nil {
		return Backup{}, fmt.Errorf("encode backup: %w", err)
	}

	return Backup{
		Filename: fmt.Sprintf("planeja_backup_%s.json", s.now().UTC().Format("2006-01-02")),
		Body:     body,
	}, nil
}

func (s *Store) raw(ctx context.Context, key, empty string) (json.RawMessage, error) {
	data, err := s.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) || (err == nil && len(bytes.TrimSpace(data)) == 0) {
		return json.RawMessage(empty), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("read %s: stored document is not valid JSON", key)
	}
	return json.RawMessage(data), nil
}

// Clear wipes both persisted documents and restores default settings.
// The clear hooks run first, while the settings lock is held, so each owner
// deletes its own document; without hooks Clear deletes kv.KeyLists itself.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	for _, h := range s.clearHooks {
		if err := h(ctx); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("clear: %w", err)
		}
	}
	keys := []string{kv.KeySettings}
	if len(s.clearHooks) == 0 {
		keys = append(keys, kv.KeyLists)
	}
	for _, key := range keys {
		if err := s.kv.Delete(ctx, key); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}
	s.current = Defaults()
	apply := s.applyTheme
	theme := s.current.Appearance.Theme
	s.mu.Unlock()

	apply(theme)

	slog.WarnContext(ctx, "All data cleared",
		applog.FieldComponent, applog.ComponentSettings, applog.FieldOperation, applog.OpClear)
	return nil
}
