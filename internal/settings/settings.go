// Package settings owns the user's preference tree and the helpers that
// depend on it: currency formatting, backup export and the data wipe.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/currency"
)

// Section names accepted by Store.Update.
const (
	SectionFinancial     = "financial"
	SectionNotifications = "notifications"
	SectionAppearance    = "appearance"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

var (
	ErrUnknownSection = errors.New("unknown settings section")
	ErrInvalid        = errors.New("invalid settings")
)

type (
	Financial struct {
		Currency     string `json:"currency"`
		CloseDay     int    `json:"closeDay"`
		AutoSaveGoal bool   `json:"autoSaveGoal"`
	}

	Notifications struct {
		ReminderDays  int  `json:"reminderDays"`
		DeadlineAlert bool `json:"deadlineAlert"`
		AIInsights    bool `json:"aiInsights"`
	}

	Appearance struct {
		Theme      string `json:"theme"`
		HideValues bool   `json:"hideValues"`
	}

	Settings struct {
		Financial     Financial     `json:"financial"`
		Notifications Notifications `json:"notifications"`
		Appearance    Appearance    `json:"appearance"`
	}
)

// Defaults returns the settings a fresh install starts with.
func Defaults() Settings {
	return Settings{
		Financial:     Financial{Currency: "BRL", CloseDay: 5, AutoSaveGoal: true},
		Notifications: Notifications{ReminderDays: 3, DeadlineAlert: true, AIInsights: true},
		Appearance:    Appearance{Theme: ThemeLight, HideValues: false},
	}
}

// Validate checks every section and reports all problems at once.
func (s Settings) Validate() error {
	var errs []string

	if err := validateCurrency(s.Financial.Currency); err != nil {
		errs = append(errs, err.Error())
	}
	if s.Financial.CloseDay < 1 || s.Financial.CloseDay > 31 {
		errs = append(errs, fmt.Sprintf("closeDay must be between 1 and 31, got %d", s.Financial.CloseDay))
	}
	if s.Notifications.ReminderDays < 1 || s.Notifications.ReminderDays > 30 {
		errs = append(errs, fmt.Sprintf("reminderDays must be between 1 and 30, got %d", s.Notifications.ReminderDays))
	}
	if s.Appearance.Theme != ThemeLight && s.Appearance.Theme != ThemeDark {
		errs = append(errs, fmt.Sprintf("theme must be %q or %q, got %q", ThemeLight, ThemeDark, s.Appearance.Theme))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(errs, "; "))
	}
	return nil
}

func validateCurrency(code string) error {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Errorf("currency %q is not an ISO 4217 code", code)
	}
	if _, ok := locales[unit.String()]; !ok {
		return fmt.Errorf("currency %q is not supported (BRL, USD, EUR)", code)
	}
	return nil
}

// sanitize replaces out-of-range fields of a loaded document with defaults.
func (s *Settings) sanitize() []string {
	def := Defaults()
	var fixed []string
	if validateCurrency(s.Financial.Currency) != nil {
		s.Financial.Currency = def.Financial.Currency
		fixed = append(fixed, "financial.currency")
	}
	if s.Financial.CloseDay < 1 || s.Financial.CloseDay > 31 {
		s.Financial.CloseDay = def.Financial.CloseDay
		fixed = append(fixed, "financial.closeDay")
	}
	if s.Notifications.ReminderDays < 1 || s.Notifications.ReminderDays > 30 {
		s.Notifications.ReminderDays = def.Notifications.ReminderDays
		fixed = append(fixed, "notifications.reminderDays")
	}
	if s.Appearance.Theme != ThemeLight && s.Appearance.Theme != ThemeDark {
		s.Appearance.Theme = def.Appearance.Theme
		fixed = append(fixed, "appearance.theme")
	}
	return fixed
}
