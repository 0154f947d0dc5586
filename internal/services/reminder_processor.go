package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"planeja/internal/amqp"
	"planeja/internal/core"
	"planeja/internal/kv"
	applog "planeja/internal/log"
	"planeja/internal/planner"
	"planeja/internal/settings"
)

// ReminderPublisher delivers deadline reminders. *amqp.Client implements it.
type ReminderPublisher interface {
	PublishDeadlineReminder(ctx context.Context, queue string, msg *amqp.DeadlineReminderMessage) error
}

// ledgerRetention bounds how long a sent-reminder record is kept.
const ledgerRetention = 60 * 24 * time.Hour

// ReminderProcessor scans target dates and sends one reminder per list
// according to its cadence. The last send per list is persisted under
// kv.KeyReminders so restarts do not repeat reminders.
type ReminderProcessor struct {
	planner   *planner.Store
	settings  *settings.Store
	store     kv.Store
	publisher ReminderPublisher
	queue     string
	cadence   ReminderCadence
}

// NewReminderProcessor wires the processor. A nil publisher logs reminders
// instead of sending them; a nil cadence means DailyCadence.
func NewReminderProcessor(p *planner.Store, s *settings.Store, store kv.Store, publisher ReminderPublisher, queue string, cadence ReminderCadence) *ReminderProcessor {
	if cadence == nil {
		cadence = DailyCadence{}
	}
	return &ReminderProcessor{
		planner:   p,
		settings:  s,
		store:     store,
		publisher: publisher,
		queue:     queue,
		cadence:   cadence,
	}
}

// ProcessDue sends reminders for every unfunded list whose target date is
// within the configured reminder window. It returns how many were sent.
func (p *ReminderProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if err := p.settings.Reload(ctx); err != nil {
		return 0, fmt.Errorf("reload settings: %w", err)
	}
	prefs := p.settings.Get()
	if !prefs.Notifications.DeadlineAlert {
		slog.DebugContext(ctx, "Deadline alerts disabled", applog.FieldComponent, applog.ComponentReminders)
		return 0, nil
	}
	if err := p.planner.Reload(ctx); err != nil {
		return 0, fmt.Errorf("reload lists: %w", err)
	}

	ledger, err := p.loadLedger(ctx)
	if err != nil {
		return 0, err
	}

	window := prefs.Notifications.ReminderDays
	due := p.planner.DueSoon(now, window)

	slog.InfoContext(ctx, "Processing deadline reminders",
		applog.FieldComponent, applog.ComponentReminders,
		"due_lists", len(due),
		"window_days", window,
		"processing_date", now.Format(core.DateLayout))

	sent := 0
	for _, l := range due {
		daysLeft, _ := l.DaysLeft(now)
		if !p.cadence.IsDue(ledger[l.ID], now, daysLeft, window) {
			continue
		}

		msg := &amqp.DeadlineReminderMessage{
			ListID:         l.ID,
			ListName:       l.Name,
			TargetDate:     l.TargetDate,
			DaysLeft:       daysLeft,
			RemainingCents: l.Remaining().Cents,
			Text:           reminderText(l.Name, daysLeft, settings.FormatMoney(l.Remaining(), prefs.Financial.Currency)),
			Timestamp:      now,
		}
		if err := p.deliver(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to send deadline reminder",
				applog.FieldComponent, applog.ComponentReminders, applog.FieldListID, l.ID, applog.FieldError, err)
			continue
		}

		ledger[l.ID] = now
		sent++
	}

	for id, at := range ledger {
		if now.Sub(at) > ledgerRetention {
			delete(ledger, id)
		}
	}
	if sent > 0 {
		if err := p.saveLedger(ctx, ledger); err != nil {
			return sent, err
		}
	}

	slog.InfoContext(ctx, "Deadline reminder processing complete",
		applog.FieldComponent, applog.ComponentReminders, "sent", sent, "total_checked", len(due))
	return sent, nil
}

func (p *ReminderProcessor) deliver(ctx context.Context, msg *amqp.DeadlineReminderMessage) error {
	if p.publisher == nil {
		slog.InfoContext(ctx, "Deadline reminder",
			applog.FieldComponent, applog.ComponentReminders,
			applog.FieldListID, msg.ListID, "days_left", msg.DaysLeft, "text", msg.Text)
		return nil
	}
	return p.publisher.PublishDeadlineReminder(ctx, p.queue, msg)
}

func reminderText(name string, daysLeft int, remaining string) string {
	switch daysLeft {
	case 0:
		return fmt.Sprintf("Hoje é a data alvo de %q. Ainda faltam %s.", name, remaining)
	case 1:
		return fmt.Sprintf("Falta 1 dia para %q. Ainda faltam %s.", name, remaining)
	}
	return fmt.Sprintf("Faltam %d dias para %q. Ainda faltam %s.", daysLeft, name, remaining)
}

func (p *ReminderProcessor) loadLedger(ctx context.Context) (map[string]time.Time, error) {
	ledger := map[string]time.Time{}
	data, err := p.store.Get(ctx, kv.KeyReminders)
	if errors.Is(err, kv.ErrNotFound) {
		return ledger, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load reminder ledger: %w", err)
	}
	if err := json.Unmarshal(data, &ledger); err != nil {
		slog.WarnContext(ctx, "Reminder ledger unreadable, starting fresh",
			applog.FieldComponent, applog.ComponentReminders, applog.FieldError, err)
		return map[string]time.Time{}, nil
	}
	return ledger, nil
}

func (p *ReminderProcessor) saveLedger(ctx context.Context, ledger map[string]time.Time) error {
	data, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("encode reminder ledger: %w", err)
	}
	if err := p.store.Set(ctx, kv.KeyReminders, data); err != nil {
		return fmt.Errorf("persist reminder ledger: %w", err)
	}
	return nil
}

// HandleReminderMessage consumes the reminder queue and logs each reminder.
func HandleReminderMessage(ctx context.Context, body []byte) error {
	msg, err := amqp.DeadlineReminderMessageFromJSON(body)
	if err != nil {
		return fmt.Errorf("%w: %v", amqp.ErrMalformed, err)
	}
	slog.InfoContext(ctx, "Deadline reminder received",
		applog.FieldComponent, applog.ComponentReminders,
		applog.FieldListID, msg.ListID,
		applog.FieldListName, msg.ListName,
		"days_left", msg.DaysLeft,
		"text", msg.Text)
	return nil
}
