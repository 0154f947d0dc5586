package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"planeja/internal/amqp"
	applog "planeja/internal/log"
	"planeja/internal/services"
)

// Consumer is the broker side the worker needs. *amqp.Client implements it.
type Consumer interface {
	ConsumeWithReconnect(ctx context.Context, queue string, handler amqp.Handler) error
}

// Queues names the two queues the worker drains.
type Queues struct {
	Insights  string
	Reminders string
}

// Worker drains insight refresh jobs and reminder messages, and runs the
// deadline scan on a fixed interval.
type Worker struct {
	insights  *services.InsightService
	reminders *services.ReminderProcessor
	consumer  Consumer
	queues    Queues
	interval  time.Duration
	sheets    *services.SheetSync
	now       func() time.Time
}

type Option func(*Worker)

// WithSheetSync mirrors the lists to a spreadsheet on every scan.
func WithSheetSync(s *services.SheetSync) Option {
	return func(w *Worker) { w.sheets = s }
}

// New wires a worker. consumer may be nil, in which case only the periodic
// reminder scan runs.
func New(insights *services.InsightService, reminders *services.ReminderProcessor, consumer Consumer, queues Queues, interval time.Duration, opts ...Option) *Worker {
	w := &Worker{
		insights:  insights,
		reminders: reminders,
		consumer:  consumer,
		queues:    queues,
		interval:  interval,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks until ctx is cancelled or one of the loops fails.
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if w.consumer != nil {
		g.Go(func() error {
			return w.consumer.ConsumeWithReconnect(ctx, w.queues.Insights, w.insights.HandleRefreshMessage)
		})
		g.Go(func() error {
			return w.consumer.ConsumeWithReconnect(ctx, w.queues.Reminders, services.HandleReminderMessage)
		})
	} else {
		slog.InfoContext(ctx, "No broker configured, skipping message consumption",
			applog.FieldComponent, applog.ComponentWorker)
	}

	g.Go(func() error {
		return w.scanLoop(ctx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// StartupCheck runs one reminder scan right away so reminders missed while
// the worker was down go out without waiting a full interval.
func (w *Worker) StartupCheck(ctx context.Context) error {
	sent, err := w.reminders.ProcessDue(ctx, w.now())
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Startup reminder check completed",
		applog.FieldComponent, applog.ComponentWorker, "sent", sent)
	w.syncSheets(ctx)
	return nil
}

// syncSheets never fails the scan; the mirror catches up on the next tick.
func (w *Worker) syncSheets(ctx context.Context) {
	if w.sheets == nil {
		return
	}
	if _, err := w.sheets.Sync(ctx); err != nil {
		slog.ErrorContext(ctx, "Spreadsheet sync failed",
			applog.FieldComponent, applog.ComponentWorker, applog.FieldError, err)
	}
}

func (w *Worker) scanLoop(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.reminders.ProcessDue(ctx, w.now()); err != nil {
				// A failed scan is retried on the next tick
				slog.ErrorContext(ctx, "Periodic reminder scan failed",
					applog.FieldComponent, applog.ComponentWorker, applog.FieldError, err)
			}
			w.syncSheets(ctx)
		}
	}
}
