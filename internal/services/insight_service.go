package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"planeja/internal/amqp"
	"planeja/internal/insights"
	applog "planeja/internal/log"
	"planeja/internal/planner"
	"planeja/internal/settings"
)

var ErrInsightsDisabled = errors.New("insights are disabled in settings")

// InsightPublisher hands refresh jobs to a worker. *amqp.Client implements it.
type InsightPublisher interface {
	PublishInsightRefresh(ctx context.Context, queue string, msg *amqp.InsightRefreshMessage) error
}

// Dispatch modes reported by Enqueue.
const (
	DispatchQueued = "queued"
	DispatchLocal  = "local"
)

// InsightService refreshes the insight board, either inline or through a
// worker. Refreshes are not coordinated with each other.
type InsightService struct {
	planner   *planner.Store
	settings  *settings.Store
	analyzer  *insights.Analyzer
	board     *insights.Board
	publisher InsightPublisher
	queue     string
	now       func() time.Time

	inflight sync.WaitGroup
}

// NewInsightService wires the service. publisher may be nil, in which case
// Enqueue runs the refresh in-process.
func NewInsightService(p *planner.Store, s *settings.Store, a *insights.Analyzer, b *insights.Board, publisher InsightPublisher, queue string) *InsightService {
	return &InsightService{
		planner:   p,
		settings:  s,
		analyzer:  a,
		board:     b,
		publisher: publisher,
		queue:     queue,
		now:       time.Now,
	}
}

func (s *InsightService) enabled() bool {
	return s.settings.Get().Notifications.AIInsights
}

// Refresh analyzes the current lists and publishes the result on the board.
// Analysis itself never fails; only reading or writing state can.
func (s *InsightService) Refresh(ctx context.Context) (insights.Snapshot, error) {
	if err := s.settings.Reload(ctx); err != nil {
		return insights.Snapshot{}, fmt.Errorf("reload settings: %w", err)
	}
	if !s.enabled() {
		return insights.Snapshot{}, ErrInsightsDisabled
	}
	if err := s.planner.Reload(ctx); err != nil {
		return insights.Snapshot{}, fmt.Errorf("reload lists: %w", err)
	}

	snap := insights.Snapshot{
		Insights:    s.analyzer.Analyze(ctx, s.planner.Lists()),
		GeneratedAt: s.now().UTC(),
	}
	if err := s.board.Publish(ctx, snap); err != nil {
		return insights.Snapshot{}, err
	}
	return snap, nil
}

// Latest returns whatever the board currently holds.
func (s *InsightService) Latest(ctx context.Context) (insights.Snapshot, error) {
	return s.board.Latest(ctx)
}

// Enqueue schedules a refresh and returns immediately. With a publisher the
// job goes to the broker; if publishing fails, or there is no publisher, the
// refresh runs in a background goroutine detached from ctx's cancellation.
func (s *InsightService) Enqueue(ctx context.Context, reason string) (string, error) {
	if !s.enabled() {
		return "", ErrInsightsDisabled
	}

	requestID := uuid.NewString()
	if s.publisher != nil {
		err := s.publisher.PublishInsightRefresh(ctx, s.queue, amqp.NewInsightRefreshMessage(requestID, reason))
		if err == nil {
			return DispatchQueued, nil
		}
		slog.WarnContext(ctx, "Failed to queue insight refresh, running locally",
			applog.FieldComponent, applog.ComponentInsights, applog.FieldRequestID, requestID, applog.FieldError, err)
	}

	bg := context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		if _, err := s.Refresh(bg); err != nil {
			slog.ErrorContext(bg, "Background insight refresh failed",
				applog.FieldComponent, applog.ComponentInsights, applog.FieldRequestID, requestID, applog.FieldError, err)
		}
	}()
	return DispatchLocal, nil
}

// Wait blocks until in-process refreshes started by Enqueue have finished.
func (s *InsightService) Wait() {
	s.inflight.Wait()
}

// HandleRefreshMessage is the worker side of Enqueue.
func (s *InsightService) HandleRefreshMessage(ctx context.Context, body []byte) error {
	msg, err := amqp.InsightRefreshMessageFromJSON(body)
	if err != nil {
		return fmt.Errorf("%w: %v", amqp.ErrMalformed, err)
	}

	snap, err := s.Refresh(ctx)
	if errors.Is(err, ErrInsightsDisabled) {
		slog.InfoContext(ctx, "Insight refresh skipped, disabled in settings",
			applog.FieldComponent, applog.ComponentWorker, applog.FieldRequestID, msg.RequestID)
		return nil
	}
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Insight refresh processed",
		applog.FieldComponent, applog.ComponentWorker,
		applog.FieldRequestID, msg.RequestID,
		"reason", msg.Reason,
		"count", len(snap.Insights),
		"queued_for_ms", time.Since(msg.Timestamp).Milliseconds())
	return nil
}
