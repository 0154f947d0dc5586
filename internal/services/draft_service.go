package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"planeja/internal/cache"
	"planeja/internal/core"
	"planeja/internal/insights"
	applog "planeja/internal/log"
	"planeja/internal/planner"
)

var ErrDraftNotFound = errors.New("rascunho não encontrado ou expirado")

// PendingDraft is a generated draft waiting for the user's confirmation.
type PendingDraft struct {
	ID        string         `json:"id"`
	Draft     core.ListDraft `json:"draft"`
	Planned   core.Money     `json:"planned"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

// DraftService runs the generate, review, confirm flow for AI-built lists.
// Drafts live only in the cache; nothing is persisted until confirmation.
type DraftService struct {
	analyzer *insights.Analyzer
	planner  *planner.Store
	pending  cache.Cache[core.ListDraft]
	ttl      time.Duration
	now      func() time.Time
}

func NewDraftService(a *insights.Analyzer, p *planner.Store, pending cache.Cache[core.ListDraft], ttl time.Duration) *DraftService {
	return &DraftService{
		analyzer: a,
		planner:  p,
		pending:  pending,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Generate asks the model for a draft and parks it under a fresh id.
func (s *DraftService) Generate(ctx context.Context, text string) (PendingDraft, error) {
	draft, err := s.analyzer.GenerateDraft(ctx, text)
	if err != nil {
		return PendingDraft{}, err
	}

	id := uuid.NewString()
	s.pending.Set(id, draft)

	slog.InfoContext(ctx, "Draft parked for confirmation",
		applog.FieldComponent, applog.ComponentDrafts, applog.FieldDraftID, id, "products", len(draft.Products))

	return PendingDraft{
		ID:        id,
		Draft:     draft,
		Planned:   draftTotal(draft),
		ExpiresAt: s.now().Add(s.ttl).UTC(),
	}, nil
}

// Confirm turns the pending draft into a real list. A non-nil edited draft
// replaces the generated one, so the user can adjust before saving. If
// saving fails the draft stays pending for another attempt.
func (s *DraftService) Confirm(ctx context.Context, id string, edited *core.ListDraft) (core.ShoppingList, error) {
	draft, ok := s.pending.Take(id)
	if !ok {
		return core.ShoppingList{}, ErrDraftNotFound
	}
	if edited != nil {
		draft = *edited
	}

	listID, err := s.planner.CreateCompleteList(ctx, draft)
	if err != nil {
		s.pending.Set(id, draft)
		return core.ShoppingList{}, err
	}

	slog.InfoContext(ctx, "Draft confirmed",
		applog.FieldComponent, applog.ComponentDrafts, applog.FieldDraftID, id, applog.FieldListID, listID)
	return s.planner.List(listID)
}

// Discard drops a pending draft; unknown ids are ignored.
func (s *DraftService) Discard(id string) {
	s.pending.Delete(id)
}

func draftTotal(d core.ListDraft) core.Money {
	var total core.Money
	for _, p := range d.Products {
		q := p.Quantity
		if q < 1 {
			q = 1
		}
		total = total.Add(p.Price.Times(q))
	}
	return total
}
