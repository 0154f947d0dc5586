// Package insights talks to a generative text service for two things:
// short spending insights about the saved lists, and list drafts built
// from free text. Failures degrade gracefully and are never retried.
package insights

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"planeja/internal/core"
	applog "planeja/internal/log"
)

type Type string

const (
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// MaxInsights is how many insights an analysis keeps.
const MaxInsights = 3

type Insight struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    Type   `json:"type"`
}

// Fallback is the single static insight returned whenever analysis fails.
var Fallback = Insight{
	Title:   "Dica de Economia",
	Message: "Revise suas prioridades para alcançar suas metas mais rápido.",
	Type:    TypeInfo,
}

var (
	ErrNoGenerator      = errors.New("no text generator configured")
	ErrEmptyResponse    = errors.New("empty response from text generator")
	ErrDraftUnavailable = errors.New("não foi possível gerar a lista, tente novamente")
)

// TextGenerator sends a prompt to a generative model and returns the raw text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Analyzer struct {
	gen TextGenerator
}

// NewAnalyzer accepts a nil generator; every call then degrades as if the
// service had failed.
func NewAnalyzer(gen TextGenerator) *Analyzer {
	return &Analyzer{gen: gen}
}

// Enabled reports whether a generator is configured.
func (a *Analyzer) Enabled() bool {
	return a != nil && a.gen != nil
}

// ListSummary is the per-list excerpt sent to the model.
type ListSummary struct {
	Name       string  `json:"name"`
	Goal       string  `json:"goal"`
	TotalCost  float64 `json:"totalCost"`
	Saved      float64 `json:"saved"`
	TargetDate string  `json:"targetDate"`
	ItemsCount int     `json:"itemsCount"`
	Completion int     `json:"completion"`
}

// Summarize reduces lists to what the model needs to see.
func Summarize(lists []core.ShoppingList) []ListSummary {
	out := make([]ListSummary, 0, len(lists))
	for _, l := range lists {
		out = append(out, ListSummary{
			Name:       l.Name,
			Goal:       l.Goal,
			TotalCost:  l.PlannedTotal().Float(),
			Saved:      l.SavedAmount.Float(),
			TargetDate: l.TargetDate,
			ItemsCount: len(l.Products),
			Completion: l.CompletedCount(),
		})
	}
	return out
}

// Analyze asks for three classified insights about lists. It always returns
// at least one insight: on any failure the result is exactly [Fallback].
func (a *Analyzer) Analyze(ctx context.Context, lists []core.ShoppingList) []Insight {
	start := time.Now()
	logger := slog.With(applog.FieldComponent, applog.ComponentInsights, applog.FieldOperation, applog.OpAnalyze)

	if !a.Enabled() {
		logger.WarnContext(ctx, "Insight analysis skipped, using fallback", applog.FieldError, ErrNoGenerator.Error())
		return []Insight{Fallback}
	}

	prompt, err := analyzePrompt(Summarize(lists))
	if err != nil {
		logger.ErrorContext(ctx, "Failed to build analysis prompt", applog.FieldError, err)
		return []Insight{Fallback}
	}

	text, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		logger.ErrorContext(ctx, "Insight analysis failed, using fallback", applog.FieldError, err)
		return []Insight{Fallback}
	}

	insights, err := parseInsights(text)
	if err != nil {
		logger.WarnContext(ctx, "Unusable insight response, using fallback",
			applog.FieldError, err, "response_len", len(text))
		return []Insight{Fallback}
	}

	logger.InfoContext(ctx, "Insights generated",
		"count", len(insights), applog.FieldDuration, time.Since(start).Milliseconds())
	return insights
}

// GenerateDraft turns a free-text request into a list draft. Any failure is
// reported as ErrDraftUnavailable so the caller can ask the user to retry.
func (a *Analyzer) GenerateDraft(ctx context.Context, text string) (core.ListDraft, error) {
	logger := slog.With(applog.FieldComponent, applog.ComponentInsights, applog.FieldOperation, applog.OpDraft)

	text = strings.TrimSpace(text)
	if text == "" {
		return core.ListDraft{}, core.ErrEmptyName
	}
	if !a.Enabled() {
		logger.WarnContext(ctx, "Draft generation unavailable", applog.FieldError, ErrNoGenerator.Error())
		return core.ListDraft{}, ErrDraftUnavailable
	}

	resp, err := a.gen.Generate(ctx, draftPrompt(text))
	if err != nil {
		logger.ErrorContext(ctx, "Draft generation failed", applog.FieldError, err)
		return core.ListDraft{}, ErrDraftUnavailable
	}

	draft, err := parseDraft(resp)
	if err != nil {
		logger.WarnContext(ctx, "Unusable draft response", applog.FieldError, err, "response_len", len(resp))
		return core.ListDraft{}, ErrDraftUnavailable
	}

	logger.InfoContext(ctx, "Draft generated", applog.FieldListName, draft.Name, "products", len(draft.Products))
	return draft, nil
}
