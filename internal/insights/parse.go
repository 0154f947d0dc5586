package insights

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"planeja/internal/core"
)

// parseInsights accepts only a bare JSON array. Items without a title or a
// message are dropped, unknown types become info and the result is capped
// at MaxInsights.
func parseInsights(text string) ([]Insight, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	var raw []struct {
		Title   string `json:"title"`
		Message string `json:"message"`
		Type    string `json:"type"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("decode insights: %w", err)
	}

	out := make([]Insight, 0, MaxInsights)
	for _, r := range raw {
		title, msg := strings.TrimSpace(r.Title), strings.TrimSpace(r.Message)
		if title == "" || msg == "" {
			continue
		}
		out = append(out, Insight{Title: title, Message: msg, Type: normalizeType(r.Type)})
		if len(out) == MaxInsights {
			break
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no usable insights in response")
	}
	return out, nil
}

func normalizeType(s string) Type {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case TypeSuccess:
		return TypeSuccess
	case TypeWarning:
		return TypeWarning
	}
	return TypeInfo
}

// parseDraft accepts only a bare JSON object and requires a name, a goal and
// at least one named product.
func parseDraft(text string) (core.ListDraft, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return core.ListDraft{}, ErrEmptyResponse
	}

	var draft core.ListDraft
	if err := json.Unmarshal([]byte(text), &draft); err != nil {
		return core.ListDraft{}, fmt.Errorf("decode draft: %w", err)
	}
	draft.Name = strings.TrimSpace(draft.Name)
	draft.Goal = strings.TrimSpace(draft.Goal)
	if _, err := time.Parse(core.DateLayout, draft.TargetDate); err != nil {
		draft.TargetDate = ""
	}
	if err := draft.Validate(); err != nil {
		return core.ListDraft{}, err
	}

	products := draft.Products[:0]
	for _, p := range draft.Products {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			continue
		}
		if p.Quantity < 1 {
			p.Quantity = 1
		}
		p.Tags = core.NormalizeTags(p.Tags)
		products = append(products, p)
	}
	if len(products) == 0 {
		return core.ListDraft{}, errors.New("draft has no products")
	}
	draft.Products = products
	return draft, nil
}
