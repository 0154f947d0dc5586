package planner

import (
	"strings"

	"planeja/internal/core"
)

// ListPatch carries the list fields a caller wants to change. Nil means keep.
type ListPatch struct {
	Name       *string `json:"name,omitempty"`
	Goal       *string `json:"goal,omitempty"`
	TargetDate *string `json:"targetDate,omitempty"`
}

func (p ListPatch) apply(l *core.ShoppingList) {
	if p.Name != nil {
		l.Name = strings.TrimSpace(*p.Name)
	}
	if p.Goal != nil {
		l.Goal = strings.TrimSpace(*p.Goal)
	}
	if p.TargetDate != nil {
		l.TargetDate = strings.TrimSpace(*p.TargetDate)
	}
}

// ProductInput is what a caller supplies to add a product; the store assigns
// the id and starts it uncompleted.
type ProductInput struct {
	Name     string        `json:"name"`
	Price    core.Money    `json:"price"`
	Quantity int           `json:"quantity"`
	Link     string        `json:"link,omitempty"`
	Store    string        `json:"store,omitempty"`
	Notes    string        `json:"notes,omitempty"`
	Tags     []string      `json:"tags,omitempty"`
	Priority core.Priority `json:"priority,omitempty"`
}

type ProductPatch struct {
	Name      *string        `json:"name,omitempty"`
	Price     *core.Money    `json:"price,omitempty"`
	Quantity  *int           `json:"quantity,omitempty"`
	Link      *string        `json:"link,omitempty"`
	Store     *string        `json:"store,omitempty"`
	Notes     *string        `json:"notes,omitempty"`
	Tags      *[]string      `json:"tags,omitempty"`
	Priority  *core.Priority `json:"priority,omitempty"`
	Completed *bool          `json:"completed,omitempty"`
}

func (p ProductPatch) apply(prod *core.Product) {
	if p.Name != nil {
		prod.Name = strings.TrimSpace(*p.Name)
	}
	if p.Price != nil {
		prod.Price = *p.Price
	}
	if p.Quantity != nil {
		prod.Quantity = *p.Quantity
	}
	if p.Link != nil {
		prod.Link = strings.TrimSpace(*p.Link)
	}
	if p.Store != nil {
		prod.Store = strings.TrimSpace(*p.Store)
	}
	if p.Notes != nil {
		prod.Notes = strings.TrimSpace(*p.Notes)
	}
	if p.Tags != nil {
		prod.Tags = core.NormalizeTags(*p.Tags)
	}
	if p.Priority != nil {
		prod.Priority = *p.Priority
	}
	if p.Completed != nil {
		prod.Completed = *p.Completed
	}
}
