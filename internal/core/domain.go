package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Legacy priority values, kept verbatim because they are what older
// stored documents contain.
const (
	PriorityLow    Priority = "Baixa"
	PriorityMedium Priority = "Média"
	PriorityHigh   Priority = "Alta"
)

// MaxQuantity bounds the units of one product.
const MaxQuantity = 100000

// DateLayout is the target date format (HTML date input).
const DateLayout = "2006-01-02"

type (
	// Priority is the fixed-value importance marker that free-form tags replaced.
	Priority string

	Deposit struct {
		ID     string    `json:"id"`
		Amount Money     `json:"amount"`
		Date   time.Time `json:"date"`
	}

	Product struct {
		ID        string   `json:"id"`
		Name      string   `json:"name"`
		Price     Money    `json:"price"`
		Quantity  int      `json:"quantity"`
		Link      string   `json:"link,omitempty"`
		Store     string   `json:"store,omitempty"`
		Notes     string   `json:"notes,omitempty"`
		Tags      []string `json:"tags,omitempty"`
		Priority  Priority `json:"priority,omitempty"`
		Completed bool     `json:"completed"`
	}

	ShoppingList struct {
		ID             string    `json:"id"`
		Name           string    `json:"name"`
		Goal           string    `json:"goal"`
		TargetDate     string    `json:"targetDate"`
		Products       []Product `json:"products"`
		SavedAmount    Money     `json:"savedAmount"`
		DepositHistory []Deposit `json:"depositHistory"`
		CreatedAt      time.Time `json:"createdAt"`
	}

	// ListDraft is a proposed list, typically produced by the AI collaborator,
	// that becomes a real list only after the user confirms it.
	ListDraft struct {
		Name       string         `json:"name"`
		Goal       string         `json:"goal"`
		TargetDate string         `json:"targetDate,omitempty"`
		Products   []DraftProduct `json:"products"`
	}

	DraftProduct struct {
		Name     string   `json:"name"`
		Price    Money    `json:"price"`
		Quantity int      `json:"quantity"`
		Priority Priority `json:"priority,omitempty"`
		Tags     []string `json:"tags,omitempty"`
	}
)

var (
	ErrEmptyName       = errors.New("empty name")
	ErrEmptyGoal       = errors.New("empty goal")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidPrice    = errors.New("invalid price")
	ErrInvalidDate     = errors.New("invalid target date")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 100000")
	ErrNameTooLong     = errors.New("name too long (max 200 characters)")
	ErrListNotFound    = errors.New("list not found")
	ErrProductNotFound = errors.New("product not found")
)

// ParsePriority accepts the stored Portuguese values and their English names.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "baixa", "low":
		return PriorityLow, nil
	case "média", "media", "medium":
		return PriorityMedium, nil
	case "alta", "high":
		return PriorityHigh, nil
	}
	return "", ErrInvalidPriority
}

// UnmarshalJSON normalizes any accepted spelling; unknown values are dropped
// rather than failing the whole document.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*p = ""
		return nil
	}
	parsed, err := ParsePriority(s)
	if err != nil {
		*p = ""
		return nil
	}
	*p = parsed
	return nil
}

// NormalizeTags trims tags and drops blanks and case-insensitive duplicates,
// keeping first-seen order.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		k := strings.ToLower(t)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Subtotal is price × quantity.
func (p Product) Subtotal() Money {
	return p.Price.Times(p.Quantity)
}

func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.Price.Cents < 0 || p.Price.Cents > MaxCents {
		return ErrInvalidPrice
	}
	if p.Quantity < 1 || p.Quantity > MaxQuantity {
		return ErrInvalidQuantity
	}
	return nil
}

// ValidateListFields checks the user-supplied fields of a list.
func ValidateListFields(name, goal, targetDate string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if len(name) > 200 {
		return ErrNameTooLong
	}
	if strings.TrimSpace(goal) == "" {
		return ErrEmptyGoal
	}
	if targetDate != "" {
		if _, err := time.Parse(DateLayout, targetDate); err != nil {
			return ErrInvalidDate
		}
	}
	return nil
}

func (l ShoppingList) Validate() error {
	if err := ValidateListFields(l.Name, l.Goal, l.TargetDate); err != nil {
		return err
	}
	for _, p := range l.Products {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// PlannedTotal is the sum of every product subtotal.
func (l ShoppingList) PlannedTotal() Money {
	var total Money
	for _, p := range l.Products {
		total = total.Add(p.Subtotal())
	}
	return total
}

// DepositTotal sums the deposit history; it must always equal SavedAmount.
func (l ShoppingList) DepositTotal() Money {
	var total Money
	for _, d := range l.DepositHistory {
		total = total.Add(d.Amount)
	}
	return total
}

// Remaining is planned minus saved; negative once the goal is exceeded.
func (l ShoppingList) Remaining() Money {
	return l.PlannedTotal().Sub(l.SavedAmount)
}

// Progress is the funded percentage capped at 100, or 0 for an empty plan.
func (l ShoppingList) Progress() float64 {
	planned := l.PlannedTotal()
	if planned.Cents <= 0 {
		return 0
	}
	p := float64(l.SavedAmount.Cents) * 100 / float64(planned.Cents)
	if p > 100 {
		return 100
	}
	return p
}

// Funded reports whether the piggy bank covers the plan.
func (l ShoppingList) Funded() bool {
	return l.Remaining().Cents <= 0
}

func (l ShoppingList) CompletedCount() int {
	n := 0
	for _, p := range l.Products {
		if p.Completed {
			n++
		}
	}
	return n
}

// Target parses TargetDate; ok is false when unset or malformed.
func (l ShoppingList) Target() (time.Time, bool) {
	if l.TargetDate == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, l.TargetDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DaysLeft counts calendar days from now until the target date.
func (l ShoppingList) DaysLeft(now time.Time) (int, bool) {
	t, ok := l.Target()
	if !ok {
		return 0, false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(today).Hours() / 24), true
}

// Clone returns a deep copy so callers never share slices with a store.
func (l ShoppingList) Clone() ShoppingList {
	c := l
	if l.Products != nil {
		c.Products = make([]Product, len(l.Products))
		for i, p := range l.Products {
			p.Tags = append([]string(nil), p.Tags...)
			c.Products[i] = p
		}
	}
	if l.DepositHistory != nil {
		c.DepositHistory = append([]Deposit(nil), l.DepositHistory...)
	}
	return c
}

func (d ListDraft) Validate() error {
	return ValidateListFields(d.Name, d.Goal, d.TargetDate)
}
