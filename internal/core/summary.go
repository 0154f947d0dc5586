package core

// ListSummary is one list's line on the dashboard chart.
type ListSummary struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Saved    Money   `json:"saved"`
	Planned  Money   `json:"planned"`
	Progress float64 `json:"progress"`
}

// Overview is the dashboard aggregate across all lists.
type Overview struct {
	TotalPlanned Money         `json:"totalPlanned"`
	TotalSaved   Money         `json:"totalSaved"`
	Percentage   float64       `json:"percentage"`
	Lists        []ListSummary `json:"lists"`
}

// Summarize derives the chart line for l.
func Summarize(l ShoppingList) ListSummary {
	return ListSummary{
		ID:       l.ID,
		Name:     l.Name,
		Saved:    l.SavedAmount,
		Planned:  l.PlannedTotal(),
		Progress: l.Progress(),
	}
}
