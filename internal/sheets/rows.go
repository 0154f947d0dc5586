package sheets

import (
	"strings"
	"time"

	"planeja/internal/core"
)

var (
	ListHeader    = []any{"ID", "Nome", "Objetivo", "Data alvo", "Dias restantes", "Planejado", "Guardado", "Faltam", "Progresso (%)", "Produtos", "Comprados"}
	ProductHeader = []any{"Lista", "ID", "Produto", "Quantidade", "Preço", "Subtotal", "Prioridade", "Loja", "Tags", "Comprado"}
)

// BuildSnapshot lays out lists as spreadsheet rows, headers first. Days left
// is blank for lists without a target date.
func BuildSnapshot(lists []core.ShoppingList, now time.Time) Snapshot {
	snap := Snapshot{
		Lists:    [][]any{ListHeader},
		Products: [][]any{ProductHeader},
	}
	for _, l := range lists {
		var daysLeft any = ""
		if days, ok := l.DaysLeft(now); ok {
			daysLeft = days
		}
		snap.Lists = append(snap.Lists, []any{
			l.ID,
			l.Name,
			l.Goal,
			l.TargetDate,
			daysLeft,
			l.PlannedTotal().Float(),
			l.SavedAmount.Float(),
			l.Remaining().Float(),
			roundPercent(l.Progress()),
			len(l.Products),
			l.CompletedCount(),
		})

		for _, p := range l.Products {
			snap.Products = append(snap.Products, []any{
				l.Name,
				p.ID,
				p.Name,
				p.Quantity,
				p.Price.Float(),
				p.Subtotal().Float(),
				string(p.Priority),
				p.Store,
				strings.Join(p.Tags, ", "),
				p.Completed,
			})
		}
	}
	return snap
}

func roundPercent(p float64) float64 {
	return float64(int64(p*10+0.5)) / 10
}
