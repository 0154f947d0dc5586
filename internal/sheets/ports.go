// Package sheets mirrors the savings lists into a spreadsheet, one tab of
// list totals and one tab of products.
package sheets

import (
	"context"
)

// Mirror replaces the spreadsheet contents with a fresh snapshot.
type Mirror interface {
	Write(ctx context.Context, snap Snapshot) error
}

// Snapshot is the table data written on each sync. Amounts are plain
// decimals so spreadsheet formulas can use them.
type Snapshot struct {
	Lists    [][]any
	Products [][]any
}
