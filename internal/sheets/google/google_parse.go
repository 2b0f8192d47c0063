package google

import (
	"strconv"

	"expensetracker/internal/core"
)

var header = []any{"Title", "Amount", "Category", "ID"}

// buildRows lays out the mirror: a header, one row per record in store
// order, a blank separator, then per-category totals and the grand total.
// IDs are written as strings so large millisecond ids keep full precision.
func buildRows(records []core.Expense) [][]any {
	rows := make([][]any, 0, len(records)+len(core.Categories())+4)
	rows = append(rows, header)
	for _, e := range records {
		rows = append(rows, []any{e.Title, e.Amount.Float(), e.Category.String(), strconv.FormatInt(e.ID, 10)})
	}

	rows = append(rows, []any{}, []any{"Category", "Total"})
	sum := core.Summarize(records)
	for _, ct := range sum.ByCategory {
		rows = append(rows, []any{ct.Category.String(), ct.Amount.Float()})
	}
	rows = append(rows, []any{"Total", sum.Total.Float()})
	return rows
}
