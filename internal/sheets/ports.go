package sheets

import (
	"context"

	"expensetracker/internal/core"
)

// Mirror replaces a remote copy of the expense list with records.
type Mirror interface {
	Mirror(ctx context.Context, records []core.Expense) error
}
