package http

import (
	"expensetracker/internal/chart"
	"expensetracker/internal/core"
	"expensetracker/internal/store"
)

type formValues struct {
	Title    string
	Amount   string
	Category string
}

type itemView struct {
	ID         int64
	Title      string
	Amount     string
	Category   string
	ColorIndex int
	Editing    bool
}

type breakdownRow struct {
	Name       string
	Amount     string
	Percent    int
	ColorIndex int
}

type pageData struct {
	Form           formValues
	Errors         FieldErrors
	Editing        bool
	EditingEnabled bool
	Categories     []string
	Filters        []string
	Filter         string
	Items          []itemView
	Total          string
	Count          int
	Breakdown      []breakdownRow
	Version        uint64
}

// newPageData builds the view of snap. form, when non-nil, replaces the
// values the form would otherwise be filled with.
func (s *Server) newPageData(snap store.Snapshot, form *formValues, errs FieldErrors) pageData {
	data := pageData{
		Errors:         errs,
		Editing:        snap.Editing != nil,
		EditingEnabled: snap.EditingEnabled,
		Categories:     core.CategoryNames(),
		Filter:         snap.Filter.String(),
		Total:          s.money(snap.Summary.Total),
		Count:          snap.Summary.Count,
		Version:        snap.Version,
	}
	for _, f := range core.Filters() {
		data.Filters = append(data.Filters, f.String())
	}

	switch {
	case form != nil:
		data.Form = *form
	case snap.Editing != nil:
		data.Form = formValues{
			Title:    snap.Editing.Title,
			Amount:   snap.Editing.Amount.String(),
			Category: snap.Editing.Category.String(),
		}
	default:
		data.Form.Category = core.Food.String()
	}

	for _, e := range snap.Filtered {
		data.Items = append(data.Items, itemView{
			ID:         e.ID,
			Title:      e.Title,
			Amount:     s.money(e.Amount),
			Category:   e.Category.String(),
			ColorIndex: e.Category.Index(),
			Editing:    snap.Editing != nil && snap.Editing.ID == e.ID,
		})
	}

	total := snap.Summary.Total.Cents
	for i, ct := range snap.Summary.ByCategory {
		pct := 0
		if total > 0 {
			pct = int((ct.Amount.Cents*100 + total/2) / total)
		}
		data.Breakdown = append(data.Breakdown, breakdownRow{
			Name:       ct.Category.String(),
			Amount:     s.money(ct.Amount),
			Percent:    pct,
			ColorIndex: i % len(chart.Palette),
		})
	}
	return data
}

func (s *Server) money(m core.Money) string {
	return m.Format(s.currency)
}

// expenseJSON is the API representation of a record.
type expenseJSON struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Amount   string `json:"amount"`
	Cents    int64  `json:"amount_cents"`
	Category string `json:"category"`
}

func toExpenseJSON(e core.Expense) expenseJSON {
	return expenseJSON{
		ID:       e.ID,
		Title:    e.Title,
		Amount:   e.Amount.String(),
		Cents:    e.Amount.Cents,
		Category: e.Category.String(),
	}
}

type categoryTotalJSON struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Cents    int64  `json:"amount_cents"`
}

type summaryJSON struct {
	Total      string              `json:"total"`
	TotalCents int64               `json:"total_cents"`
	Count      int                 `json:"count"`
	ByCategory []categoryTotalJSON `json:"by_category"`
	Filter     string              `json:"filter"`
	Version    uint64              `json:"version"`
}

func toSummaryJSON(snap store.Snapshot) summaryJSON {
	out := summaryJSON{
		Total:      snap.Summary.Total.String(),
		TotalCents: snap.Summary.Total.Cents,
		Count:      snap.Summary.Count,
		Filter:     snap.Filter.String(),
		Version:    snap.Version,
	}
	for _, ct := range snap.Summary.ByCategory {
		out.ByCategory = append(out.ByCategory, categoryTotalJSON{
			Category: ct.Category.String(),
			Amount:   ct.Amount.String(),
			Cents:    ct.Amount.Cents,
		})
	}
	return out
}
