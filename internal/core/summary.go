package core

// CategoryTotal is the amount spent in one category.
type CategoryTotal struct {
	Category Category
	Amount   Money
}

// Summary bundles the derived views a rendering collaborator redraws after
// every change.
type Summary struct {
	Total      Money
	ByCategory []CategoryTotal
	Count      int
}

// FilterExpenses returns the records matching f in their original order.
// FilterAll returns a copy of the full sequence.
func FilterExpenses(records []Expense, f Filter) []Expense {
	out := make([]Expense, 0, len(records))
	for _, e := range records {
		if f.Matches(e.Category) {
			out = append(out, e)
		}
	}
	return out
}

// Total sums every record, ignoring any filter.
func Total(records []Expense) Money {
	var t Money
	for _, e := range records {
		t = t.Add(e.Amount)
	}
	return t
}

// CategoryTotals returns one entry per category in enumeration order, zero
// when a category has no records.
func CategoryTotals(records []Expense) []CategoryTotal {
	out := make([]CategoryTotal, len(categories))
	for i, c := range categories {
		out[i].Category = c
	}
	for _, e := range records {
		if i := e.Category.Index(); i >= 0 {
			out[i].Amount = out[i].Amount.Add(e.Amount)
		}
	}
	return out
}

func Summarize(records []Expense) Summary {
	return Summary{
		Total:      Total(records),
		ByCategory: CategoryTotals(records),
		Count:      len(records),
	}
}

// Amounts returns the category totals as plain values, aligned with
// Categories().
func (s Summary) Amounts() []Money {
	out := make([]Money, len(s.ByCategory))
	for i, ct := range s.ByCategory {
		out[i] = ct.Amount
	}
	return out
}
