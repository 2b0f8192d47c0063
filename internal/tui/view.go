package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"expensetracker/internal/core"
)

const barWidth = 24

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Expense Tracker"))
	b.WriteString("\n\n")

	if a.mode == modeForm {
		b.WriteString(panelStyle.Render(a.viewForm()))
		b.WriteString("\n")
	}

	b.WriteString(a.viewFilter())
	b.WriteString("\n")
	b.WriteString(a.viewList())
	b.WriteString("\n")
	b.WriteString(headingStyle.Render("Total: " + a.snap.Summary.Total.Format(a.currency)))
	b.WriteString("\n\n")
	b.WriteString(a.viewBreakdown())
	b.WriteString("\n")

	if a.err != "" {
		b.WriteString(errorStyle.Render(a.err))
		b.WriteString("\n")
	} else if a.status != "" {
		b.WriteString(statusStyle.Render(a.status))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render(a.help()))
	return b.String()
}

func (a *App) viewForm() string {
	heading := "Add Expense"
	if a.snap.Editing != nil {
		heading = "Edit Expense"
	}

	var cats []string
	for i, c := range core.Categories() {
		label := c.String()
		if i == a.category {
			label = categoryStyle(i).Bold(true).Render("[" + label + "]")
		} else {
			label = mutedStyle.Render(" " + label + " ")
		}
		cats = append(cats, label)
	}
	catLabel := "Category"
	if a.focus == focusCategory {
		catLabel = selectedStyle.Render(catLabel)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		headingStyle.Render(heading),
		"Title    "+a.title.View(),
		"Amount   "+a.amount.View(),
		catLabel+" "+strings.Join(cats, ""),
	)
}

func (a *App) viewFilter() string {
	var parts []string
	for _, f := range core.Filters() {
		if f == a.snap.Filter {
			parts = append(parts, selectedStyle.Render("<"+f.String()+">"))
		} else {
			parts = append(parts, mutedStyle.Render(f.String()))
		}
	}
	return "Filter: " + strings.Join(parts, " ")
}

func (a *App) viewList() string {
	if len(a.snap.Filtered) == 0 {
		return mutedStyle.Render("  No expenses.") + "\n"
	}
	var b strings.Builder
	for i, e := range a.snap.Filtered {
		cursor := "  "
		line := fmt.Sprintf("%-30s %-9s %12s",
			truncate(e.Title, 30),
			categoryStyle(e.Category.Index()).Render(fmt.Sprintf("%-9s", e.Category)),
			e.Amount.Format(a.currency))
		switch {
		case a.snap.Editing != nil && a.snap.Editing.ID == e.ID:
			line = editingStyle.Render(line + "  (editing)")
		case i == a.cursor && a.mode == modeList:
			cursor = selectedStyle.Render("> ")
			line = selectedStyle.Render(line)
		}
		b.WriteString(cursor + line + "\n")
	}
	return b.String()
}

func (a *App) viewBreakdown() string {
	total := a.snap.Summary.Total.Cents
	var b strings.Builder
	for i, ct := range a.snap.Summary.ByCategory {
		pct := 0.0
		if total > 0 {
			pct = float64(ct.Amount.Cents) / float64(total)
		}
		fmt.Fprintf(&b, "%-9s %s %5.1f%%  %s\n",
			ct.Category,
			bar(pct, barWidth, categoryStyle(i)),
			pct*100,
			ct.Amount.Format(a.currency))
	}
	return b.String()
}

func (a *App) help() string {
	if a.mode == modeForm {
		return "tab/shift+tab move • ←/→ category • enter save • esc cancel"
	}
	keys := "a add • d delete • f/F filter • j/k move • q quit"
	if a.snap.EditingEnabled {
		keys = "a add • e edit • d delete • f/F filter • j/k move • q quit"
	}
	return keys
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
