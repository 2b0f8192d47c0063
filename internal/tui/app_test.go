package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
	"expensetracker/internal/kv/memory"
	"expensetracker/internal/log"
	"expensetracker/internal/store"
)

func newTestApp(t *testing.T, opts ...store.Option) (*App, *store.Store) {
	t.Helper()
	opts = append(opts, store.WithLogger(log.Nop()))
	st := store.Open(context.Background(), memory.New(), opts...)
	a, unsubscribe := NewApp(context.Background(), st, "₹")
	t.Cleanup(unsubscribe)
	return a, st
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(a *App, keys ...string) {
	for _, k := range keys {
		a.Update(key(k))
	}
}

func typeText(a *App, s string) {
	for _, r := range s {
		a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestAddThroughForm(t *testing.T) {
	a, st := newTestApp(t)

	send(a, "a")
	require.Equal(t, modeForm, a.mode)
	typeText(a, "Lunch")
	send(a, "tab")
	typeText(a, "150")
	send(a, "tab", "right", "enter")

	recs := st.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "Lunch", recs[0].Title)
	assert.Equal(t, int64(15000), recs[0].Amount.Cents)
	assert.Equal(t, core.Travel, recs[0].Category)
	assert.Equal(t, modeList, a.mode)
	assert.Contains(t, a.status, "Added")
}

func TestInvalidFormKeepsInput(t *testing.T) {
	a, st := newTestApp(t)

	send(a, "a")
	typeText(a, "Lunch")
	send(a, "tab")
	typeText(a, "abc")
	send(a, "enter")

	assert.Empty(t, st.Records())
	assert.Equal(t, modeForm, a.mode)
	assert.Equal(t, focusAmount, a.focus)
	assert.Equal(t, "Lunch", a.title.Value())
	assert.Contains(t, a.err, "amount")
}

func TestEditAndDelete(t *testing.T) {
	a, st := newTestApp(t)
	ctx := context.Background()
	e, err := st.Add(ctx, core.Draft{Title: "Taxi", Amount: core.FromCents(3000), Category: core.Travel})
	require.NoError(t, err)
	a.refresh()

	send(a, "e")
	require.Equal(t, modeForm, a.mode)
	assert.Equal(t, "Taxi", a.title.Value())
	assert.Equal(t, "30", a.amount.Value())
	assert.Contains(t, a.View(), "Edit Expense")

	typeText(a, " home")
	send(a, "enter")
	got, ok := st.Get(e.ID)
	require.True(t, ok)
	assert.Equal(t, "Taxi home", got.Title)
	_, editing := st.EditTarget()
	assert.False(t, editing)

	send(a, "d")
	assert.Empty(t, st.Records())
	assert.Contains(t, a.status, "Deleted")
}

func TestEscCancelsEdit(t *testing.T) {
	a, st := newTestApp(t)
	_, err := st.Add(context.Background(), core.Draft{Title: "Rent", Amount: core.FromCents(100000), Category: core.Bills})
	require.NoError(t, err)
	a.refresh()

	send(a, "e", "esc")
	assert.Equal(t, modeList, a.mode)
	_, editing := st.EditTarget()
	assert.False(t, editing)
}

func TestEditDisabled(t *testing.T) {
	a, st := newTestApp(t, store.WithoutEditing())
	_, err := st.Add(context.Background(), core.Draft{Title: "Rent", Amount: core.FromCents(100000), Category: core.Bills})
	require.NoError(t, err)
	a.refresh()

	send(a, "e")
	assert.Equal(t, modeList, a.mode)
	assert.Equal(t, "editing is disabled", a.err)
	assert.NotContains(t, a.View(), "e edit")
}

func TestFilterCycling(t *testing.T) {
	a, st := newTestApp(t)
	ctx := context.Background()
	st.Add(ctx, core.Draft{Title: "Lunch", Amount: core.FromCents(15000), Category: core.Food})
	st.Add(ctx, core.Draft{Title: "Bus", Amount: core.FromCents(4000), Category: core.Travel})
	a.refresh()

	send(a, "f")
	assert.Equal(t, core.Filter(core.Food), st.Filter())
	send(a, "f")
	assert.Equal(t, core.Filter(core.Travel), st.Filter())

	view := a.View()
	assert.Contains(t, view, "Bus")
	assert.NotContains(t, view, "Lunch")
	assert.Contains(t, view, "₹190.00", "total ignores the filter")

	send(a, "F", "F")
	assert.Equal(t, core.FilterAll, st.Filter())
}

func TestObserverDeliversChanges(t *testing.T) {
	a, st := newTestApp(t)
	_, err := st.Add(context.Background(), core.Draft{Title: "Coffee", Amount: core.FromCents(350), Category: core.Food})
	require.NoError(t, err)

	msg := a.waitForChange()()
	cm, ok := msg.(changedMsg)
	require.True(t, ok)
	assert.Equal(t, store.OpAdd, cm.change.Op)

	a.Update(cm)
	assert.Len(t, a.snap.Filtered, 1)
	assert.True(t, strings.Contains(a.View(), "Coffee"))
}

func TestBar(t *testing.T) {
	assert.Equal(t, 10, len([]rune(stripANSI(bar(0.5, 10, mutedStyle)))))
	assert.Equal(t, strings.Repeat("░", 4), stripANSI(bar(0, 4, mutedStyle)))
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
