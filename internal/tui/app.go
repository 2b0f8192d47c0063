// Package tui provides the interactive Bubble Tea front end for the
// expense store.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"expensetracker/internal/core"
	"expensetracker/internal/store"
)

type mode int

const (
	modeList mode = iota
	modeForm
)

const (
	focusTitle = iota
	focusAmount
	focusCategory
	focusCount
)

// changedMsg is sent when the store reports a mutation.
type changedMsg struct{ change store.Change }

// App is the root Bubble Tea model.
type App struct {
	ctx      context.Context
	store    *store.Store
	currency string
	changes  chan store.Change

	snap   store.Snapshot
	mode   mode
	cursor int

	title    textinput.Model
	amount   textinput.Model
	category int
	focus    int

	status string
	err    string

	width  int
	height int
}

// NewApp creates the model and subscribes it to st. The returned func
// removes the subscription.
func NewApp(ctx context.Context, st *store.Store, currency string) (*App, func()) {
	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = core.MaxTitleLength
	title.Width = 40

	amount := textinput.New()
	amount.Placeholder = "0.00"
	amount.CharLimit = 32
	amount.Width = 12

	a := &App{
		ctx:      ctx,
		store:    st,
		currency: currency,
		changes:  make(chan store.Change, 16),
		title:    title,
		amount:   amount,
	}
	unsubscribe := st.Subscribe(func(_ context.Context, c store.Change) {
		select {
		case a.changes <- c:
		default:
		}
	})
	a.refresh()
	return a, unsubscribe
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.waitForChange())
}

func (a *App) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case c := <-a.changes:
			return changedMsg{change: c}
		case <-a.ctx.Done():
			return nil
		}
	}
}

func (a *App) refresh() {
	a.snap = a.store.Snapshot()
	if a.cursor >= len(a.snap.Filtered) {
		a.cursor = len(a.snap.Filtered) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil
	case changedMsg:
		a.refresh()
		return a, a.waitForChange()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.mode == modeForm {
			return a.updateForm(msg)
		}
		return a.updateList(msg)
	}
	return a, nil
}

func (a *App) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.err = ""
	switch msg.String() {
	case "q", "esc":
		return a, tea.Quit
	case "j", "down":
		if a.cursor < len(a.snap.Filtered)-1 {
			a.cursor++
		}
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
	case "a", "n":
		a.store.CancelEdit()
		return a, a.openForm(core.Draft{Category: core.Food}, false)
	case "e", "enter":
		e, ok := a.selected()
		if !ok {
			return a, nil
		}
		cur, err := a.store.BeginEdit(e.ID)
		switch {
		case errors.Is(err, core.ErrEditingDisabled):
			a.err = "editing is disabled"
			return a, nil
		case err != nil:
			a.refresh()
			return a, nil
		}
		return a, a.openForm(cur.Draft(), true)
	case "d", "x", "delete":
		if e, ok := a.selected(); ok && a.store.Delete(a.ctx, e.ID) {
			a.status = fmt.Sprintf("Deleted %q", e.Title)
		}
		a.refresh()
	case "f", "tab":
		a.cycleFilter(1)
	case "F", "shift+tab":
		a.cycleFilter(-1)
	}
	return a, nil
}

func (a *App) selected() (core.Expense, bool) {
	if a.cursor < 0 || a.cursor >= len(a.snap.Filtered) {
		return core.Expense{}, false
	}
	return a.snap.Filtered[a.cursor], true
}

func (a *App) cycleFilter(step int) {
	filters := core.Filters()
	cur := 0
	for i, f := range filters {
		if f == a.store.Filter() {
			cur = i
		}
	}
	next := filters[(cur+step+len(filters))%len(filters)]
	_ = a.store.SetFilter(next)
	a.cursor = 0
	a.refresh()
}

func (a *App) openForm(d core.Draft, editing bool) tea.Cmd {
	a.mode = modeForm
	a.err = ""
	a.status = ""
	a.title.SetValue(d.Title)
	a.amount.SetValue("")
	if editing {
		a.amount.SetValue(d.Amount.String())
	}
	a.category = d.Category.Index()
	if a.category < 0 {
		a.category = 0
	}
	a.refresh()
	return a.setFocus(focusTitle)
}

func (a *App) setFocus(f int) tea.Cmd {
	a.focus = (f + focusCount) % focusCount
	a.title.Blur()
	a.amount.Blur()
	switch a.focus {
	case focusTitle:
		return a.title.Focus()
	case focusAmount:
		return a.amount.Focus()
	}
	return nil
}

func (a *App) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.store.CancelEdit()
		a.mode = modeList
		a.err = ""
		a.refresh()
		return a, nil
	case "tab", "down":
		return a, a.setFocus(a.focus + 1)
	case "shift+tab", "up":
		return a, a.setFocus(a.focus - 1)
	case "enter":
		return a, a.submit()
	}

	if a.focus == focusCategory {
		n := len(core.Categories())
		switch msg.String() {
		case "left", "h":
			a.category = (a.category - 1 + n) % n
		case "right", "l", " ":
			a.category = (a.category + 1) % n
		}
		return a, nil
	}

	var cmd tea.Cmd
	if a.focus == focusTitle {
		a.title, cmd = a.title.Update(msg)
	} else {
		a.amount, cmd = a.amount.Update(msg)
	}
	return a, cmd
}

func (a *App) submit() tea.Cmd {
	cat := core.Categories()[a.category]
	d, err := core.ParseDraft(a.title.Value(), a.amount.Value(), cat.String())
	if err != nil {
		a.err = err.Error()
		var ve *core.ValidationError
		if errors.As(err, &ve) && ve.Field == "amount" {
			return a.setFocus(focusAmount)
		}
		return a.setFocus(focusTitle)
	}

	e, op, err := a.store.Submit(a.ctx, d)
	if err != nil {
		a.err = err.Error()
		return nil
	}
	verb := "Added"
	if op == store.OpUpdate {
		verb = "Updated"
	}
	a.status = fmt.Sprintf("%s %q (%s)", verb, e.Title, e.Amount.Format(a.currency))
	a.err = ""
	a.mode = modeList
	a.title.Blur()
	a.amount.Blur()
	a.refresh()
	return nil
}
