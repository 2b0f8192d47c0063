package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"expensetracker/internal/core"
)

var errCanceled = errors.New("operation canceled")

// draftInput holds raw field values as typed by the user.
type draftInput struct {
	Title    string
	Amount   string
	Category string
}

func (in draftInput) complete() bool {
	return in.Title != "" && in.Amount != "" && in.Category != ""
}

func interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// promptDraft asks for the fields of an expense, starting from in.
func promptDraft(heading string, in draftInput) (core.Draft, error) {
	if c, err := core.ParseCategory(in.Category); err == nil {
		in.Category = c.String()
	} else {
		in.Category = core.Food.String()
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(heading),
			huh.NewInput().
				Title("Title").
				Value(&in.Title).
				Validate(func(s string) error {
					_, err := core.NewDraft(s, core.FromCents(1), core.Food)
					return err
				}),
			huh.NewInput().
				Title("Amount").
				Value(&in.Amount).
				Validate(func(s string) error {
					_, err := core.ParseAmount(s)
					return err
				}),
			huh.NewSelect[string]().
				Title("Category").
				Options(huh.NewOptions(core.CategoryNames()...)...).
				Value(&in.Category),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return core.Draft{}, errCanceled
		}
		return core.Draft{}, fmt.Errorf("prompt: %w", err)
	}
	return core.ParseDraft(in.Title, in.Amount, in.Category)
}

// confirm asks a yes/no question, defaulting to no.
func confirm(question string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(question).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}
