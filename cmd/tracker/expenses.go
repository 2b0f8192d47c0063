package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"expensetracker/internal/core"
)

var totalStyle = lipgloss.NewStyle().Bold(true)

func addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [title] [amount] [category]",
		Short: "Add an expense",
		Long: `Add an expense. Missing fields are prompted for when running in a terminal.

Examples:
  tracker add Lunch 150 Food
  tracker add "Train ticket" 12.50 travel`,
		Args: cobra.MaximumNArgs(3),
		RunE: runAdd,
	}
}

func runAdd(cmd *cobra.Command, args []string) error {
	var in draftInput
	fields := []*string{&in.Title, &in.Amount, &in.Category}
	for i, a := range args {
		*fields[i] = a
	}

	d, err := resolveDraft("New expense", in)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	e, err := sess.store.Add(ctx, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %d: %s %s (%s)\n",
		e.ID, e.Title, e.Amount.Format(cfg.CurrencySymbol), e.Category)
	return nil
}

// resolveDraft parses in, prompting for the rest when it is incomplete.
func resolveDraft(heading string, in draftInput) (core.Draft, error) {
	if in.complete() {
		return core.ParseDraft(in.Title, in.Amount, in.Category)
	}
	if !interactive() {
		return core.Draft{}, errors.New("title, amount and category are required")
	}
	return promptDraft(heading, in)
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	cmd.Flags().StringP("filter", "f", string(core.FilterAll), "category to show (All, Food, Travel, Bills, Shopping, Others)")
	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	raw, _ := cmd.Flags().GetString("filter")
	f, err := core.ParseFilter(raw)
	if err != nil {
		return fmt.Errorf("%w: %q", err, raw)
	}

	ctx := cmd.Context()
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	out := cmd.OutOrStdout()
	records := sess.store.FilteredBy(f)
	if len(records) == 0 {
		fmt.Fprintln(out, "No expenses")
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tAMOUNT\tCATEGORY")
		for _, e := range records {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.ID, e.Title, e.Amount.Format(cfg.CurrencySymbol), e.Category)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, totalStyle.Render("Total: "+sess.store.Total().Format(cfg.CurrencySymbol)))
	return nil
}

func updateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change an expense",
		Long: `Change the title, amount or category of an expense. Fields without a flag
keep their current value; with no flags at all the fields are prompted for.`,
		Args: cobra.ExactArgs(1),
		RunE: runUpdate,
	}
	cmd.Flags().String("title", "", "new title")
	cmd.Flags().String("amount", "", "new amount")
	cmd.Flags().String("category", "", "new category")
	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	current, err := sess.store.BeginEdit(id)
	if err != nil {
		return fmt.Errorf("expense %d: %w", id, err)
	}
	defer sess.store.CancelEdit()

	in := draftInput{
		Title:    current.Title,
		Amount:   current.Amount.String(),
		Category: current.Category.String(),
	}
	flags := cmd.Flags()
	changed := false
	for name, field := range map[string]*string{"title": &in.Title, "amount": &in.Amount, "category": &in.Category} {
		if flags.Changed(name) {
			*field, _ = flags.GetString(name)
			changed = true
		}
	}

	var d core.Draft
	switch {
	case changed:
		d, err = core.ParseDraft(in.Title, in.Amount, in.Category)
	case interactive():
		d, err = promptDraft(fmt.Sprintf("Edit expense %d", id), in)
	default:
		err = errors.New("nothing to change: pass --title, --amount or --category")
	}
	if err != nil {
		return err
	}

	e, err := sess.store.Update(ctx, id, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %d: %s %s (%s)\n",
		e.ID, e.Title, e.Amount.Format(cfg.CurrencySymbol), e.Category)
	return nil
}

func deleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}
	cmd.Flags().BoolP("force", "f", false, "skip confirmation prompt")
	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force")

	ctx := cmd.Context()
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	out := cmd.OutOrStdout()
	e, ok := sess.store.Get(id)
	if !ok {
		fmt.Fprintf(out, "No expense with id %d\n", id)
		return nil
	}

	if !force && interactive() {
		yes, err := confirm(fmt.Sprintf("Delete %q (%s)?", e.Title, e.Amount.Format(cfg.CurrencySymbol)))
		if err != nil {
			return err
		}
		if !yes {
			fmt.Fprintln(out, "Operation canceled.")
			return nil
		}
	}

	if sess.store.Delete(ctx, id) {
		fmt.Fprintf(out, "Deleted %d\n", id)
	}
	return nil
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the total and the per-category breakdown",
		Args:  cobra.NoArgs,
		RunE:  runSummary,
	}
}

func runSummary(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	return writeSummary(cmd.OutOrStdout(), sess.store.Snapshot().Summary, cfg.CurrencySymbol)
}

func writeSummary(out io.Writer, s core.Summary, symbol string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "CATEGORY\tAMOUNT\tSHARE\t")
	for _, ct := range s.ByCategory {
		share := 0.0
		if s.Total.Cents > 0 {
			share = float64(ct.Amount.Cents) * 100 / float64(s.Total.Cents)
		}
		fmt.Fprintf(w, "%s\t%s\t%.1f%%\t\n", ct.Category, ct.Amount.Format(symbol), share)
	}
	fmt.Fprintf(w, "%s\t%s\t\t\n", "Total", s.Total.Format(symbol))
	fmt.Fprintf(w, "%s\t%d\t\t\n", "Expenses", s.Count)
	return w.Flush()
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid expense id %q", s)
	}
	return id, nil
}
