package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"expensetracker/internal/importer"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.ofx>",
		Short: "Import debits from an OFX/QFX bank statement",
		Long: `Import the debit transactions of an OFX or QFX statement as expenses.
Categories are guessed from the merchant name and default to Others.

Examples:
  tracker import ~/Downloads/statement.qfx
  tracker import --dry-run statement.ofx`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}
	cmd.Flags().BoolP("dry-run", "d", false, "preview import without saving")
	cmd.Flags().BoolP("quiet", "q", false, "suppress the progress bar")
	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	quiet, _ := cmd.Flags().GetBool("quiet")

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open statement: %w", err)
	}
	defer f.Close()

	out := cmd.OutOrStdout()
	if dryRun {
		txs, skipped, err := importer.ParseOFX(f)
		if err != nil {
			return err
		}
		return previewImport(out, txs, skipped)
	}

	ctx := cmd.Context()
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	var progress io.Writer = cmd.ErrOrStderr()
	if quiet {
		progress = nil
	}
	res, err := importer.New(sess.store, logger, progress).ImportOFX(ctx, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Imported %d expenses (%d failed, %d credits skipped)\n", res.Added, res.Failed, res.Skipped)
	return nil
}

func previewImport(out io.Writer, txs []importer.Transaction, skipped int) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTITLE\tAMOUNT\tCATEGORY")
	for _, tx := range txs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			tx.Posted.Format("2006-01-02"), tx.Title, tx.Amount.Format(cfg.CurrencySymbol), tx.Category)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d expenses would be imported, %d credits skipped (dry run)\n", len(txs), skipped)
	return nil
}
