package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"expensetracker/internal/chart"
)

func chartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Write the category pie chart to a file",
		Long: `Write the per-category pie chart. The format follows the file extension.

Examples:
  tracker chart --out expenses.svg
  tracker chart --out expenses.png`,
		Args: cobra.NoArgs,
		RunE: runChart,
	}
	cmd.Flags().StringP("out", "o", "expenses.svg", "output file (.svg or .png)")
	return cmd
}

func runChart(cmd *cobra.Command, _ []string) error {
	out, _ := cmd.Flags().GetString("out")
	format, err := chart.FormatFromPath(out)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	data, err := chart.Bytes(sess.store.CategoryTotals(), format)
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Chart written to %s\n", out)
	return nil
}
