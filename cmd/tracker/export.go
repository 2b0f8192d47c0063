package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"expensetracker/internal/core"
	"expensetracker/internal/export"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export expenses as JSON, YAML or CSV",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}
	cmd.Flags().String("format", string(export.FormatJSON), "json, yaml or csv")
	cmd.Flags().StringP("out", "o", "", "output file (default: stdout)")
	cmd.Flags().StringP("filter", "f", string(core.FilterAll), "category to export")
	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	rawFormat, _ := cmd.Flags().GetString("format")
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return err
	}
	rawFilter, _ := cmd.Flags().GetString("filter")
	filter, err := core.ParseFilter(rawFilter)
	if err != nil {
		return fmt.Errorf("%w: %q", err, rawFilter)
	}
	path, _ := cmd.Flags().GetString("out")

	ctx := cmd.Context()
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	var w io.Writer = cmd.OutOrStdout()
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}
	return export.Write(w, format, sess.store.FilteredBy(filter))
}
