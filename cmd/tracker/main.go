package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"expensetracker/internal/backend"
	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	"expensetracker/internal/log"
	"expensetracker/internal/store"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *log.Logger

	rootCmd = &cobra.Command{
		Use:   "tracker",
		Short: "Personal expense tracker",
		Long: `tracker records categorized expenses and shows a running total and a
per-category breakdown. Run "tracker serve" for the web UI or "tracker tui"
for the terminal UI.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./tracker.yaml if present)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(tuiCmd())
	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(updateCmd())
	rootCmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(chartCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(exportCmd())
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(cmd *cobra.Command, _ []string) error {
	cli.LoadEnvFile()

	c, err := cli.LoadAndValidateConfig(cfgFile)
	if err != nil {
		return err
	}
	cfg = c
	logger = cli.SetupLogger(cfg, log.ComponentApp)
	return nil
}

// session is an opened backend plus the store loaded from it.
type session struct {
	backend *backend.BackendResult
	store   *store.Store
}

func openSession(ctx context.Context) (*session, error) {
	res, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		return nil, err
	}
	return &session{backend: res, store: cli.OpenStore(ctx, cfg, logger, res.Store)}, nil
}

func (s *session) Close() {
	if err := s.backend.Close(); err != nil {
		logger.Error("Failed to close backend", log.FieldError, err)
	}
}
