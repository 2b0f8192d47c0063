package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"expensetracker/internal/amqp"
	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	"expensetracker/internal/log"
	"expensetracker/internal/sheets"
	gsheet "expensetracker/internal/sheets/google"
	sheetsmem "expensetracker/internal/sheets/memory"
	"expensetracker/internal/worker"
)

var (
	cfgFile string
	dryRun  bool
)

func main() {
	cmd := &cobra.Command{
		Use:   "tracker-worker",
		Short: "Mirror the expense list to a Google Sheet",
		Long: `tracker-worker keeps a Google Sheet in step with the expense store. It
mirrors on startup, on every change event received over AMQP and every
SYNC_INTERVAL.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         run,
	}
	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (default: ./tracker.yaml if present)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "mirror into memory and log instead of writing the sheet")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cli.LoadEnvFile()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	validate := cfg.ValidateWorker
	if dryRun {
		validate = cfg.Validate
	}
	if err := validate(); err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	logger.Info("Starting tracker-worker", log.FieldOperation, log.OpStartup)

	ctx, stop := cli.SignalContext(cmd.Context(), logger)
	defer stop()

	res, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Error("Failed to close backend", log.FieldError, err)
		}
	}()

	target, err := newMirror(ctx, cfg, logger)
	if err != nil {
		return err
	}

	mirror := worker.NewMirrorWorker(res.Store, cfg.StorageKey, target, logger)
	if err := mirror.Sync(ctx); err != nil {
		logger.Failure(ctx, "Initial sync failed", log.OpSync, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return mirror.RunPeriodic(gctx, cfg.SyncInterval)
	})

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			return fmt.Errorf("initialize AMQP client: %w", err)
		}
		defer client.Close()
		g.Go(func() error {
			return client.ConsumeChanges(gctx, mirror.HandleChange)
		})
		logger.Info("Consuming change events", "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled, mirroring every sync interval only", "interval", cfg.SyncInterval.String())
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("Worker stopped gracefully", "syncs", mirror.Syncs())
	return nil
}

func newMirror(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.Mirror, error) {
	if dryRun {
		logger.Info("Dry run: mirroring in memory only")
		return sheetsmem.New(logger), nil
	}
	client, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize Google Sheets client: %w", err)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}
