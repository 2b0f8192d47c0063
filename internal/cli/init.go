// Package cli provides common CLI initialization utilities shared by
// cmd/tracker and cmd/tracker-worker.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"

	"expensetracker/internal/backend"
	"expensetracker/internal/config"
	"expensetracker/internal/kv"
	"expensetracker/internal/log"
	"expensetracker/internal/store"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig(configFile string) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogFormat resolves "auto" to text on a terminal and JSON otherwise.
func LogFormat(configured string, tty bool) log.Format {
	switch configured {
	case "json":
		return log.FormatJSON
	case "text":
		return log.FormatText
	}
	if tty {
		return log.FormatText
	}
	return log.FormatJSON
}

// SetupLogger builds the process logger from cfg and installs it as the
// slog default. Logs go to stderr so command output stays clean.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	tty := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: component,
		Format:    LogFormat(cfg.LogFormat, tty),
		Output:    os.Stderr,
	})
	log.SetDefault(logger)
	return logger
}

// OpenBackend creates the configured key/value backend.
func OpenBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", bcfg.Type, err)
	}
	return res, nil
}

// StoreOptions translates cfg into store options.
func StoreOptions(cfg *config.Config, logger *log.Logger) []store.Option {
	opts := []store.Option{store.WithKey(cfg.StorageKey), store.WithLogger(logger)}
	if !cfg.EditingEnabled {
		opts = append(opts, store.WithoutEditing())
	}
	return opts
}

// OpenStore loads the expense store from backend using cfg.
func OpenStore(ctx context.Context, cfg *config.Config, logger *log.Logger, kvs kv.Store) *store.Store {
	return store.Open(ctx, kvs, StoreOptions(cfg, logger)...)
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		if parent.Err() == nil {
			logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)
		}
	}()
	return ctx, stop
}
