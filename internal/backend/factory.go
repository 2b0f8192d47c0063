package backend

import (
	"context"
	"fmt"

	"expensetracker/internal/kv/file"
	"expensetracker/internal/kv/memory"
	"expensetracker/internal/log"
	"expensetracker/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	return &DefaultFactory{
		logger: log.OrDefault(logger).WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		f.logger.InfoContext(ctx, "Initialized memory backend")
		return &BackendResult{Store: memory.New(), Type: MemoryBackend}, nil
	case FileBackend:
		return f.createFileBackend(ctx, config)
	case SQLiteBackend:
		return f.createSQLBackend(ctx, config.Type, func() (*storage.KVStore, error) {
			return storage.OpenSQLite(config.SQLiteDBPath)
		})
	case PostgresBackend:
		return f.createSQLBackend(ctx, config.Type, func() (*storage.KVStore, error) {
			return storage.OpenPostgres(config.PostgresURL)
		})
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createFileBackend(ctx context.Context, config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}
	store, err := file.New(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file backend: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized file backend", "data_directory", dataDir)
	return &BackendResult{Store: store, Type: FileBackend}, nil
}

func (f *DefaultFactory) createSQLBackend(ctx context.Context, t BackendType, open func() (*storage.KVStore, error)) (*BackendResult, error) {
	store, err := open()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s backend: %w", t, err)
	}

	f.logger.InfoContext(ctx, "Initialized SQL backend", log.FieldBackend, t.String())
	return &BackendResult{
		Store:   store,
		Type:    t,
		Cleanup: store.Close,
		Ping:    store.Ping,
	}, nil
}
