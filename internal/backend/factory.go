package backend

import (
	"context"
	"fmt"
	"log/slog"

	"budgap/internal/document"
	"budgap/internal/storage"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) CreateBackend(_ context.Context, config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case SQLiteType:
		return f.createSQLiteBackend(config)
	case DocumentType:
		return f.createDocumentBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Result{
		Store:   repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createDocumentBackend(config Config) (*Result, error) {
	store := document.New()

	var cleanup CleanupFunc
	if config.SnapshotPath != "" {
		if err := store.LoadSnapshot(config.SnapshotPath); err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		cleanup = func() error {
			return store.SaveSnapshot(config.SnapshotPath)
		}
	}

	f.logger.Info("Initialized document backend", "snapshot", config.SnapshotPath)

	return &Result{
		Store:   store,
		Cleanup: cleanup,
	}, nil
}
