package backend

import (
	"context"

	"budgap/internal/ledger"
)

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result carries the store plus its optional cleanup.
type Result struct {
	Store   ledger.Store
	Cleanup CleanupFunc
}

// Factory creates stores based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// Document specific: snapshot file loaded on start and written on
	// shutdown. Empty disables persistence.
	SnapshotPath string
}

// Type selects the persistence backend.
type Type string

const (
	// SQLiteType persists to a local SQLite file with filtering in SQL.
	SQLiteType Type = "sqlite"

	// DocumentType keeps everything in process and filters after a full
	// fetch.
	DocumentType Type = "document"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case SQLiteType, DocumentType:
		return true
	default:
		return false
	}
}
