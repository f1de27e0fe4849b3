package backend

import (
	"context"

	"nutritrack/internal/services"
)

// Store is the unified storage surface the services build on. Both the
// SQLite repository and the in-memory store satisfy it.
type Store interface {
	services.StatsStore
	services.MenuStore
	services.ScanStore
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result contains the created store, the optional sync publisher and an
// optional cleanup function.
type Result struct {
	Store     Store
	Publisher services.SyncPublisher // nil when AMQP is not available
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer.
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid.
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
