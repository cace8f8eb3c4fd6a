package backend

import (
	"context"

	"accountant/internal/ports"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult holds the ports a binary wires from one backend.
type BackendResult struct {
	Records       ports.RecordReader
	Reader        ports.DashboardReader
	Integrity     ports.IntegrityChecker
	Subscriptions ports.SubscriptionStore
	// Ready reports whether the store is reachable; nil when nothing can fail.
	Ready   func(context.Context) error
	Cleanup CleanupFunc
}

// Close runs the cleanup function, if any.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// Source selects how views are computed.
	Source AggregationSource

	// SQLite specific
	SQLiteDBPath string
	// Seed imports DataDirectory into an empty SQLite database.
	Seed bool

	// Memory backend and seed data
	DataDirectory string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// AggregationSource selects the DashboardReader implementation.
type AggregationSource string

const (
	// SourceRecords runs the aggregation engine over loaded records.
	SourceRecords AggregationSource = "records"
	// SourceViews reads the SQL views of the SQLite store.
	SourceViews AggregationSource = "views"
)

// IsValid returns true if the source is known
func (s AggregationSource) IsValid() bool {
	return s == SourceRecords || s == SourceViews
}
