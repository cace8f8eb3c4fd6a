package backend

import (
	"context"
	"fmt"
	"log/slog"

	"accountant/internal/adapters"
	"accountant/internal/decode"
	"accountant/internal/ports"
	"accountant/internal/storage"
	"accountant/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Source == "" {
		config.Source = SourceRecords
	}
	if config.DataDirectory == "" {
		config.DataDirectory = "data" // Default directory
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	if config.Seed {
		if err := f.seed(ctx, repo, config.DataDirectory); err != nil {
			repo.Close()
			return nil, err
		}
	}

	records := adapters.NewRecords(repo)
	var reader ports.DashboardReader = records
	if config.Source == SourceViews {
		reader = repo
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"schema_version", repo.SchemaVersion(),
		"source", string(config.Source))

	return &BackendResult{
		Records:       repo,
		Reader:        reader,
		Integrity:     records,
		Subscriptions: repo,
		Ready:         repo.Ping,
		Cleanup:       repo.Close,
	}, nil
}

// seed imports the JSON dataset when the database holds no records yet.
func (f *DefaultFactory) seed(ctx context.Context, repo *storage.SQLiteRepository, dataDir string) error {
	existing, err := repo.LoadSnapshot(ctx, ports.Filter{})
	if err != nil {
		return fmt.Errorf("check existing records: %w", err)
	}
	if !existing.IsEmpty() {
		f.logger.Info("SQLite database already populated, skipping seed")
		return nil
	}

	store, err := f.loadDir(dataDir)
	if err != nil {
		return err
	}
	snap, err := store.LoadSnapshot(ctx, ports.Filter{})
	if err != nil {
		return fmt.Errorf("read seed data: %w", err)
	}
	if err := repo.Import(ctx, snap); err != nil {
		return fmt.Errorf("import seed data: %w", err)
	}
	f.logger.Info("Seeded SQLite database", "data_directory", dataDir)
	return nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	store, err := f.loadDir(config.DataDirectory)
	if err != nil {
		return nil, err
	}
	records := adapters.NewRecords(store)

	f.logger.Info("Initialized memory backend", "data_directory", config.DataDirectory)

	return &BackendResult{
		Records:       store,
		Reader:        records,
		Integrity:     records,
		Subscriptions: store,
		Cleanup:       nil, // No cleanup needed for memory backend
	}, nil
}

// loadDir decodes the JSON files of dir and logs every rejected row.
func (f *DefaultFactory) loadDir(dir string) (*memory.Store, error) {
	store, err := memory.NewFromDir(dir, decode.New())
	if err != nil {
		return nil, fmt.Errorf("load data directory %s: %w", dir, err)
	}
	for _, r := range store.Rejections() {
		f.logger.Warn("Rejected record", "rejection", r.String())
	}
	return store, nil
}
