package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"accountant/internal/core"
	"accountant/internal/ports"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("record not found")

// SQLiteRepository stores domain records in SQLite and serves the reporting
// views defined by the migrations.
type SQLiteRepository struct {
	db            *sql.DB
	path          string
	schemaVersion uint
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY between the renewal worker and imports.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db, path: dbPath, schemaVersion: version}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks that the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return ports.Unavailable("sqlite ping", err)
	}
	return nil
}

// SchemaVersion is the migration version applied at open.
func (r *SQLiteRepository) SchemaVersion() uint { return r.schemaVersion }

// Import upserts every record of s in one transaction.
func (r *SQLiteRepository) Import(ctx context.Context, s *core.Snapshot) error {
	if s == nil {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	if err := insertRecords(ctx, tx, s); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

// LoadSnapshot implements ports.RecordReader.
func (r *SQLiteRepository) LoadSnapshot(ctx context.Context, f ports.Filter) (*core.Snapshot, error) {
	s, err := loadRecords(ctx, r.db, f)
	if err != nil {
		return nil, ports.Unavailable("sqlite load", err)
	}
	return s, nil
}

// ListSubscriptions implements ports.SubscriptionStore.
func (r *SQLiteRepository) ListSubscriptions(ctx context.Context) ([]core.Subscription, error) {
	subs, err := loadSubscriptions(ctx, r.db)
	if err != nil {
		return nil, ports.Unavailable("list subscriptions", err)
	}
	return subs, nil
}

// UpdateNextBillingDate implements ports.SubscriptionStore.
func (r *SQLiteRepository) UpdateNextBillingDate(ctx context.Context, id string, next core.Date) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE subscriptions SET next_billing_date = ? WHERE id = ?`, next.String(), id)
	if err != nil {
		return fmt.Errorf("update subscription %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update subscription %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("subscription %s: %w", id, ErrNotFound)
	}
	return nil
}
