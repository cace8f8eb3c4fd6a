package storage

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"accountant/internal/aggregate"
	"accountant/internal/core"
	"accountant/internal/decode"
	"accountant/internal/ports"
	"accountant/internal/storage/memory"
)

var asOf = core.NewDate(2026, 3, 20)

func seedSnapshot(t *testing.T) *core.Snapshot {
	t.Helper()
	st, err := memory.NewFromDir(filepath.Join("..", "..", "data"), decode.New())
	if err != nil {
		t.Fatalf("seed data: %v", err)
	}
	if rej := st.Rejections(); len(rej) > 0 {
		t.Fatalf("seed data has rejected rows: %v", rej)
	}
	s, err := st.LoadSnapshot(context.Background(), ports.Filter{})
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	return s
}

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "accountant.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestMigrationsApplied(t *testing.T) {
	repo := newTestRepo(t)
	if repo.SchemaVersion() != 3 {
		t.Fatalf("expected schema version 3, got %d", repo.SchemaVersion())
	}
	// Re-running on an up-to-date database is a no-op.
	if _, err := RunMigrations(repo.path); err != nil {
		t.Fatalf("rerun migrations: %v", err)
	}
}

func TestImportAndLoadSnapshot(t *testing.T) {
	repo := newTestRepo(t)
	want := seedSnapshot(t)
	ctx := context.Background()

	if err := repo.Import(ctx, want); err != nil {
		t.Fatalf("import: %v", err)
	}
	// Importing twice upserts instead of duplicating.
	if err := repo.Import(ctx, want); err != nil {
		t.Fatalf("second import: %v", err)
	}

	got, err := repo.LoadSnapshot(ctx, ports.Filter{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Invoices) != len(want.Invoices) || len(got.Payments) != len(want.Payments) || len(got.Expenses) != len(want.Expenses) {
		t.Fatalf("row counts differ: invoices %d/%d payments %d/%d expenses %d/%d",
			len(got.Invoices), len(want.Invoices), len(got.Payments), len(want.Payments), len(got.Expenses), len(want.Expenses))
	}
	if len(aggregate.CheckIntegrity(got, asOf)) != len(aggregate.CheckIntegrity(want, asOf)) {
		t.Fatalf("integrity differs after round trip")
	}
	inv := got.Invoices[2]
	if inv.ID != "inv-003" || !inv.Total.Equal(core.FromMinor(1050000)) || !inv.TaxRate.Equal(want.Invoices[2].TaxRate) {
		t.Fatalf("unexpected invoice %+v", inv)
	}
	if got.Projects[0].Budget == nil || got.Expenses[0].Tags[0] != "office" {
		t.Fatalf("optional fields lost: %+v %+v", got.Projects[0], got.Expenses[0])
	}

	only, err := repo.LoadSnapshot(ctx, ports.Filter{Kinds: []core.EntityKind{core.KindPayments}})
	if err != nil {
		t.Fatalf("filtered load: %v", err)
	}
	if len(only.Payments) == 0 || len(only.Invoices) != 0 {
		t.Fatalf("filter not applied")
	}
}

func TestUpdateNextBillingDate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	if err := repo.Import(ctx, seedSnapshot(t)); err != nil {
		t.Fatalf("import: %v", err)
	}
	next := core.NewDate(2026, 3, 31)
	if err := repo.UpdateNextBillingDate(ctx, "sub-002", next); err != nil {
		t.Fatalf("update: %v", err)
	}
	subs, err := repo.ListSubscriptions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, s := range subs {
		if s.ID == "sub-002" && !s.NextBillingDate.Equal(next) {
			t.Fatalf("next billing not stored: %s", s.NextBillingDate)
		}
	}
	if err := repo.UpdateNextBillingDate(ctx, "missing", next); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClosedRepositoryIsUnavailable(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.Ping(context.Background()); err != nil {
		t.Fatalf("ping open repository: %v", err)
	}
	repo.Close()
	if err := repo.Ping(context.Background()); !errors.Is(err, ports.ErrDataUnavailable) {
		t.Fatalf("expected data unavailable from ping, got %v", err)
	}
	if _, err := repo.LoadSnapshot(context.Background(), ports.Filter{}); !errors.Is(err, ports.ErrDataUnavailable) {
		t.Fatalf("expected data unavailable, got %v", err)
	}
	if _, err := repo.FetchOverview(context.Background(), core.MonthToDate(asOf), asOf); !errors.Is(err, ports.ErrDataUnavailable) {
		t.Fatalf("expected data unavailable, got %v", err)
	}
}
