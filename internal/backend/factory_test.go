package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accountant/internal/adapters"
	"accountant/internal/config"
	"accountant/internal/core"
	"accountant/internal/ports"
	"accountant/internal/storage"
)

var seedDir = filepath.Join("..", "..", "data")

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory records", Config{Type: MemoryBackend}, false},
		{"sqlite views", Config{Type: SQLiteBackend, Source: SourceViews, SQLiteDBPath: "x.db"}, false},
		{"unknown type", Config{Type: "sheets"}, true},
		{"unknown source", Config{Type: MemoryBackend, Source: "cubes"}, true},
		{"memory views", Config{Type: MemoryBackend, Source: SourceViews}, true},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{
		DataBackend: "sqlite", AggregationSource: "views", SQLiteDBPath: "a.db", SQLiteSeed: true, DataDir: "d",
	})
	require.NoError(t, err)
	assert.Equal(t, Config{Type: SQLiteBackend, Source: SourceViews, SQLiteDBPath: "a.db", Seed: true, DataDirectory: "d"}, cfg)
}

func TestGetBackendTypeStrings(t *testing.T) {
	assert.Equal(t, []string{"sqlite", "memory"}, GetBackendTypeStrings())
}

func TestCreateMemoryBackend(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: seedDir})
	require.NoError(t, err)
	defer res.Close()

	assert.IsType(t, &adapters.Records{}, res.Reader)
	assert.Nil(t, res.Ready)

	snap, err := res.Records.LoadSnapshot(context.Background(), ports.Filter{Kinds: []core.EntityKind{core.KindClients}})
	require.NoError(t, err)
	assert.NotEmpty(t, snap.Clients)

	subs, err := res.Subscriptions.ListSubscriptions(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, subs)
}

func TestCreateSQLiteBackend_SeedsOnce(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "accountant.db")
	cfg := Config{Type: SQLiteBackend, Source: SourceViews, SQLiteDBPath: dbPath, Seed: true, DataDirectory: seedDir}

	res, err := NewFactory(nil).CreateBackend(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &storage.SQLiteRepository{}, res.Reader)
	require.NotNil(t, res.Ready)
	require.NoError(t, res.Ready(ctx))

	subs, err := res.Subscriptions.ListSubscriptions(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, subs)
	moved := subs[0].NextBillingDate.AddDays(365)
	require.NoError(t, res.Subscriptions.UpdateNextBillingDate(ctx, subs[0].ID, moved))
	require.NoError(t, res.Close())

	// A second start must not overwrite the renewed date with the seed value.
	res, err = NewFactory(nil).CreateBackend(ctx, cfg)
	require.NoError(t, err)
	defer res.Close()

	subs2, err := res.Subscriptions.ListSubscriptions(ctx)
	require.NoError(t, err)
	for _, s := range subs2 {
		if s.ID == subs[0].ID {
			assert.Equal(t, moved.String(), s.NextBillingDate.String())
		}
	}

	_, err = res.Integrity.CheckIntegrity(ctx, core.NewDate(2026, 3, 20))
	require.NoError(t, err)
}

func TestCreateSQLiteBackend_EmptySeedDir(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "a.db"), Seed: true,
		DataDirectory: filepath.Join(t.TempDir(), "nothing-here"),
	})
	// Missing files leave the kinds empty; seeding an empty dataset is not an error.
	assert.NoError(t, err)
}
