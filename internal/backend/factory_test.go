package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"moneytracker/internal/config"
	"moneytracker/internal/core"
)

func TestBackendType_IsValid(t *testing.T) {
	for _, bt := range BackendTypes() {
		if !bt.IsValid() {
			t.Errorf("%s should be valid", bt)
		}
	}
	if BackendType("sheets").IsValid() {
		t.Error("sheets should not be valid")
	}
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	require.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "mongo"})
	require.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{DataBackend: "postgres", DatabaseURL: "postgres://x/y"})
	require.NoError(t, err)
	require.Equal(t, PostgresBackend, cfg.Type)
	require.Equal(t, "postgres://x/y", cfg.DatabaseURL)
	require.Equal(t, defaultCacheSize, cfg.CacheSize)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"postgres without url", Config{Type: PostgresBackend}, true},
		{"unknown", Config{Type: "csv"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateBackend(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"memory", Config{Type: MemoryBackend}},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "money.db")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			res, err := NewFactory(nil).CreateBackend(ctx, tt.config)
			require.NoError(t, err)
			t.Cleanup(func() { require.NoError(t, res.Cleanup()) })

			require.NoError(t, res.Ping(ctx))
			require.NotNil(t, res.Stats)

			_, err = res.Service.Create(ctx, core.TransactionDraft{
				Title:    "Sueldo",
				Amount:   decimal.NewFromInt(1000),
				Type:     core.Income,
				Category: "salary",
				Date:     core.NewDate(2024, 1, 1),
			})
			require.NoError(t, err)

			stats, err := res.Service.MonthlyStats(ctx)
			require.NoError(t, err)
			require.Len(t, stats, 1)
		})
	}
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend})
	require.Error(t, err)
}
