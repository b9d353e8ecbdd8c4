//go:build integration

// Package integration runs the ledger services against a real PostgreSQL
// started with testcontainers and migrated with the embedded SQL migrations.
package integration

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/erp/retail/internal/infrastructure/config"
	"github.com/erp/retail/internal/infrastructure/migration"
	"github.com/erp/retail/internal/infrastructure/persistence"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
)

// TestDB is a migrated PostgreSQL database in its own container
type TestDB struct {
	DB  *persistence.Database
	DSN string
}

// NewTestDB starts a PostgreSQL container, applies every migration and opens
// it with the production options. The container is terminated on cleanup.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("retail_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	Migrate(t, dsn)

	db, err := persistence.Open(gormpostgres.Open(dsn), &config.DatabaseConfig{
		Driver:          config.DriverPostgres,
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5,
	}, persistence.Options{
		Logger:        zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel)),
		RequireTenant: true,
	})
	require.NoError(t, err, "Failed to open database")
	t.Cleanup(func() { _ = db.Close() })

	return &TestDB{DB: db, DSN: dsn}
}

// Migrate applies the embedded migrations over a connection of its own,
// which the migrator closes
func Migrate(t *testing.T, dsn string) {
	t.Helper()
	m := newMigrator(t, dsn)
	defer m.Close()
	require.NoError(t, m.Up(), "Failed to run migrations")
}

func newMigrator(t *testing.T, dsn string) *migration.Migrator {
	t.Helper()
	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	m, err := migration.New(sqlDB, zap.NewNop())
	require.NoError(t, err, "Failed to create migrator")
	return m
}
