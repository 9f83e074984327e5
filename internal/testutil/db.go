package testutil

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/udisondev/npcbrain/internal/db"
)

// EnvTestDSN points tests at an existing PostgreSQL instead of a container.
const EnvTestDSN = "NPCBRAIN_TEST_DSN"

// SetupTestDB возвращает мигрированный pool PostgreSQL.
// Берёт DSN из NPCBRAIN_TEST_DSN, иначе поднимает testcontainer.
// Пропускает тест, если docker недоступен.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	dsn := os.Getenv(EnvTestDSN)
	if dsn == "" {
		testcontainers.SkipIfProviderIsNotHealthy(t)

		container, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("testdb"),
			postgres.WithUsername("test"),
			postgres.WithPassword("test"),
			postgres.BasicWaitStrategies(),
		)
		if err != nil {
			t.Fatalf("starting postgres container: %v", err)
		}
		t.Cleanup(func() {
			if err := testcontainers.TerminateContainer(container); err != nil {
				t.Logf("terminating postgres container: %v", err)
			}
		})

		dsn, err = container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			t.Fatalf("getting connection string: %v", err)
		}
	}

	if err := db.RunMigrations(ctx, dsn); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connecting to test db: %v", err)
	}
	t.Cleanup(pool.Close)

	// Изоляция между тестами на общем DSN.
	if _, err := pool.Exec(ctx, "TRUNCATE spawns RESTART IDENTITY"); err != nil {
		t.Fatalf("truncating spawns: %v", err)
	}
	return pool
}

// SetupSQLite открывает мигрированную SQLite базу во временной директории теста.
func SetupSQLite(t testing.TB) *sql.DB {
	t.Helper()

	sqlDB, err := db.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "spawns.db"))
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB
}
