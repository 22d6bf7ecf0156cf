package postgres

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/WinLedger_Go/internal/database"
	"github.com/osse101/WinLedger_Go/internal/testing/pgtest"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	flag.Parse()

	var db *pgtest.Database
	if !testing.Short() {
		db = pgtest.Start(context.Background())
	}
	if db != nil {
		testPool = openMigrated(db.ConnString)
	}

	code := m.Run()

	if testPool != nil {
		testPool.Close()
	}
	db.Close()
	os.Exit(code)
}

func openMigrated(dsn string) *pgxpool.Pool {
	pool, err := database.NewPool(dsn, 10, time.Minute, 5*time.Minute)
	if err != nil {
		fmt.Printf("WARNING: Failed to connect to test database: %v\n", err)
		return nil
	}
	if err := database.Migrate(context.Background(), pool); err != nil {
		fmt.Printf("WARNING: Failed to apply migrations: %v\n", err)
		pool.Close()
		return nil
	}
	return pool
}

// setupTestDB skips the test without a database and truncates every table
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if testPool == nil {
		t.Skip("Skipping integration test: database not available")
	}

	_, err := testPool.Exec(context.Background(),
		`TRUNCATE cumulative_counters, daily_counters, guild_configs, audit_log RESTART IDENTITY`)
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
	return testPool
}

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad day %q: %v", s, err)
	}
	return d
}
