// Package pgtest starts a throwaway PostgreSQL for integration tests.
package pgtest

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	Image          = "postgres:15-alpine"
	StartupTimeout = 30 * time.Second

	// EnvConnString points the tests at an existing database instead of a container
	EnvConnString = "WINLEDGER_TEST_DATABASE_URL"
)

// Database is a running test database. Close is always safe to call.
type Database struct {
	ConnString string
	container  *postgres.PostgresContainer
}

// Start returns a database for the package's tests, or nil when neither
// EnvConnString nor a Docker daemon is available. Callers skip on nil.
func Start(ctx context.Context) (db *Database) {
	if dsn := os.Getenv(EnvConnString); dsn != "" {
		return &Database{ConnString: dsn}
	}

	// testcontainers panics when no Docker daemon is reachable
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "pgtest: docker unavailable: %v\n", r)
			db = nil
		}
	}()

	c, err := postgres.Run(ctx, Image,
		postgres.WithDatabase("winledger_test"),
		postgres.WithUsername("winledger"),
		postgres.WithPassword("winledger"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(StartupTimeout)),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pgtest: start container: %v\n", err)
		return nil
	}

	dsn, err := c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Fprintf(os.Stderr, "pgtest: connection string: %v\n", err)
		_ = c.Terminate(ctx)
		return nil
	}
	return &Database{ConnString: dsn, container: c}
}

func (d *Database) Close() {
	if d == nil || d.container == nil {
		return
	}
	if err := d.container.Terminate(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "pgtest: terminate container: %v\n", err)
	}
}
