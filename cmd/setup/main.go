// setup creates the WinLedger database if needed and applies the migrations.
// With -reset the database is dropped first.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"github.com/osse101/WinLedger_Go/internal/database"
	"github.com/osse101/WinLedger_Go/internal/logger"
)

const setupTimeout = 2 * time.Minute

func main() {
	reset := flag.Bool("reset", false, "Drop the database before creating it")
	flag.Parse()
	logger.InitLogger(logger.DefaultConfig())

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		log.Fatal("DB_NAME is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()

	// Databases are created and dropped from the maintenance database
	serverConn := fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable", user, password, host, port)
	if err := ensureDatabase(ctx, serverConn, dbName, *reset); err != nil {
		log.Fatal(err)
	}

	targetConn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, dbName)
	pool, err := database.NewPool(targetConn, 2, time.Minute, time.Hour)
	if err != nil {
		log.Fatalf("Unable to connect to %s database: %v", dbName, err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}
	log.Println("Migrations applied successfully.")
}

func ensureDatabase(ctx context.Context, connString, dbName string, reset bool) error {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return fmt.Errorf("unable to connect to postgres database: %w", err)
	}
	defer conn.Close(ctx)

	ident := pgx.Identifier{dbName}.Sanitize()

	if reset {
		log.Printf("Terminating existing connections to database %s...", dbName)
		if _, err := conn.Exec(ctx, `
			SELECT pg_terminate_backend(pid)
			FROM pg_stat_activity
			WHERE datname = $1 AND pid <> pg_backend_pid()`, dbName); err != nil {
			log.Printf("Warning: failed to terminate connections: %v", err)
		}
		if _, err := conn.Exec(ctx, "DROP DATABASE IF EXISTS "+ident); err != nil {
			return fmt.Errorf("failed to drop database: %w", err)
		}
		log.Printf("Database %s dropped.", dbName)
	}

	var exists bool
	err = conn.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", dbName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}
	if exists {
		log.Printf("Database %s already exists.", dbName)
		return nil
	}

	if _, err := conn.Exec(ctx, "CREATE DATABASE "+ident); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	log.Printf("Database %s created.", dbName)
	return nil
}
