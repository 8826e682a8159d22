// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	testSchemaName  string
	testDatabaseURL string
)

// TestMain runs integration tests in a throwaway schema when DATABASE_URL
// is set. Without it only the unit tests run.
func TestMain(m *testing.M) {
	ctx := context.Background()

	baseDatabaseURL := os.Getenv("DATABASE_URL")
	if baseDatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is not set, skipping integration tests")
		os.Exit(m.Run())
	}

	if err := ensureDatabaseExists(ctx, baseDatabaseURL); err != nil {
		fmt.Fprintln(os.Stderr, "failed to ensure database exists:", err)
		os.Exit(1)
	}

	testSchemaName = fmt.Sprintf("test_%d_%d", time.Now().UnixNano(), os.Getpid())

	if err := execAdmin(ctx, baseDatabaseURL, "CREATE SCHEMA "+pgx.Identifier{testSchemaName}.Sanitize()); err != nil {
		fmt.Fprintln(os.Stderr, "failed to create test schema:", err)
		os.Exit(1)
	}

	searchPathURL, err := withSearchPath(baseDatabaseURL, testSchemaName)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build search_path url:", err)
		os.Exit(1)
	}

	testDatabaseURL = searchPathURL

	if err := initTestPool(ctx, baseDatabaseURL, testSchemaName); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init test pool:", err)
		os.Exit(1)
	}

	if err := SyncSchema(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "failed to sync schema:", err)
		os.Exit(1)
	}

	code := m.Run()

	Close()

	if err := execAdmin(ctx, baseDatabaseURL, "DROP SCHEMA "+pgx.Identifier{testSchemaName}.Sanitize()+" CASCADE"); err != nil {
		fmt.Fprintln(os.Stderr, "failed to drop test schema:", err)
	}

	os.Exit(code)
}

func initTestPool(ctx context.Context, baseURL string, schemaName string) error {
	config, err := pgxpool.ParseConfig(baseURL)
	if err != nil {
		return fmt.Errorf("failed to parse database url: %w", err)
	}

	if config.ConnConfig.RuntimeParams == nil {
		config.ConnConfig.RuntimeParams = map[string]string{}
	}

	config.ConnConfig.RuntimeParams["search_path"] = schemaName + ",public"

	config.MaxConns = 5
	config.MinConns = 1

	pool, err = pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create test pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	databaseURL = testDatabaseURL

	return nil
}

func withSearchPath(databaseURL string, schemaName string) (string, error) {
	parsed, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse database url: %w", err)
	}

	query := parsed.Query()
	query.Set("options", fmt.Sprintf("-c search_path=%s,public", schemaName))
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}

func execAdmin(ctx context.Context, databaseURL string, query string) error {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	defer func() {
		if err := conn.Close(ctx); err != nil {
			logger.Warn("Failed to close schema connection", "error", err)
		}
	}()

	if _, err := conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to run %q: %w", strings.Fields(query)[0], err)
	}

	return nil
}

// requireDatabase skips integration tests without a database and empties
// every table otherwise.
func requireDatabase(t *testing.T) {
	t.Helper()

	if testSchemaName == "" {
		t.Skip("DATABASE_URL is not set")
	}

	tables := pgx.Identifier{testSchemaName, "lab_reports"}.Sanitize() + ", " +
		pgx.Identifier{testSchemaName, "reference_chunks"}.Sanitize()

	if _, err := pool.Exec(context.Background(), "TRUNCATE "+tables); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}
