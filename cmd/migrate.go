/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/pressly/goose/v3"
	"github.com/urfave/cli/v3"

	"github.com/humaidq/labwave/db"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const migrationsDir = "migrations"

var CmdMigrate = &cli.Command{
	Name:  "migrate",
	Usage: "Manage the report and reference library schema",
	Flags: []cli.Flag{databaseFlag()},
	Commands: []*cli.Command{
		{
			Name:   "up",
			Usage:  "Apply the pending schema changes",
			Action: withSchema(schemaUp),
		},
		{
			Name:   "down",
			Usage:  "Revert the newest schema change",
			Action: withSchema(schemaDown),
		},
		{
			Name:   "status",
			Usage:  "List every schema change and whether it is applied",
			Action: withSchema(schemaStatus),
		},
		{
			Name:   "version",
			Usage:  "Print the schema version of the database",
			Action: withSchema(schemaVersion),
		},
		{
			Name:      "create",
			Usage:     "Add an empty SQL schema change to the source tree",
			ArgsUsage: "<name>",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "dir",
					Value: "db/migrations",
					Usage: "directory of the SQL schema changes",
				},
			},
			Action: schemaCreate,
		},
	},
}

// withSchema opens the database of the command and points goose at the
// embedded schema changes before running action.
func withSchema(action func(context.Context, *cli.Command, *sql.DB) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		url := cmd.String("database-url")
		if url == "" {
			return errDatabaseURLRequired
		}

		conn, err := sql.Open("pgx", url)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer conn.Close()

		if err := conn.PingContext(ctx); err != nil {
			return fmt.Errorf("failed to reach database: %w", err)
		}

		goose.SetBaseFS(db.GetEmbeddedMigrations())

		if err := goose.SetDialect("postgres"); err != nil {
			return fmt.Errorf("failed to set dialect: %w", err)
		}

		return action(ctx, cmd, conn)
	}
}

func schemaUp(ctx context.Context, cmd *cli.Command, conn *sql.DB) error {
	if err := goose.UpContext(ctx, conn, migrationsDir); err != nil {
		return fmt.Errorf("failed to apply schema changes: %w", err)
	}

	return schemaVersion(ctx, cmd, conn)
}

func schemaDown(ctx context.Context, cmd *cli.Command, conn *sql.DB) error {
	if err := goose.DownContext(ctx, conn, migrationsDir); err != nil {
		return fmt.Errorf("failed to revert schema change: %w", err)
	}

	appLogger.Warn("Reverted the newest schema change, stored reports may be unreadable until it is reapplied")

	return schemaVersion(ctx, cmd, conn)
}

func schemaStatus(ctx context.Context, _ *cli.Command, conn *sql.DB) error {
	if err := goose.StatusContext(ctx, conn, migrationsDir); err != nil {
		return fmt.Errorf("failed to read schema status: %w", err)
	}

	return nil
}

func schemaVersion(ctx context.Context, cmd *cli.Command, conn *sql.DB) error {
	version, err := goose.GetDBVersionContext(ctx, conn)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	fmt.Fprintf(cmd.Root().Writer, "Schema version: %d\n", version)

	return nil
}

// schemaCreate writes to the source tree. The new file is embedded on the
// next build.
func schemaCreate(_ context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return errMigrationNameRequired
	}

	dir := cmd.String("dir")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	goose.SetBaseFS(nil)

	if err := goose.Create(nil, dir, name, "sql"); err != nil {
		return fmt.Errorf("failed to create schema change: %w", err)
	}

	appLogger.Info("Created schema change", "name", name, "dir", dir)

	return nil
}
