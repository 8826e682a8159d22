/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/humaidq/labwave/cmd"
	"github.com/humaidq/labwave/logging"
)

func main() {
	logging.Init()

	logger := logging.Logger(logging.SourceApp)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Failed to load .env file", "error", err)
	}

	app := &cli.Command{
		Name:  "labwave",
		Usage: "Labwave - Lab Report Analysis",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Sources: cli.EnvVars("LOG_LEVEL"),
				Value:   "info",
				Usage:   "minimum log level (debug, info, warn, error)",
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, logging.SetLevel(c.String("log-level"))
		},
		Commands: []*cli.Command{
			cmd.CmdStart,
			cmd.CmdMigrate,
			cmd.CmdUpload,
			cmd.CmdRAG,
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		logger.Error("Command failed", "error", err)
		stop()
		os.Exit(1)
	}
}
