/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/humaidq/labwave/db"
	"github.com/humaidq/labwave/rag"
)

var CmdRAG = &cli.Command{
	Name:  "rag",
	Usage: "Manage the medical reference library",
	Flags: append([]cli.Flag{databaseFlag()}, llmFlags()...),
	Commands: []*cli.Command{
		{
			Name:      "ingest",
			Usage:     "Replace the library with the chunks of a PDF or text file",
			ArgsUsage: "<file>",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "chunk-size",
					Value: rag.DefaultChunkSize,
					Usage: "words per chunk",
				},
				&cli.IntFlag{
					Name:  "chunk-overlap",
					Value: rag.DefaultChunkOverlap,
					Usage: "words shared by consecutive chunks",
				},
			},
			Action: ragIngest,
		},
		{
			Name:   "stats",
			Usage:  "Show the number of chunks per source",
			Action: ragStats,
		},
		{
			Name:      "query",
			Usage:     "Answer a question from the library",
			ArgsUsage: "<question>",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "top",
					Value: 3,
					Usage: "number of chunks to retrieve",
				},
			},
			Action: ragQuery,
		},
	},
}

// openLibrary connects to the database and loads the library from it.
func openLibrary(ctx context.Context, cmd *cli.Command) (*rag.Library, error) {
	url := cmd.String("database-url")
	if url == "" {
		return nil, errDatabaseURLRequired
	}

	if _, err := connectDatabase(ctx, url); err != nil {
		return nil, err
	}

	return newLibrary(ctx, cmd), nil
}

func ragIngest(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errFileArgRequired
	}

	library, err := openLibrary(ctx, cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := library.Ingest(ctx, path, int(cmd.Int("chunk-size")), int(cmd.Int("chunk-overlap")))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().Writer, "Ingested %d chunks from %s\n", n, path)

	return nil
}

func ragStats(ctx context.Context, cmd *cli.Command) error {
	library, err := openLibrary(ctx, cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	stats := library.Index().Stats()

	w := cmd.Root().Writer
	fmt.Fprintf(w, "Documents: %d\n", stats.Documents)

	sources := make([]string, 0, len(stats.Sources))
	for s := range stats.Sources {
		sources = append(sources, s)
	}

	sort.Strings(sources)

	for _, s := range sources {
		fmt.Fprintf(w, "  %s: %d\n", s, stats.Sources[s])
	}

	return nil
}

func ragQuery(ctx context.Context, cmd *cli.Command) error {
	question := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if question == "" {
		return errQuestionRequired
	}

	library, err := openLibrary(ctx, cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	answer, err := library.Query(ctx, question, int(cmd.Int("top")))
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	for _, r := range answer.Retrieved {
		fmt.Fprintf(w, "[%.3f] %s / %s\n", r.Score, r.Source, r.Title)
	}

	fmt.Fprintf(w, "\n%s\n", answer.Response)

	return nil
}
