/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/humaidq/labwave/rag"
)

// ChunkStore persists the reference library.
type ChunkStore struct{}

// ReplaceReferenceChunks swaps the stored library for docs in one
// transaction.
func (ChunkStore) ReplaceReferenceChunks(ctx context.Context, docs []rag.Document) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Warn("Failed to roll back chunk transaction", "error", err)
		}
	}()

	if _, err := tx.Exec(ctx, "DELETE FROM reference_chunks"); err != nil {
		return fmt.Errorf("failed to clear reference chunks: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"reference_chunks"},
		[]string{"id", "title", "source", "content"},
		pgx.CopyFromSlice(len(docs), func(i int) ([]any, error) {
			d := docs[i]
			return []any{d.ID, d.Title, d.Source, d.Content}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to copy reference chunks: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reference chunks: %w", err)
	}

	return nil
}

// ListReferenceChunks returns the stored library in id order.
func (ChunkStore) ListReferenceChunks(ctx context.Context) ([]rag.Document, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	rows, err := pool.Query(ctx, "SELECT id, title, source, content FROM reference_chunks ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query reference chunks: %w", err)
	}

	docs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (rag.Document, error) {
		var d rag.Document
		err := row.Scan(&d.ID, &d.Title, &d.Source, &d.Content)

		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan reference chunks: %w", err)
	}

	return docs, nil
}
