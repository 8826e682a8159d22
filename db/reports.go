/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/humaidq/labwave/report"
)

// DefaultReportListLimit caps ListReports when no limit is given.
const DefaultReportListLimit = 50

// SaveReport stores a processed report.
func SaveReport(ctx context.Context, r *report.StoredReport) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	id, err := uuid.Parse(r.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidReportID, r.ID)
	}

	processed, err := json.Marshal(r.Processed)
	if err != nil {
		return fmt.Errorf("failed to encode processed report: %w", err)
	}

	reading := r.OverallHealthReading
	if reading == "" {
		reading = string(report.ReadingUnknown)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO lab_reports
			(id, user_id, report_type, file_name, file_digest, overall_health_reading, processed_at, processed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, id.String(), r.UserID, string(r.ReportType), r.FileName, r.FileDigest, reading, r.ProcessedAt, processed)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	logger.Debug("Stored report", "report_id", r.ID, "user_id", r.UserID, "type", r.ReportType)

	return nil
}

// GetReport returns a stored report with its processed payload.
func GetReport(ctx context.Context, id string) (*report.StoredReport, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidReportID
	}

	var (
		r         report.StoredReport
		mode      string
		processed []byte
	)

	err = pool.QueryRow(ctx, `
		SELECT id::text, user_id, report_type, file_name, file_digest, overall_health_reading, processed_at, processed
		FROM lab_reports
		WHERE id = $1
	`, parsed.String()).Scan(&r.ID, &r.UserID, &mode, &r.FileName, &r.FileDigest,
		&r.OverallHealthReading, &r.ProcessedAt, &processed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReportNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query report: %w", err)
	}

	r.ReportType = report.Mode(mode)

	var p report.Processed
	if err := json.Unmarshal(processed, &p); err != nil {
		return nil, fmt.Errorf("failed to decode processed report: %w", err)
	}

	r.Processed = &p

	return &r, nil
}

// ListReports returns the reports of a user, newest first, without their
// processed payloads.
func ListReports(ctx context.Context, userID string, limit int) ([]report.StoredReport, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	if limit <= 0 {
		limit = DefaultReportListLimit
	}

	rows, err := pool.Query(ctx, `
		SELECT id::text, user_id, report_type, file_name, file_digest, overall_health_reading, processed_at
		FROM lab_reports
		WHERE user_id = $1
		ORDER BY processed_at DESC, id
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	reports := []report.StoredReport{}

	for rows.Next() {
		var (
			r    report.StoredReport
			mode string
		)

		if err := rows.Scan(&r.ID, &r.UserID, &mode, &r.FileName, &r.FileDigest,
			&r.OverallHealthReading, &r.ProcessedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		r.ReportType = report.Mode(mode)
		reports = append(reports, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}

	return reports, nil
}

// ReportStore adapts the package functions to the pipeline store.
type ReportStore struct{}

// SaveReport stores r.
func (ReportStore) SaveReport(ctx context.Context, r *report.StoredReport) error {
	return SaveReport(ctx, r)
}
