/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import "errors"

var (
	// ErrDatabaseURLNotSet is returned when no database URL was configured.
	ErrDatabaseURLNotSet = errors.New("database URL is not set")
	// ErrDatabaseNameNotSpecified is returned when the URL has no database name.
	ErrDatabaseNameNotSpecified = errors.New("database name not specified in database URL")
	// ErrDatabaseConnectionNotInitialized is returned when Init has not run.
	ErrDatabaseConnectionNotInitialized = errors.New("database connection not initialized")
	// ErrReportNotFound is returned when no stored report has the given id.
	ErrReportNotFound = errors.New("report not found")
	// ErrInvalidReportID is returned for ids that are not UUIDs.
	ErrInvalidReportID = errors.New("invalid report id")
)
