/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */

// Package routes serves the upload API, the report viewer pages and stored
// report exports.
package routes

import (
	"context"

	"github.com/humaidq/labwave/db"
	"github.com/humaidq/labwave/pipeline"
	"github.com/humaidq/labwave/viewer"
)

// Processor runs the report pipeline on an upload.
type Processor interface {
	Process(ctx context.Context, up pipeline.Upload) (*pipeline.Result, error)
}

// Services are the dependencies of the handlers. They are mapped into the
// flamego injector once at startup.
type Services struct {
	// Processor is nil when the pipeline could not be configured.
	Processor Processor
	Viewers   *viewer.Registry
	// Submitter returns the upload client of a viewer session.
	Submitter func(userID string) viewer.Submitter
	// PublicURL prefixes links encoded in QR codes. When empty the request
	// host is used.
	PublicURL string
}

// Storage functions, replaced in tests.
var (
	getReportFn   = db.GetReport
	listReportsFn = db.ListReports
	dbConnectedFn = db.Connected
)
