/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */

// Package pipeline processes an uploaded lab report from file to formatted
// result: text extraction, structured extraction, analysis, research,
// audience summaries and chart data.
package pipeline

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"

	"github.com/humaidq/labwave/agents"
	"github.com/humaidq/labwave/charts"
	"github.com/humaidq/labwave/extract"
	"github.com/humaidq/labwave/llm"
	"github.com/humaidq/labwave/report"
)

// Completers holds the LLM used by each step. Steps may share a client.
type Completers struct {
	Extraction llm.Completer
	Analysis   llm.Completer
	Patient    llm.Completer
	Clinician  llm.Completer
}

// Researcher runs the research step. It reports failures through the
// returned findings.
type Researcher interface {
	Findings(ctx context.Context, data report.StructuredData, analysis report.AnalysisResult) report.ResearchFindings
}

// Store persists processed reports.
type Store interface {
	SaveReport(ctx context.Context, r *report.StoredReport) error
}

// StoreFunc adapts a function to Store.
type StoreFunc func(ctx context.Context, r *report.StoredReport) error

// SaveReport implements Store.
func (f StoreFunc) SaveReport(ctx context.Context, r *report.StoredReport) error {
	return f(ctx, r)
}

// Options configures a Processor.
type Options struct {
	LLM      Completers
	Research Researcher
	// Store is optional; without it reports are not persisted.
	Store Store
	// Ranges is optional; it fills reference ranges missing from a report.
	Ranges charts.RangeLookup
	// ReadText overrides text extraction. It defaults to extract.Read.
	ReadText func(ctx context.Context, name string, data []byte) (string, error)
	// Now overrides the clock. It defaults to time.Now.
	Now func() time.Time
}

// Processor runs the report pipeline. It is safe for concurrent use.
type Processor struct {
	llm      Completers
	research Researcher
	store    Store
	ranges   charts.RangeLookup
	readText func(ctx context.Context, name string, data []byte) (string, error)
	now      func() time.Time
}

// New creates a Processor.
func New(opts Options) (*Processor, error) {
	c := opts.LLM
	if c.Extraction == nil || c.Analysis == nil || c.Patient == nil || c.Clinician == nil {
		return nil, ErrMissingCompleter
	}

	if opts.Research == nil {
		return nil, ErrMissingResearcher
	}

	p := &Processor{
		llm:      c,
		research: opts.Research,
		store:    opts.Store,
		ranges:   opts.Ranges,
		readText: opts.ReadText,
		now:      opts.Now,
	}

	if p.readText == nil {
		p.readText = extract.Read
	}

	if p.now == nil {
		p.now = time.Now
	}

	return p, nil
}

// StorageEnabled reports whether processed reports are persisted.
func (p *Processor) StorageEnabled() bool {
	return p.store != nil
}

// Upload is a report file submitted for processing.
type Upload struct {
	UserID   string
	Mode     report.Mode
	FileName string
	Data     []byte
}

// Result is the outcome of processing an upload. ReportID is empty when the
// report was not stored.
type Result struct {
	ReportID    string
	ProcessedAt time.Time
	Processed   *report.Processed
}

// Response formats the result for the upload's mode.
func (r *Result) Response(mode report.Mode) report.UploadResponse {
	return report.FormatResponse(r.Processed, mode, r.ReportID, r.ProcessedAt)
}

// Process runs every step on an upload. Only text and structured extraction
// failures are returned; later steps fall back to placeholder results, and
// storage failures are logged.
func (p *Processor) Process(ctx context.Context, up Upload) (*Result, error) {
	start := p.now()

	logger.Info("Processing report", "file", up.FileName, "mode", up.Mode, "user", up.UserID)

	text, err := p.readText(ctx, up.FileName, up.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	processed, err := p.ProcessText(ctx, text)
	if err != nil {
		return nil, err
	}

	result := &Result{ProcessedAt: p.now(), Processed: processed}

	if p.store != nil {
		stored := &report.StoredReport{
			ID:                   uuid.NewString(),
			UserID:               up.UserID,
			ReportType:           up.Mode,
			FileName:             up.FileName,
			FileDigest:           Digest(up.Data),
			OverallHealthReading: processed.HealthSummary.OverallHealthReading.Or(string(report.ReadingUnknown)),
			ProcessedAt:          result.ProcessedAt,
			Processed:            processed,
		}

		if err := p.store.SaveReport(ctx, stored); err != nil {
			logger.Error("Failed to store report", "file", up.FileName, "error", err)
		} else {
			result.ReportID = stored.ID
		}
	}

	logger.Info("Report processed",
		"file", up.FileName,
		"reading", processed.HealthSummary.OverallHealthReading.String(),
		"results", len(processed.StructuredData.LabResults),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return result, nil
}

// ProcessText runs the LLM steps on already extracted report text.
func (p *Processor) ProcessText(ctx context.Context, text string) (*report.Processed, error) {
	data, err := agents.Extract(ctx, p.llm.Extraction, text)
	if err != nil {
		return nil, err
	}

	analysis := agents.Analyze(ctx, p.llm.Analysis, data)
	findings := p.research.Findings(ctx, data, analysis)

	var (
		patient   report.PatientSummary
		clinician report.ClinicianSummary
	)

	// The summaries fall back on failure, so the group never errors.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		patient = agents.ExplainForPatient(gctx, p.llm.Patient, data, analysis, findings)
		return nil
	})

	g.Go(func() error {
		clinician = agents.SummarizeForClinician(gctx, p.llm.Clinician, data, analysis, findings)
		return nil
	})

	_ = g.Wait()

	return &report.Processed{
		RawText:          text,
		StructuredData:   data,
		HealthSummary:    analysis.HealthSummary,
		DetailedAnalysis: analysis.DetailedAnalysis,
		ResearchFindings: findings,
		PatientSummary:   patient,
		ClinicianSummary: clinician,
		PatientCharts:    charts.StructurePatient(data, analysis),
		ClinicCharts:     charts.StructureClinic(data, p.ranges),
	}, nil
}

// Digest returns the hex BLAKE2b-256 digest of an uploaded file.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
