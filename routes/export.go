/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/humaidq/labwave/report"
)

const (
	labSheet     = "Lab Results"
	summarySheet = "Summary"
)

var labHeaders = []any{"Test", "Value", "Unit", "Reference Range", "Flag", "Status"}

// buildLabWorkbook exports the lab results of a stored report. Ranges
// filled in by the pipeline and their low/normal/high status are included
// where the report charted them.
func buildLabWorkbook(stored *report.StoredReport) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(labSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}

	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(labSheet, "A1", &labHeaders); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	if err := f.SetCellStyle(labSheet, "A1", "F1", headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	var p report.Processed
	if stored.Processed != nil {
		p = *stored.Processed
	}

	charted := make(map[string]report.ReferencePoint, len(p.ClinicCharts.ReferenceComparison))
	for _, point := range p.ClinicCharts.ReferenceComparison {
		charted[point.TestName] = point
	}

	for i, r := range p.StructuredData.LabResults {
		refRange, status := r.Range(), ""
		if point, ok := charted[r.Name()]; ok {
			refRange, status = point.ReferenceRange, point.Status
		}

		row := []any{r.Name(), r.Value.String(), r.Unit.String(), refRange, r.Flag.String(), status}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}

		if err := f.SetSheetRow(labSheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(labSheet, "A", "A", 32); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	if err := f.SetColWidth(labSheet, "B", "F", 16); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	if err := f.SetPanes(labSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	if err := writeSummarySheet(f, stored, &p); err != nil {
		f.Close()
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}

	return buf.Bytes(), nil
}

func writeSummarySheet(f *excelize.File, stored *report.StoredReport, p *report.Processed) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	demo := p.StructuredData.PatientDemographics
	rows := [][]any{
		{"Report ID", stored.ID},
		{"File", stored.FileName},
		{"Report Type", stored.ReportType.Label()},
		{"Processed At", stored.ProcessedAt.UTC().Format(time.RFC3339)},
		{"Patient", demo.Name.String()},
		{"Age", demo.Age.String()},
		{"Sex", demo.Sex.String()},
		{"Overall Health", p.HealthSummary.OverallHealthReading.Or(string(report.ReadingUnknown))},
		{"Summary", p.HealthSummary.SummaryText.String()},
	}

	for i, row := range rows {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	if err := f.SetColWidth(summarySheet, "A", "A", 18); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if err := f.SetColWidth(summarySheet, "B", "B", 80); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	return nil
}
