/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package charts

import (
	"regexp"
	"strconv"

	"github.com/humaidq/labwave/report"
)

// Result counts taken into each chart.
const (
	patientLabLimit   = 6
	overviewLabLimit  = 8
	referenceLabLimit = 6
)

// Range statuses.
const (
	StatusLow    = "low"
	StatusNormal = "normal"
	StatusHigh   = "high"
)

var numberPattern = regexp.MustCompile(`[\d.]+`)

// RangeLookup returns a reference range text for a test when the report
// itself has none.
type RangeLookup func(testName, unit string, demo report.Demographics) (string, bool)

// StructurePatient builds the patient chart data from the extraction and
// analysis results.
func StructurePatient(data report.StructuredData, analysis report.AnalysisResult) report.PatientChartData {
	overall := analysis.HealthSummary.OverallHealthReading.Or(string(report.ReadingUnknown))
	score := report.ParseReading(overall).Score()

	return report.PatientChartData{
		HealthProgression: &report.HealthProgression{
			Labels: []string{"Previous", "Current", "Target"},
			Scores: []report.Number{
				report.Number(max(0, score-10)),
				report.Number(score),
				report.Number(min(100, score+15)),
			},
			HealthStatus: overall,
		},
		LabComparison: labPoints(data.LabResults, patientLabLimit),
		OverallHealth: overall,
		HealthScore:   score,
	}
}

// StructureClinic builds the clinic chart data. lookup may be nil.
func StructureClinic(data report.StructuredData, lookup RangeLookup) report.ClinicChartData {
	results := data.LabResults[:min(referenceLabLimit, len(data.LabResults))]

	reference := make([]report.ReferencePoint, 0, len(results))

	for _, r := range results {
		value := parseValue(r.Value)

		refRange := r.Range()
		if refRange == "" && lookup != nil {
			if found, ok := lookup(r.Name(), r.Unit.String(), data.PatientDemographics); ok {
				refRange = found
			}
		}

		refMin, refMax := ParseReferenceRange(refRange, value)

		reference = append(reference, report.ReferencePoint{
			TestName:       nameOrUnknown(r),
			Value:          report.Number(value),
			Unit:           r.Unit.String(),
			DisplayValue:   r.DisplayValue(),
			ReferenceRange: refRange,
			RefMin:         report.Number(refMin),
			RefMax:         report.Number(refMax),
			Status:         Status(value, refMin, refMax),
		})
	}

	return report.ClinicChartData{
		LabOverview:         labPoints(data.LabResults, overviewLabLimit),
		ReferenceComparison: reference,
	}
}

// ParseReferenceRange reads the bounds of a range such as "13.5-17.5 g/dL".
// Two or more numbers give the first two as bounds; a single number gives
// ±10% around it; otherwise the bounds are ±20% around value.
func ParseReferenceRange(refRange string, value float64) (float64, float64) {
	numbers := numberPattern.FindAllString(refRange, -1)

	switch {
	case len(numbers) >= 2:
		lo, errLo := strconv.ParseFloat(numbers[0], 64)
		hi, errHi := strconv.ParseFloat(numbers[1], 64)
		if errLo == nil && errHi == nil {
			return lo, hi
		}
	case len(numbers) == 1:
		if mid, err := strconv.ParseFloat(numbers[0], 64); err == nil {
			return mid * 0.9, mid * 1.1
		}
	}

	return value * 0.8, value * 1.2
}

// Status classifies value against the bounds.
func Status(value, refMin, refMax float64) string {
	switch {
	case value < refMin:
		return StatusLow
	case value > refMax:
		return StatusHigh
	default:
		return StatusNormal
	}
}

func labPoints(results []report.LabResult, limit int) []report.LabPoint {
	results = results[:min(limit, len(results))]

	points := make([]report.LabPoint, 0, len(results))
	for _, r := range results {
		points = append(points, report.LabPoint{
			TestName:     nameOrUnknown(r),
			Value:        report.Number(parseValue(r.Value)),
			Unit:         r.Unit.String(),
			DisplayValue: r.DisplayValue(),
		})
	}

	return points
}

func parseValue(t report.Text) float64 {
	v, _ := t.Float()
	return v
}

func nameOrUnknown(r report.LabResult) string {
	if name := r.Name(); name != "" {
		return name
	}

	return "Unknown"
}
