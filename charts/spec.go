/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */

// Package charts turns processed lab reports into chart data and draws the
// report charts with go-echarts.
package charts

import (
	"github.com/humaidq/labwave/report"
)

// Kind is the chart type.
type Kind string

// Chart kinds.
const (
	KindLine          Kind = "line"
	KindBar           Kind = "bar"
	KindHorizontalBar Kind = "horizontal-bar"
)

// Chart titles.
const (
	TitleHealthProgression   = "Health Progression"
	TitleLabValues           = "Lab Values"
	TitleLabOverview         = "Lab Overview"
	TitleReferenceComparison = "Reference Comparison"
)

// SampleLabel is appended to titles of charts drawn from canned data.
const SampleLabel = "Sample data"

// Series is one named set of values over the chart labels.
type Series struct {
	Name   string
	Values []float64
}

// Spec describes a chart independently of how it is drawn.
type Spec struct {
	Kind   Kind
	Title  string
	Labels []string
	Series []Series
	// Unit names the value axis.
	Unit string
	// Max caps the value axis when non-zero.
	Max    float64
	Sample bool
}

// DisplayTitle is the title with the sample marker when applicable.
func (s Spec) DisplayTitle() string {
	if s.Sample {
		return s.Title + " (" + SampleLabel + ")"
	}

	return s.Title
}

// PatientSpecs returns the health progression and lab value charts. Missing
// chart data is replaced by sample data.
func PatientSpecs(data *report.PatientChartData) []Spec {
	var (
		progression *report.HealthProgression
		labs        []report.LabPoint
	)

	if data != nil {
		progression = data.HealthProgression
		labs = data.LabComparison
	}

	return []Spec{
		progressionSpec(progression),
		labSpec(KindBar, TitleLabValues, labs),
	}
}

// ClinicSpecs returns the lab overview and reference comparison charts.
// Missing chart data is replaced by sample data.
func ClinicSpecs(data *report.ClinicChartData) []Spec {
	var (
		overview  []report.LabPoint
		reference []report.ReferencePoint
	)

	if data != nil {
		overview = data.LabOverview
		reference = data.ReferenceComparison
	}

	return []Spec{
		labSpec(KindBar, TitleLabOverview, overview),
		referenceSpec(reference),
	}
}

func progressionSpec(p *report.HealthProgression) Spec {
	spec := Spec{Kind: KindLine, Title: TitleHealthProgression, Unit: "Score", Max: 100}

	if p == nil || len(p.Labels) == 0 || len(p.Scores) == 0 {
		spec.Sample = true
		spec.Labels = []string{"Previous", "Current", "Target"}
		spec.Series = []Series{{Name: "Health Score", Values: []float64{65, 75, 90}}}

		return spec
	}

	n := min(len(p.Labels), len(p.Scores))

	values := make([]float64, n)
	for i := range values {
		values[i] = float64(p.Scores[i])
	}

	spec.Labels = append([]string(nil), p.Labels[:n]...)
	spec.Series = []Series{{Name: "Health Score", Values: values}}

	return spec
}

var sampleLabs = []report.LabPoint{
	{TestName: "Hemoglobin", Value: 14.2, Unit: "g/dL"},
	{TestName: "Glucose", Value: 95, Unit: "mg/dL"},
	{TestName: "Cholesterol", Value: 185, Unit: "mg/dL"},
	{TestName: "Creatinine", Value: 0.9, Unit: "mg/dL"},
}

func labSpec(kind Kind, title string, points []report.LabPoint) Spec {
	spec := Spec{Kind: kind, Title: title, Unit: "Value"}

	if len(points) == 0 {
		spec.Sample = true
		points = sampleLabs
	}

	spec.Labels = make([]string, len(points))
	values := make([]float64, len(points))

	for i, p := range points {
		spec.Labels[i] = p.TestName
		values[i] = float64(p.Value)
	}

	spec.Series = []Series{{Name: "Value", Values: values}}

	return spec
}

var sampleReference = []report.ReferencePoint{
	{TestName: "Hemoglobin", Value: 14.2, RefMin: 13.5, RefMax: 17.5},
	{TestName: "Glucose", Value: 110, RefMin: 70, RefMax: 99},
	{TestName: "Potassium", Value: 3.2, RefMin: 3.5, RefMax: 5.1},
}

func referenceSpec(points []report.ReferencePoint) Spec {
	spec := Spec{Kind: KindHorizontalBar, Title: TitleReferenceComparison, Unit: "Value"}

	if len(points) == 0 {
		spec.Sample = true
		points = sampleReference
	}

	spec.Labels = make([]string, len(points))
	values := make([]float64, len(points))
	mins := make([]float64, len(points))
	maxes := make([]float64, len(points))

	for i, p := range points {
		spec.Labels[i] = p.TestName
		values[i] = float64(p.Value)
		mins[i] = float64(p.RefMin)
		maxes[i] = float64(p.RefMax)
	}

	spec.Series = []Series{
		{Name: "Value", Values: values},
		{Name: "Reference Min", Values: mins},
		{Name: "Reference Max", Values: maxes},
	}

	return spec
}
