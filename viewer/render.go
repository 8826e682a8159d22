/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package viewer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/humaidq/labwave/charts"
	"github.com/humaidq/labwave/report"
)

// Placeholder is shown for a metric without data.
const Placeholder = "--"

// MaxCharts is the number of charts drawn per mode.
const MaxCharts = 2

// Display fallbacks.
const (
	notProvided = "Not provided"
	noSummary   = "No summary available."
)

//go:embed fragments/*.html
var fragmentFS embed.FS

var fragments = template.Must(template.ParseFS(fragmentFS, "fragments/*.html"))

// Chart is a drawn chart instance.
type Chart struct {
	ID     string
	Title  string
	Sample bool
	HTML   template.HTML
}

// Metric is a headline number.
type Metric struct {
	Label string
	Value string
}

// Rendered is a report drawn for one mode.
type Rendered struct {
	Fragment template.HTML
	Charts   []Chart
	Metrics  []Metric
}

// Render draws a result: an HTML fragment, its charts and its metrics.
// Missing fields fall back to placeholders and sample chart data.
func Render(res report.Result) (*Rendered, error) {
	if !res.Valid() {
		return nil, ErrInvalidResult
	}

	var (
		name    string
		model   any
		specs   []charts.Spec
		metrics []Metric
	)

	switch res.Mode {
	case report.ModePatient:
		name = "patient.html"
		model = patientModel(res.Patient)
		specs = charts.PatientSpecs(res.Patient.ChartData)
		metrics = PatientMetrics(res.Patient)
	default:
		name = "clinic.html"
		model = clinicModel(res.Clinic)
		specs = charts.ClinicSpecs(res.Clinic.ChartData)
		metrics = ClinicMetrics(res.Clinic)
	}

	var buf bytes.Buffer
	if err := fragments.ExecuteTemplate(&buf, name, model); err != nil {
		return nil, fmt.Errorf("failed to render %s report: %w", res.Mode, err)
	}

	drawn, err := drawCharts(res.Mode, specs)
	if err != nil {
		return nil, err
	}

	return &Rendered{
		Fragment: template.HTML(buf.String()), //nolint:gosec // produced by html/template
		Charts:   drawn,
		Metrics:  metrics,
	}, nil
}

func drawCharts(mode report.Mode, specs []charts.Spec) ([]Chart, error) {
	specs = specs[:min(MaxCharts, len(specs))]

	out := make([]Chart, 0, len(specs))

	for i, spec := range specs {
		id := fmt.Sprintf("%s-chart-%d", mode, i+1)

		html, err := charts.Render(id, spec)
		if err != nil {
			return nil, err
		}

		out = append(out, Chart{
			ID:     id,
			Title:  spec.DisplayTitle(),
			Sample: spec.Sample,
			HTML:   template.HTML(html), //nolint:gosec // produced by go-echarts
		})
	}

	return out, nil
}

// PatientMetrics returns health score, abnormal count and test count.
func PatientMetrics(d *report.PatientData) []Metric {
	score := Placeholder
	if d != nil {
		if r := report.ParseReading(d.OverallHealth.String()); r != report.ReadingUnknown && r != report.ReadingError {
			score = strconv.Itoa(r.Score())
		}
	}

	abnormal, tests := Placeholder, Placeholder
	if d != nil {
		abnormal = count(d.Abnormalities != nil, len(d.Abnormalities))
		tests = count(d.TestResults != nil, len(d.TestResults))
	}

	return []Metric{
		{Label: "Health Score", Value: score},
		{Label: "Abnormal Results", Value: abnormal},
		{Label: "Tests", Value: tests},
	}
}

// ClinicMetrics returns critical, normal and test counts.
func ClinicMetrics(d *report.ClinicData) []Metric {
	critical, normal, tests := Placeholder, Placeholder, Placeholder
	if d != nil {
		critical = count(d.CriticalFindings != nil, len(d.CriticalFindings))
		normal = count(d.NormalFindings != nil, len(d.NormalFindings))
		tests = count(d.LabResults != nil, len(d.LabResults))
	}

	return []Metric{
		{Label: "Critical Findings", Value: critical},
		{Label: "Normal Findings", Value: normal},
		{Label: "Tests", Value: tests},
	}
}

// EmptyMetrics returns the metrics of a mode with every value cleared.
func EmptyMetrics(mode report.Mode) []Metric {
	if mode == report.ModePatient {
		return PatientMetrics(nil)
	}

	return ClinicMetrics(nil)
}

func count(present bool, n int) string {
	if !present {
		return Placeholder
	}

	return strconv.Itoa(n)
}

type patientInfo struct {
	Name string
	Age  string
	Sex  string
}

func infoOf(d report.Demographics) patientInfo {
	return patientInfo{
		Name: d.Name.Or(notProvided),
		Age:  d.Age.Or(notProvided),
		Sex:  d.Sex.Or(notProvided),
	}
}

type health struct {
	Label string
	Class string
}

func healthOf(t report.Text) health {
	r := report.ParseReading(t.String())
	if r == report.ReadingError {
		r = report.ReadingUnknown
	}

	return health{Label: string(r), Class: strings.ToLower(string(r))}
}

type abnormality struct {
	Test   string
	Value  string
	Detail string
}

func abnormalitiesOf(items []report.Abnormality) []abnormality {
	out := make([]abnormality, 0, len(items))
	for _, a := range items {
		out = append(out, abnormality{
			Test:   a.Test.Or("Unknown test"),
			Value:  strings.TrimSpace(a.Value.String() + " " + a.Unit.String()),
			Detail: a.Detail(),
		})
	}

	return out
}

type attention struct {
	Test        string
	YourResult  string
	Explanation string
	Meaning     string
	NextSteps   string
}

type patientView struct {
	Info               patientInfo
	Health             health
	Summary            string
	Explanation        string
	KeyFindings        []string
	Abnormalities      []abnormality
	NeedsAttention     []attention
	WhatIsNormal       []string
	Recommendations    []string
	QuestionsForDoctor []string
	Disclaimer         string
}

func patientModel(d *report.PatientData) patientView {
	v := patientView{
		Info:               infoOf(d.PatientInfo),
		Health:             healthOf(d.OverallHealth),
		Summary:            d.Summary.Or(noSummary),
		KeyFindings:        d.KeyFindings.Strings(),
		Abnormalities:      abnormalitiesOf(d.Abnormalities),
		WhatIsNormal:       d.WhatIsNormal.Strings(),
		Recommendations:    d.Recommendations.Strings(),
		QuestionsForDoctor: d.QuestionsForDoctor.Strings(),
		Disclaimer:         d.Disclaimer.String(),
	}

	// The explanation usually repeats the summary.
	if e := d.PatientExplanation.String(); e != v.Summary {
		v.Explanation = e
	}

	for _, a := range d.NeedsAttention {
		v.NeedsAttention = append(v.NeedsAttention, attention{
			Test:        a.Test.Or("Unknown test"),
			YourResult:  a.YourResult.String(),
			Explanation: a.PatientExplanation.String(),
			Meaning:     a.WhatItMeans.String(),
			NextSteps:   a.NextSteps.String(),
		})
	}

	return v
}

type labRow struct {
	Test  string
	Value string
	Unit  string
	Range string
	Flag  string
}

type criticalRow struct {
	Test         string
	Value        string
	Range        string
	Status       string
	Significance string
	Evidence     string
}

type clinicView struct {
	Info                       patientInfo
	Health                     health
	Summary                    string
	LabResults                 []labRow
	CriticalFindings           []criticalRow
	NormalFindings             []string
	DifferentialConsiderations []string
	Recommendations            []string
	ClinicalNotes              string
	EvidenceSources            []string
	Research                   template.HTML
}

func clinicModel(d *report.ClinicData) clinicView {
	v := clinicView{
		Info:                       infoOf(d.PatientInfo),
		Health:                     healthOf(d.OverallHealth),
		Summary:                    d.Summary.Or(noSummary),
		NormalFindings:             d.NormalFindings.Strings(),
		DifferentialConsiderations: d.DifferentialConsiderations.Strings(),
		Recommendations:            d.Recommendations.Strings(),
		ClinicalNotes:              d.ClinicalNotes.String(),
		EvidenceSources:            d.EvidenceSources.Strings(),
		Research:                   Markdown(d.ResearchReport.String()),
	}

	for _, r := range d.LabResults {
		v.LabResults = append(v.LabResults, labRow{
			Test:  r.Name(),
			Value: r.Value.Or(Placeholder),
			Unit:  r.Unit.String(),
			Range: orPlaceholder(r.Range()),
			Flag:  r.Flag.String(),
		})
	}

	for _, c := range d.CriticalFindings {
		v.CriticalFindings = append(v.CriticalFindings, criticalRow{
			Test:         c.Test.Or("Unknown test"),
			Value:        strings.TrimSpace(c.Value.String() + " " + c.Unit.String()),
			Range:        c.ReferenceRange.Or(Placeholder),
			Status:       c.Status.String(),
			Significance: c.ClinicalSignificance.String(),
			Evidence:     c.Evidence.String(),
		})
	}

	return v
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}

	return s
}

// Markdown converts a research report to HTML. Raw HTML in the source is
// dropped.
func Markdown(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.SkipHTML | mdhtml.HrefTargetBlank,
	})

	return template.HTML(markdown.ToHTML([]byte(src), p, r)) //nolint:gosec // raw HTML skipped
}
