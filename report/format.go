/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package report

import (
	"fmt"
	"strings"
	"time"
)

// PatientData is the patient-mode view of a processed report.
type PatientData struct {
	PatientInfo        Demographics      `json:"patientInfo"`
	Summary            Text              `json:"summary"`
	OverallHealth      Text              `json:"overallHealth"`
	KeyFindings        TextList          `json:"keyFindings"`
	Abnormalities      []Abnormality     `json:"abnormalities"`
	Recommendations    TextList          `json:"recommendations"`
	TestResults        []LabResult       `json:"testResults"`
	PatientExplanation Text              `json:"patientExplanation"`
	NeedsAttention     []AttentionItem   `json:"needsAttention"`
	WhatIsNormal       TextList          `json:"whatIsNormal"`
	QuestionsForDoctor TextList          `json:"questionsForDoctor"`
	Disclaimer         Text              `json:"disclaimer"`
	ChartData          *PatientChartData `json:"chartData,omitempty"`
}

// ClinicData is the clinic-mode view of a processed report.
type ClinicData struct {
	PatientInfo                Demographics      `json:"patientInfo"`
	LabResults                 []LabResult       `json:"labResults"`
	Summary                    Text              `json:"summary"`
	OverallHealth              Text              `json:"overallHealth"`
	Abnormalities              []Abnormality     `json:"abnormalities"`
	Recommendations            TextList          `json:"recommendations"`
	ClinicalNotes              Text              `json:"clinicalNotes"`
	EvidenceSources            TextList          `json:"evidenceSources"`
	ClinicianSummary           Text              `json:"clinicianSummary"`
	CriticalFindings           []CriticalFinding `json:"criticalFindings"`
	NormalFindings             TextList          `json:"normalFindings"`
	DifferentialConsiderations TextList          `json:"differentialConsiderations"`
	ResearchReport             Text              `json:"researchReport,omitempty"`
	ChartData                  *ClinicChartData  `json:"chartData,omitempty"`
}

// UploadResponse is the body of a successful upload.
type UploadResponse struct {
	ReportID    *string      `json:"reportId"`
	ReportType  Mode         `json:"reportType"`
	Timestamp   string       `json:"timestamp"`
	PatientData *PatientData `json:"patientData,omitempty"`
	ClinicData  *ClinicData  `json:"clinicData,omitempty"`
}

// ErrorResponse is the body of a failed API call.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// FormatResponse shapes a processed report for the requested mode. reportID
// is empty when the report was not stored.
func FormatResponse(p *Processed, mode Mode, reportID string, now time.Time) UploadResponse {
	resp := UploadResponse{
		ReportType: mode,
		Timestamp:  now.UTC().Format(time.RFC3339),
	}
	if reportID != "" {
		resp.ReportID = &reportID
	}

	if mode == ModePatient {
		data := FormatPatient(p)
		resp.PatientData = &data
	} else {
		data := FormatClinic(p)
		resp.ClinicData = &data
	}

	return resp
}

// FormatPatient builds the patient view.
func FormatPatient(p *Processed) PatientData {
	plain := p.PatientSummary.PlainLanguageSummary

	summary := plain
	if summary.String() == "" {
		summary = p.HealthSummary.SummaryText
	}

	explanation := plain
	if explanation.String() == "" {
		explanation = Text(p.ResearchFindings.PatientExplainer)
	}

	charts := p.PatientCharts

	return PatientData{
		PatientInfo:        p.StructuredData.PatientDemographics,
		Summary:            summary,
		OverallHealth:      Text(p.HealthSummary.OverallHealthReading.Or(string(ReadingUnknown))),
		KeyFindings:        p.HealthSummary.KeyFindings,
		Abnormalities:      p.DetailedAnalysis.Abnormalities,
		Recommendations:    p.DetailedAnalysis.LifestyleRecommendations,
		TestResults:        p.StructuredData.LabResults,
		PatientExplanation: explanation,
		NeedsAttention:     p.PatientSummary.NeedsAttention,
		WhatIsNormal:       p.PatientSummary.WhatIsNormal,
		QuestionsForDoctor: p.PatientSummary.QuestionsForDoctor,
		Disclaimer:         p.PatientSummary.Disclaimer,
		ChartData:          &charts,
	}
}

// FormatClinic builds the clinic view.
func FormatClinic(p *Processed) ClinicData {
	cs := p.ClinicianSummary

	summary := cs.ClinicalContext
	if summary.String() == "" {
		summary = p.HealthSummary.SummaryText
	}

	recommendations := cs.Recommendations
	if len(recommendations) == 0 {
		recommendations = p.DetailedAnalysis.LifestyleRecommendations
	}

	sources := cs.EvidenceSources
	if len(sources) == 0 {
		sources = p.ResearchFindings.EvidenceSources
	}

	evidence := make(TextList, 0, len(sources))
	for _, src := range sources {
		evidence = append(evidence, Text(src))
	}

	charts := p.ClinicCharts

	return ClinicData{
		PatientInfo:                p.StructuredData.PatientDemographics,
		LabResults:                 p.StructuredData.LabResults,
		Summary:                    summary,
		OverallHealth:              Text(p.HealthSummary.OverallHealthReading.Or(string(ReadingUnknown))),
		Abnormalities:              p.DetailedAnalysis.Abnormalities,
		Recommendations:            recommendations,
		ClinicalNotes:              Text(ClinicalNotes(p)),
		EvidenceSources:            evidence,
		ClinicianSummary:           Text(p.ResearchFindings.ClinicianSummary),
		CriticalFindings:           cs.CriticalFindings,
		NormalFindings:             cs.NormalFindings,
		DifferentialConsiderations: cs.DifferentialConsiderations,
		ResearchReport:             Text(p.ResearchFindings.FullReport),
		ChartData:                  &charts,
	}
}

// ClinicalNotes assembles the clinic notes from the clinician summary,
// falling back to the research summary and then the analysis summary.
func ClinicalNotes(p *Processed) string {
	cs := p.ClinicianSummary

	var parts []string

	if ctx := cs.ClinicalContext.String(); ctx != "" {
		parts = append(parts, "Clinical Context: "+ctx)
	}

	if n := len(cs.CriticalFindings); n > 0 {
		parts = append(parts, fmt.Sprintf("\nCritical Findings: %d abnormal value(s) detected", n))
	}

	if diff := cs.DifferentialConsiderations.Strings(); len(diff) > 0 {
		parts = append(parts, "\nDifferential Considerations: "+strings.Join(diff, ", "))
	}

	if recs := cs.Recommendations.Strings(); len(recs) > 0 {
		parts = append(parts, "\nRecommendations: "+strings.Join(recs, "; "))
	}

	if len(parts) > 0 {
		return strings.Join(parts, "\n")
	}

	if s := strings.TrimSpace(p.ResearchFindings.ClinicianSummary); s != "" {
		return s
	}

	return p.HealthSummary.SummaryText.Or("No clinical notes available")
}
