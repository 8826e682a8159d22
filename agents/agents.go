/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */

// Package agents holds the LLM steps that turn report text into analysis
// and audience-specific summaries.
package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/humaidq/labwave/llm"
	"github.com/humaidq/labwave/report"
)

// Sampling temperatures per step.
const (
	ExtractionTemperature = 0.1
	AnalysisTemperature   = 0.3
	PatientTemperature    = 0.4
	ClinicianTemperature  = 0.2
)

// Agent names recorded on generated summaries.
const (
	PatientAgentName   = "PatientExplainerAgent"
	ClinicianAgentName = "ClinicianSummaryAgent"
)

// Extract turns raw report text into structured lab values. Failure is
// fatal for the report.
func Extract(ctx context.Context, c llm.Completer, rawText string) (report.StructuredData, error) {
	var data report.StructuredData

	err := llm.CompleteJSON(ctx, c, llm.Request{
		System:      extractionPrompt,
		User:        "Extract this report:\n" + rawText,
		Temperature: ExtractionTemperature,
	}, &data)
	if err != nil {
		return report.StructuredData{}, fmt.Errorf("failed to extract structured data: %w", err)
	}

	return data, nil
}

// Analyze produces the medical analysis. On failure it returns a result with
// reading "Error" and the failure in the summary text.
func Analyze(ctx context.Context, c llm.Completer, data report.StructuredData) report.AnalysisResult {
	var result report.AnalysisResult

	err := llm.CompleteJSON(ctx, c, llm.Request{
		System: analysisPrompt,
		User: fmt.Sprintf("Analyze the following lab data and provide a comprehensive medical analysis: %s. "+
			"Provide your analysis in the JSON format specified.", indentJSON(data)),
		Temperature: AnalysisTemperature,
	}, &result)
	if err != nil {
		logger.Error("Analysis failed", "error", err)

		return report.AnalysisResult{
			HealthSummary: report.HealthSummary{
				OverallHealthReading: report.Text(report.ReadingError),
				SummaryText:          report.Text("Analysis failed: " + err.Error()),
			},
		}
	}

	return result
}

// ExplainForPatient writes the plain-language summary.
func ExplainForPatient(ctx context.Context, c llm.Completer, data report.StructuredData, analysis report.AnalysisResult, research report.ResearchFindings) report.PatientSummary {
	overall := analysis.HealthSummary.OverallHealthReading.Or(string(report.ReadingUnknown))
	abnormalities := analysis.DetailedAnalysis.Abnormalities

	var sb strings.Builder

	sb.WriteString("Patient's Lab Results:\n")
	sb.WriteString(indentJSON(data))
	sb.WriteString("\n\nMedical Analysis:\n")
	sb.WriteString(fmt.Sprintf("Overall Health: %s\n", overall))
	sb.WriteString(fmt.Sprintf("Abnormalities Found: %d\n\n", len(abnormalities)))
	sb.WriteString("Detailed Abnormalities:\n")
	sb.WriteString(indentJSON(abnormalities))
	sb.WriteString("\n\nMedical Research Context:\n")
	sb.WriteString(research.PatientExplainer)
	sb.WriteString("\n\nEvidence Sources:\n")
	sb.WriteString(indentJSON(research.EvidenceSources))
	sb.WriteString("\n\nTask: Create a patient-friendly summary that helps them understand their results without medical training.")

	var summary report.PatientSummary

	err := llm.CompleteJSON(ctx, c, llm.Request{
		System:      patientPrompt,
		User:        sb.String(),
		Temperature: PatientTemperature,
	}, &summary)
	if err != nil {
		logger.Error("Patient summary failed", "error", err)

		return report.PatientSummary{
			Error:                err.Error(),
			PlainLanguageSummary: "We encountered an error creating your personalized summary.",
			Disclaimer:           "This information is not a substitute for professional medical advice. Please consult your healthcare provider.",
			Agent:                PatientAgentName,
		}
	}

	summary.Agent = PatientAgentName
	summary.OverallHealthStatus = overall

	return summary
}

// SummarizeForClinician writes the clinician summary. The result always
// carries the research evidence sources.
func SummarizeForClinician(ctx context.Context, c llm.Completer, data report.StructuredData, analysis report.AnalysisResult, research report.ResearchFindings) report.ClinicianSummary {
	overall := analysis.HealthSummary.OverallHealthReading.Or(string(report.ReadingUnknown))
	abnormalities := analysis.DetailedAnalysis.Abnormalities

	var sb strings.Builder

	sb.WriteString("Lab Report Data:\n")
	sb.WriteString(indentJSON(data))
	sb.WriteString("\n\nMedical Analysis:\n")
	sb.WriteString(fmt.Sprintf("Overall Health Status: %s\n", overall))
	sb.WriteString(fmt.Sprintf("Abnormalities Detected: %d\n\n", len(abnormalities)))
	sb.WriteString("Detailed Abnormalities:\n")
	sb.WriteString(indentJSON(abnormalities))
	sb.WriteString("\n\nResearch Evidence:\n")
	sb.WriteString(research.ClinicianSummary)
	sb.WriteString("\n\nEvidence Sources:\n")
	sb.WriteString(indentJSON(research.EvidenceSources))
	sb.WriteString("\n\nTask: Create a professional clinical summary with marked abnormal values and evidence-based recommendations.")

	var summary report.ClinicianSummary

	err := llm.CompleteJSON(ctx, c, llm.Request{
		System:      clinicianPrompt,
		User:        sb.String(),
		Temperature: ClinicianTemperature,
	}, &summary)
	if err != nil {
		logger.Error("Clinician summary failed", "error", err)

		return report.ClinicianSummary{
			Error:           err.Error(),
			ClinicalContext: "Error generating summary",
			Recommendations: report.TextList{"Manual review required"},
			EvidenceSources: research.EvidenceSources,
			Agent:           ClinicianAgentName,
		}
	}

	summary.Agent = ClinicianAgentName
	summary.OverallHealthStatus = overall
	summary.EvidenceSources = research.EvidenceSources

	return summary
}

func indentJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}

	return string(b)
}
