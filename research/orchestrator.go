/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */

// Package research gathers evidence for abnormal lab findings from
// MedlinePlus, PubMed and the local reference library, and has an LLM
// write it up for patients and clinicians.
package research

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/humaidq/labwave/llm"
	"github.com/humaidq/labwave/report"
)

// Sampling temperatures of the two LLM calls.
const (
	PlanTemperature      = 0
	SynthesisTemperature = 0.2
	maxPlanItems         = 2
)

// Lookup answers term and evidence queries.
type Lookup interface {
	Definition(ctx context.Context, term string) (Definition, error)
	Evidence(ctx context.Context, query string) ([]Article, error)
}

// ReferenceSource returns reference library passages for test names.
type ReferenceSource interface {
	ReferenceContext(ctx context.Context, testNames []string) ([]string, error)
}

// Input is what the orchestrator researches: the abnormal results only.
type Input struct {
	PatientDemographics report.Demographics `json:"patient_demographics"`
	LabResults          []InputResult       `json:"lab_results"`
}

// InputResult is one abnormal result to research.
type InputResult struct {
	Test  string `json:"test"`
	Value string `json:"value"`
	Unit  string `json:"unit"`
	Flag  string `json:"flag"`
}

// BuildInput collects the abnormalities of an analysis into research input.
func BuildInput(data report.StructuredData, analysis report.AnalysisResult) Input {
	demo := data.PatientDemographics
	if demo == (report.Demographics{}) {
		demo = report.Demographics{Name: "Patient", Age: "Unknown", Sex: "Unknown"}
	}

	input := Input{PatientDemographics: demo, LabResults: []InputResult{}}

	for _, a := range analysis.DetailedAnalysis.Abnormalities {
		input.LabResults = append(input.LabResults, InputResult{
			Test:  a.Test.Or("Unknown Test"),
			Value: a.Value.Or("N/A"),
			Unit:  a.Unit.String(),
			Flag:  a.Status.Or("Abnormal"),
		})
	}

	return input
}

type planItem struct {
	FindingName report.Text `json:"finding_name"`
	Value       report.Text `json:"value"`
	MedlineTerm report.Text `json:"medline_term"`
	PubMedQuery report.Text `json:"pubmed_query"`
}

type plan struct {
	CriticalItems []planItem `json:"critical_items"`
}

type evidencePacket struct {
	Finding            string     `json:"finding"`
	Value              string     `json:"value"`
	PatientDefinition  Definition `json:"patient_definition"`
	ClinicalGuidelines *Article   `json:"clinical_guidelines"`
}

// Orchestrator plans, looks up and synthesizes the research report.
type Orchestrator struct {
	llm    llm.Completer
	lookup Lookup
	refs   ReferenceSource
}

// NewOrchestrator creates an Orchestrator. refs may be nil.
func NewOrchestrator(c llm.Completer, lookup Lookup, refs ReferenceSource) *Orchestrator {
	return &Orchestrator{llm: c, lookup: lookup, refs: refs}
}

// Findings runs the research step of the pipeline. It never fails: without
// abnormalities research is skipped, and errors yield placeholder text.
func (o *Orchestrator) Findings(ctx context.Context, data report.StructuredData, analysis report.AnalysisResult) report.ResearchFindings {
	input := BuildInput(data, analysis)
	if len(input.LabResults) == 0 {
		logger.Info("No abnormalities to research")

		return report.ResearchFindings{
			PatientExplainer: "No significant abnormalities requiring research.",
			ClinicianSummary: "All values within normal ranges.",
			EvidenceSources:  []string{},
		}
	}

	full, err := o.Run(ctx, input)
	if err != nil {
		logger.Error("Research failed", "error", err)

		return report.ResearchFindings{
			Error:            err.Error(),
			PatientExplainer: "Research temporarily unavailable.",
			ClinicianSummary: "Unable to fetch clinical evidence.",
			EvidenceSources:  []string{},
		}
	}

	return report.ResearchFindings{
		FullReport:       full,
		PatientExplainer: ExtractSection(full, SectionPatientExplainer),
		ClinicianSummary: ExtractSection(full, SectionClinicianSummary),
		EvidenceSources:  ExtractCitations(full),
	}
}

// Run researches the input and returns the markdown report.
func (o *Orchestrator) Run(ctx context.Context, input Input) (string, error) {
	if o.lookup == nil {
		return "", ErrNoResearcher
	}

	var p plan

	err := llm.CompleteJSON(ctx, o.llm, llm.Request{
		System:      "You are a JSON-only response bot.",
		User:        buildPlanPrompt(input),
		Temperature: PlanTemperature,
	}, &p)
	if err != nil {
		return "", fmt.Errorf("failed to plan research: %w", err)
	}

	items := p.CriticalItems
	if len(items) > maxPlanItems {
		items = items[:maxPlanItems]
	}

	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.FindingName.String())
	}

	logger.Info("Research planned", "findings", strings.Join(names, ", "))

	evidence := o.gather(ctx, items)

	var refContext []string

	if o.refs != nil {
		tests := make([]string, 0, len(input.LabResults))
		for _, r := range input.LabResults {
			tests = append(tests, r.Test)
		}

		refContext, err = o.refs.ReferenceContext(ctx, tests)
		if err != nil {
			logger.Warn("Reference context unavailable", "error", err)
		}
	}

	full, err := o.llm.Complete(ctx, llm.Request{
		User:        buildSynthesisPrompt(input, evidence, refContext),
		Temperature: SynthesisTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to synthesize research: %w", err)
	}

	return full, nil
}

// gather looks up every planned item concurrently. Lookup failures are
// logged and leave that part of the packet empty.
func (o *Orchestrator) gather(ctx context.Context, items []planItem) []evidencePacket {
	packets := make([]evidencePacket, len(items))

	g, gctx := errgroup.WithContext(ctx)

	for i, item := range items {
		g.Go(func() error {
			packet := evidencePacket{
				Finding: item.FindingName.String(),
				Value:   item.Value.String(),
			}

			term := item.MedlineTerm.Or(packet.Finding)

			def, err := o.lookup.Definition(gctx, term)
			if err != nil {
				logger.Warn("MedlinePlus lookup failed", "term", term, "error", err)

				def = Definition{Title: term, Definition: "No official definition found."}
			}

			packet.PatientDefinition = def

			query := item.PubMedQuery.Or(packet.Finding)

			articles, err := o.lookup.Evidence(gctx, query)
			if err != nil {
				logger.Warn("PubMed lookup failed", "query", query, "error", err)
			}

			if len(articles) > 0 {
				packet.ClinicalGuidelines = &articles[0]
			}

			packets[i] = packet

			return nil
		})
	}

	_ = g.Wait()

	return packets
}

func buildPlanPrompt(input Input) string {
	return fmt.Sprintf(`You are a Clinical Research Assistant.
Here is the patient's lab extracted data:
%s

Identify the Top 1 or 2 most critical/abnormal findings.
For each finding, generate:
1. A 'medline_term' (Simple noun) to define it for the patient (e.g., "HbA1c").
2. A 'pubmed_query' (Complex string) to find the most relevant clinical evidence.
   - If it is a common disease (Diabetes, Lipids), search for "Management Guidelines".
   - If it is a detailed pattern (Low MCV + Normal Iron), search for "Differential Diagnosis".
   - If it is a drug/toxicity, search for "Adverse Effects" or "Interaction".

Return ONLY valid JSON like this:
{
    "critical_items": [
        {
            "finding_name": "HbA1c",
            "value": "6.5%%",
            "medline_term": "HbA1c test",
            "pubmed_query": "HbA1c 6.5 diabetes diagnosis standards of care"
        }
    ]
}`, toJSON(input, true))
}

func buildSynthesisPrompt(input Input, evidence []evidencePacket, refContext []string) string {
	reference := "No reference data available."
	if len(refContext) > 0 {
		reference = toJSON(refContext, true)
	}

	return fmt.Sprintf(`You are a Medical AI Assistant. Write a comprehensive report by combining authoritative medical reference data (RAG) and current clinical evidence (Internet).

PATIENT DATA: %s

VERIFIED INTERNET RESEARCH EVIDENCE:
%s

MEDICAL REFERENCE DATA (RAG):
%s

TASK:
Write a report with the following two sections, each under a markdown heading. Merge the reference knowledge (definitions, standard ranges) with the Internet evidence (recent guidelines, citations).

1. PATIENT EXPLAINER
- Simple language.
- Use the 'patient_definition' text exactly as provided.
- Include the MedlinePlus URL.

2. CLINICIAN SUMMARY
- Professional tone.
- Cite the 'clinical_guidelines' (Title + URL).
- Suggest management based on that evidence.`, toJSON(input, false), toJSON(evidence, true), reference)
}

func toJSON(v any, indent bool) string {
	var (
		b   []byte
		err error
	)

	if indent {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}

	if err != nil {
		return "{}"
	}

	return string(b)
}
