/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package report

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Mode selects the audience a report is formatted for.
type Mode string

// Supported report modes.
const (
	ModePatient Mode = "patient"
	ModeClinic  Mode = "clinic"
)

// DefaultMode is used when no report type is submitted at all.
const DefaultMode = ModePatient

// ParseMode maps a submitted report type to a mode. Only "patient" selects
// the patient view; anything else, including an empty value, is clinic.
func ParseMode(s string) Mode {
	if strings.TrimSpace(s) == string(ModePatient) {
		return ModePatient
	}

	return ModeClinic
}

// Label returns a human-readable label for a mode.
func (m Mode) Label() string {
	if m == ModeClinic {
		return "Clinic"
	}

	return "Patient"
}

// HealthReading is the overall classification produced by the analysis.
type HealthReading string

// HealthReading values. ReadingError marks a failed analysis.
const (
	ReadingExcellent HealthReading = "Excellent"
	ReadingGood      HealthReading = "Good"
	ReadingModerate  HealthReading = "Moderate"
	ReadingDanger    HealthReading = "Danger"
	ReadingUnknown   HealthReading = "Unknown"
	ReadingError     HealthReading = "Error"
)

// ParseReading normalizes free text into a HealthReading.
func ParseReading(s string) HealthReading {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "excellent":
		return ReadingExcellent
	case "good":
		return ReadingGood
	case "moderate":
		return ReadingModerate
	case "danger":
		return ReadingDanger
	case "error":
		return ReadingError
	default:
		return ReadingUnknown
	}
}

// Score maps a reading onto the 0-100 scale used by the health charts.
func (r HealthReading) Score() int {
	switch r {
	case ReadingExcellent:
		return 100
	case ReadingGood:
		return 75
	case ReadingModerate:
		return 50
	case ReadingDanger:
		return 25
	default:
		return 0
	}
}

// Number is a float that also decodes from numeric strings. Anything that is
// not a number decodes to zero.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	var t Text
	if err := t.UnmarshalJSON(data); err != nil {
		return err
	}

	v, err := strconv.ParseFloat(t.String(), 64)
	if err != nil {
		*n = 0
		return nil
	}

	*n = Number(v)

	return nil
}

// Demographics identifies the patient on a report.
type Demographics struct {
	Name Text `json:"name"`
	Age  Text `json:"age"`
	Sex  Text `json:"sex"`
}

// LabResult is a single extracted test value.
type LabResult struct {
	TestName       Text `json:"test_name"`
	Test           Text `json:"test,omitempty"`
	Value          Text `json:"value"`
	Unit           Text `json:"unit"`
	RefRange       Text `json:"ref_range"`
	ReferenceRange Text `json:"reference_range,omitempty"`
	Flag           Text `json:"flag,omitempty"`
}

// Name returns the test name, whichever key the extractor used.
func (r LabResult) Name() string {
	if s := r.TestName.String(); s != "" {
		return s
	}

	return r.Test.String()
}

// Range returns the reference range text, whichever key the extractor used.
func (r LabResult) Range() string {
	if s := r.ReferenceRange.String(); s != "" {
		return s
	}

	return r.RefRange.String()
}

// DisplayValue joins the raw value and unit.
func (r LabResult) DisplayValue() string {
	return strings.TrimSpace(r.Value.String() + " " + r.Unit.String())
}

// StructuredData is the output of the extraction step.
type StructuredData struct {
	PatientDemographics Demographics `json:"patient_demographics"`
	LabResults          []LabResult  `json:"lab_results"`
}

// UnmarshalJSON accepts the canonical shape as well as the looser shapes the
// extraction model sometimes returns: a different key for the results array,
// or an object keyed by test name.
func (s *StructuredData) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = StructuredData{}

	if demo, ok := raw["patient_demographics"]; ok {
		if err := json.Unmarshal(demo, &s.PatientDemographics); err != nil {
			return err
		}
	}

	if results, ok := raw["lab_results"]; ok {
		return decodeLabResults(results, &s.LabResults)
	}

	for _, key := range []string{"tests", "results", "lab_tests", "labs"} {
		if results, ok := raw[key]; ok {
			return decodeLabResults(results, &s.LabResults)
		}
	}

	// Object keyed by test name: {"Hemoglobin": {"value": "12.5", ...}}
	delete(raw, "patient_demographics")
	s.LabResults = keyedLabResults(raw)

	return nil
}

// decodeLabResults accepts an array of results or an object keyed by test
// name. Other values, such as null, yield no results.
func decodeLabResults(data json.RawMessage, out *[]LabResult) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '[':
		return json.Unmarshal(data, out)
	case '{':
		var keyed map[string]json.RawMessage
		if err := json.Unmarshal(data, &keyed); err != nil {
			return err
		}

		*out = keyedLabResults(keyed)
	}

	return nil
}

// keyedLabResults converts {"Hemoglobin": {"value": ...}} into results named
// after their keys. Entries without a value are skipped.
func keyedLabResults(keyed map[string]json.RawMessage) []LabResult {
	var results []LabResult

	for name, value := range keyed {
		var result LabResult
		if err := json.Unmarshal(value, &result); err != nil {
			// {"Glucose": 95}; other scalars are not results.
			var n json.Number
			if err := json.Unmarshal(value, &n); err != nil {
				continue
			}

			result.Value = Text(n.String())
		}

		if result.Value.String() == "" {
			continue
		}

		if result.Name() == "" {
			result.TestName = Text(name)
		}

		results = append(results, result)
	}

	sortLabResults(results)

	return results
}

// sortLabResults orders results by name so output built from a map is stable.
func sortLabResults(results []LabResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Name() < results[j].Name()
	})
}

// Abnormality is a flagged result from the analysis step.
type Abnormality struct {
	Test        Text `json:"test"`
	Value       Text `json:"value,omitempty"`
	Unit        Text `json:"unit,omitempty"`
	Status      Text `json:"status,omitempty"`
	Implication Text `json:"implication,omitempty"`
}

// UnmarshalJSON also accepts a bare string naming the test.
func (a *Abnormality) UnmarshalJSON(data []byte) error {
	type plain Abnormality

	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] != '{' {
		*a = Abnormality{}
		return a.Test.UnmarshalJSON(trimmed)
	}

	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	*a = Abnormality(p)

	return nil
}

// Detail returns the implication, falling back to the status.
func (a Abnormality) Detail() string {
	if s := a.Implication.String(); s != "" {
		return s
	}

	return a.Status.String()
}

// HealthSummary is the headline part of the analysis.
type HealthSummary struct {
	OverallHealthReading Text     `json:"overall_health_reading"`
	SummaryText          Text     `json:"summary_text"`
	KeyFindings          TextList `json:"key_findings"`
}

// Reading returns the normalized overall reading.
func (h HealthSummary) Reading() HealthReading {
	return ParseReading(h.OverallHealthReading.String())
}

// DetailedAnalysis holds abnormalities and recommendations.
type DetailedAnalysis struct {
	Abnormalities            []Abnormality `json:"abnormalities"`
	LifestyleRecommendations TextList      `json:"lifestyle_recommendations"`
}

// AnalysisResult is the output of the analysis step.
type AnalysisResult struct {
	HealthSummary    HealthSummary    `json:"health_summary"`
	DetailedAnalysis DetailedAnalysis `json:"detailed_analysis"`
}

// ResearchFindings is the output of the research step.
type ResearchFindings struct {
	FullReport       string   `json:"full_report,omitempty"`
	PatientExplainer string   `json:"patient_explainer"`
	ClinicianSummary string   `json:"clinician_summary"`
	EvidenceSources  []string `json:"evidence_sources"`
	Error            string   `json:"error,omitempty"`
}

// AttentionItem explains one result that needs attention, for patients.
type AttentionItem struct {
	Test               Text `json:"test"`
	PatientExplanation Text `json:"patient_explanation,omitempty"`
	YourResult         Text `json:"your_result,omitempty"`
	WhatItMeans        Text `json:"what_it_means,omitempty"`
	NextSteps          Text `json:"next_steps,omitempty"`
}

// UnmarshalJSON also accepts a bare string naming the test.
func (a *AttentionItem) UnmarshalJSON(data []byte) error {
	type plain AttentionItem

	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] != '{' {
		*a = AttentionItem{}
		return a.Test.UnmarshalJSON(trimmed)
	}

	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	*a = AttentionItem(p)

	return nil
}

// PatientSummary is the output of the patient agent.
type PatientSummary struct {
	PlainLanguageSummary Text            `json:"plain_language_summary"`
	WhatIsNormal         TextList        `json:"what_is_normal"`
	NeedsAttention       []AttentionItem `json:"needs_attention"`
	QuestionsForDoctor   TextList        `json:"questions_for_doctor"`
	Disclaimer           Text            `json:"disclaimer"`
	Agent                string          `json:"agent,omitempty"`
	OverallHealthStatus  string          `json:"overall_health_status,omitempty"`
	Error                string          `json:"error,omitempty"`
}

// CriticalFinding is one abnormal value in the clinician summary.
type CriticalFinding struct {
	Test                 Text `json:"test"`
	Value                Text `json:"value,omitempty"`
	Unit                 Text `json:"unit,omitempty"`
	ReferenceRange       Text `json:"reference_range,omitempty"`
	Status               Text `json:"status,omitempty"`
	ClinicalSignificance Text `json:"clinical_significance,omitempty"`
	Evidence             Text `json:"evidence,omitempty"`
}

// UnmarshalJSON also accepts a bare string describing the finding.
func (c *CriticalFinding) UnmarshalJSON(data []byte) error {
	type plain CriticalFinding

	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] != '{' {
		*c = CriticalFinding{}
		return c.Test.UnmarshalJSON(trimmed)
	}

	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	*c = CriticalFinding(p)

	return nil
}

// ClinicianSummary is the output of the clinician agent.
type ClinicianSummary struct {
	CriticalFindings           []CriticalFinding `json:"critical_findings"`
	NormalFindings             TextList          `json:"normal_findings"`
	ClinicalContext            Text              `json:"clinical_context"`
	Recommendations            TextList          `json:"recommendations"`
	DifferentialConsiderations TextList          `json:"differential_considerations"`
	EvidenceSources            []string          `json:"evidence_sources"`
	Agent                      string            `json:"agent,omitempty"`
	OverallHealthStatus        string            `json:"overall_health_status,omitempty"`
	Error                      string            `json:"error,omitempty"`
}

// HealthProgression drives the patient line chart.
type HealthProgression struct {
	Labels       []string `json:"labels"`
	Scores       []Number `json:"scores"`
	HealthStatus string   `json:"health_status"`
}

// LabPoint is one bar in a lab chart.
type LabPoint struct {
	TestName     string `json:"test_name"`
	Value        Number `json:"value"`
	Unit         string `json:"unit"`
	DisplayValue string `json:"display_value"`
}

// ReferencePoint is a lab value placed against its reference range.
type ReferencePoint struct {
	TestName       string `json:"test_name"`
	Value          Number `json:"value"`
	Unit           string `json:"unit"`
	DisplayValue   string `json:"display_value"`
	ReferenceRange string `json:"reference_range"`
	RefMin         Number `json:"ref_min"`
	RefMax         Number `json:"ref_max"`
	Status         string `json:"status"`
}

// PatientChartData holds both patient charts.
type PatientChartData struct {
	HealthProgression *HealthProgression `json:"health_progression,omitempty"`
	LabComparison     []LabPoint         `json:"lab_comparison,omitempty"`
	OverallHealth     string             `json:"overall_health,omitempty"`
	HealthScore       int                `json:"health_score"`
}

// ClinicChartData holds both clinic charts.
type ClinicChartData struct {
	LabOverview         []LabPoint       `json:"lab_overview,omitempty"`
	ReferenceComparison []ReferencePoint `json:"reference_comparison,omitempty"`
}

// Processed is everything the pipeline produces for one uploaded report.
type Processed struct {
	RawText          string           `json:"raw_text"`
	StructuredData   StructuredData   `json:"structured_data"`
	HealthSummary    HealthSummary    `json:"health_summary"`
	DetailedAnalysis DetailedAnalysis `json:"detailed_analysis"`
	ResearchFindings ResearchFindings `json:"research_findings"`
	PatientSummary   PatientSummary   `json:"patient_summary"`
	ClinicianSummary ClinicianSummary `json:"clinician_summary"`
	PatientCharts    PatientChartData `json:"patient_chart_data"`
	ClinicCharts     ClinicChartData  `json:"clinic_chart_data"`
}
