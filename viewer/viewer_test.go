// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/humaidq/labwave/client"
	"github.com/humaidq/labwave/report"
)

func decodePatient(t *testing.T, raw string) report.Result {
	t.Helper()

	var d report.PatientData
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		t.Fatalf("failed to decode patient data: %v", err)
	}

	return report.PatientResult(&d)
}

func decodeClinic(t *testing.T, raw string) report.Result {
	t.Helper()

	var d report.ClinicData
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		t.Fatalf("failed to decode clinic data: %v", err)
	}

	return report.ClinicResult(&d)
}

func metricValue(t *testing.T, metrics []Metric, label string) string {
	t.Helper()

	for _, m := range metrics {
		if m.Label == label {
			return m.Value
		}
	}

	t.Fatalf("metric %q not found in %+v", label, metrics)

	return ""
}

func TestRenderEmptyPatientFallsBack(t *testing.T) {
	t.Parallel()

	r, err := Render(decodePatient(t, `{}`))
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	html := string(r.Fragment)
	for _, want := range []string{notProvided, "Unknown", noSummary} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in fragment", want)
		}
	}

	if len(r.Charts) != MaxCharts {
		t.Fatalf("expected %d charts, got %d", MaxCharts, len(r.Charts))
	}

	for _, c := range r.Charts {
		if !c.Sample || !strings.Contains(c.Title, "Sample data") {
			t.Fatalf("expected labeled sample chart, got %+v", c.Title)
		}
	}

	for _, m := range r.Metrics {
		if m.Value != Placeholder {
			t.Fatalf("expected placeholder for %s, got %q", m.Label, m.Value)
		}
	}
}

func TestRenderPatient(t *testing.T) {
	t.Parallel()

	r, err := Render(decodePatient(t, `{
		"patientInfo": {"name": "Jane <b>Doe</b>", "age": 42, "sex": null},
		"overallHealth": "Moderate",
		"summary": "Mild anemia.",
		"abnormalities": [{"test": "Hemoglobin", "value": 11.2, "unit": "g/dL", "status": "Low"}],
		"testResults": [{"test_name": "Hemoglobin"}, {"test_name": "Glucose"}],
		"chartData": {"lab_comparison": [{"test_name": "Hemoglobin", "value": 11.2}]}
	}`))
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	html := string(r.Fragment)
	if strings.Contains(html, "<b>Doe</b>") || !strings.Contains(html, "&lt;b&gt;Doe&lt;/b&gt;") {
		t.Fatal("expected patient name to be escaped")
	}

	if !strings.Contains(html, "11.2 g/dL") || !strings.Contains(html, "Low") {
		t.Fatal("expected abnormality details in fragment")
	}

	if got := metricValue(t, r.Metrics, "Health Score"); got != "50" {
		t.Fatalf("expected health score 50, got %q", got)
	}

	if got := metricValue(t, r.Metrics, "Abnormal Results"); got != "1" {
		t.Fatalf("expected 1 abnormal result, got %q", got)
	}

	if got := metricValue(t, r.Metrics, "Tests"); got != "2" {
		t.Fatalf("expected 2 tests, got %q", got)
	}

	// Progression is missing, lab comparison is present.
	if !r.Charts[0].Sample || r.Charts[1].Sample {
		t.Fatalf("unexpected sample flags: %v %v", r.Charts[0].Sample, r.Charts[1].Sample)
	}
}

func TestRenderClinic(t *testing.T) {
	t.Parallel()

	r, err := Render(decodeClinic(t, `{
		"labResults": [{"test_name": "Sodium", "value": "140", "unit": "mmol/L"}],
		"criticalFindings": [],
		"normalFindings": ["Sodium"],
		"evidenceSources": ["https://pubmed.ncbi.nlm.nih.gov/1/"],
		"researchReport": "## PATIENT EXPLAINER\n\nIron **matters**.\n\n<script>alert(1)</script>\n"
	}`))
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	html := string(r.Fragment)
	if !strings.Contains(html, "<strong>matters</strong>") {
		t.Fatal("expected research markdown to be rendered")
	}

	if strings.Contains(html, "<script>") {
		t.Fatal("expected raw HTML in research report to be dropped")
	}

	if !strings.Contains(html, "<td>--</td>") {
		t.Fatal("expected placeholder for missing reference range")
	}

	if got := metricValue(t, r.Metrics, "Critical Findings"); got != "0" {
		t.Fatalf("expected 0 critical findings, got %q", got)
	}

	if got := metricValue(t, r.Metrics, "Normal Findings"); got != "1" {
		t.Fatalf("expected 1 normal finding, got %q", got)
	}
}

func TestRenderRejectsInvalidResult(t *testing.T) {
	t.Parallel()

	if _, err := Render(report.Result{Mode: report.ModeClinic}); !errors.Is(err, ErrInvalidResult) {
		t.Fatalf("expected ErrInvalidResult, got %v", err)
	}
}

type submitFunc func(ctx context.Context, file client.File, mode report.Mode) (report.Result, error)

func (f submitFunc) Submit(ctx context.Context, file client.File, mode report.Mode) (report.Result, error) {
	return f(ctx, file, mode)
}

func TestPageLifecycle(t *testing.T) {
	t.Parallel()

	page := NewPage(report.ModePatient)
	if page.Snapshot().State != StateIdle {
		t.Fatal("expected new page to be idle")
	}

	outcome := page.Upload(context.Background(), submitFunc(func(context.Context, client.File, report.Mode) (report.Result, error) {
		if page.Snapshot().State != StateLoading {
			t.Error("expected page to be loading during submit")
		}

		return decodePatient(t, `{"overallHealth": "Good"}`), nil
	}), client.File{Name: "a.pdf"})
	if outcome != OutcomeWritten {
		t.Fatalf("expected upload to write the page, got %d", outcome)
	}

	snap := page.Snapshot()
	if snap.State != StateRendered || snap.Result == nil || snap.Rendered == nil {
		t.Fatalf("expected rendered page, got %s", snap.State)
	}

	if got := metricValue(t, snap.Metrics, "Health Score"); got != "75" {
		t.Fatalf("expected health score 75, got %q", got)
	}

	page.Reset()

	snap = page.Snapshot()
	if snap.State != StateIdle || snap.Result != nil || page.LiveCharts() != 0 {
		t.Fatal("expected reset to clear the page")
	}

	for _, m := range snap.Metrics {
		if m.Value != Placeholder {
			t.Fatalf("expected %s cleared, got %q", m.Label, m.Value)
		}
	}
}

func TestPageErrorNeverRendersPartialResult(t *testing.T) {
	t.Parallel()

	page := NewPage(report.ModeClinic)

	page.Upload(context.Background(), submitFunc(func(context.Context, client.File, report.Mode) (report.Result, error) {
		return decodeClinic(t, `{}`), nil
	}), client.File{Name: "a.pdf"})

	page.Upload(context.Background(), submitFunc(func(context.Context, client.File, report.Mode) (report.Result, error) {
		return report.Result{}, &client.FetchError{Status: 500, Message: "Failed to process report"}
	}), client.File{Name: "b.pdf"})

	snap := page.Snapshot()
	if snap.State != StateErrorShown || !strings.Contains(snap.Error, "Failed to process report") {
		t.Fatalf("expected error panel, got %s %q", snap.State, snap.Error)
	}

	if snap.Rendered != nil || snap.Result != nil || page.LiveCharts() != 0 {
		t.Fatal("expected no rendered result after an error")
	}
}

func TestPageWrongModeIsAnError(t *testing.T) {
	t.Parallel()

	page := NewPage(report.ModeClinic)
	ticket := page.Begin("a.pdf")

	if !page.Finish(ticket, decodePatient(t, `{}`), nil) {
		t.Fatal("expected the only submission to finish")
	}

	if page.Snapshot().State != StateErrorShown {
		t.Fatal("expected patient data on the clinic page to be an error")
	}
}

func TestPageLatestSubmissionWins(t *testing.T) {
	t.Parallel()

	page := NewPage(report.ModePatient)

	first := page.Begin("first.pdf")
	second := page.Begin("second.pdf")

	if !page.Finish(second, decodePatient(t, `{"summary": "second"}`), nil) {
		t.Fatal("expected latest submission to write the page")
	}

	if page.Finish(first, decodePatient(t, `{"summary": "first"}`), nil) {
		t.Fatal("expected stale submission to be discarded")
	}

	if got := page.Snapshot().Result.Patient.Summary; got != "second" {
		t.Fatalf("expected second result, got %q", got)
	}

	stale := page.Begin("third.pdf")
	page.Reset()

	if page.Finish(stale, decodePatient(t, `{}`), nil) {
		t.Fatal("expected reset to discard in-flight submissions")
	}

	if page.Snapshot().State != StateIdle {
		t.Fatal("expected page to stay idle")
	}
}

func TestRepeatedRenderKeepsTwoCharts(t *testing.T) {
	t.Parallel()

	page := NewPage(report.ModeClinic)

	for range 5 {
		if err := page.Show(decodeClinic(t, `{}`)); err != nil {
			t.Fatalf("Show returned error: %v", err)
		}

		if n := page.LiveCharts(); n > MaxCharts {
			t.Fatalf("expected at most %d charts, got %d", MaxCharts, n)
		}
	}
}

func TestNavigateResetsTargetView(t *testing.T) {
	t.Parallel()

	s := NewSession()
	if s.Current() != ViewSelection {
		t.Fatal("expected a new session on the selection view")
	}

	page := s.Navigate(ViewPatient)
	if err := page.Show(decodePatient(t, `{}`)); err != nil {
		t.Fatalf("Show returned error: %v", err)
	}

	// Staying on the view keeps the result.
	if s.Navigate(ViewPatient).Snapshot().Result == nil {
		t.Fatal("expected result to survive a reload of the same view")
	}

	if s.Navigate(ViewSelection) != nil {
		t.Fatal("expected no page for the selection view")
	}

	if s.Navigate(ViewPatient).Snapshot().Result != nil {
		t.Fatal("expected re-entering the view to reset it")
	}

	if s.Page(report.ModeClinic).Mode() != report.ModeClinic {
		t.Fatal("expected clinic page")
	}
}

func TestRegistryEvictsIdleSessions(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	r := NewRegistry(time.Hour)
	r.now = func() time.Time { return now }

	a := r.Get("a")
	if r.Get("a") != a {
		t.Fatal("expected the same session for the same id")
	}

	if a.UserID() == r.Get("b").UserID() {
		t.Fatal("expected distinct upload identities")
	}

	now = now.Add(30 * time.Minute)
	r.Get("b")

	now = now.Add(45 * time.Minute)

	if removed := r.Evict(); removed != 1 || r.Len() != 1 {
		t.Fatalf("expected one eviction leaving one session, got %d and %d", removed, r.Len())
	}
}

func TestUploadOutcomeDistinguishesResetFromNewerUpload(t *testing.T) {
	t.Parallel()

	page := NewPage(report.ModePatient)

	resetDuringSubmit := submitFunc(func(context.Context, client.File, report.Mode) (report.Result, error) {
		page.Reset()
		return decodePatient(t, `{}`), nil
	})

	if got := page.Upload(context.Background(), resetDuringSubmit, client.File{Name: "a.pdf"}); got != OutcomeCancelled {
		t.Fatalf("expected a reset to cancel the upload, got %d", got)
	}

	newerDuringSubmit := submitFunc(func(context.Context, client.File, report.Mode) (report.Result, error) {
		page.Begin("b.pdf")
		return decodePatient(t, `{}`), nil
	})

	if got := page.Upload(context.Background(), newerDuringSubmit, client.File{Name: "a.pdf"}); got != OutcomeSuperseded {
		t.Fatalf("expected a newer upload to supersede, got %d", got)
	}
}
