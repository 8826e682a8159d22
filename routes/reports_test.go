// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package routes

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/humaidq/labwave/db"
	"github.com/humaidq/labwave/report"
	"github.com/humaidq/labwave/viewer"
)

const storedID = "6f1c1a52-3c1e-4d7b-9a53-3f7f0d0b8e11"

func stubStoredReport(t *testing.T) {
	t.Helper()

	originalGet, originalConnected := getReportFn, dbConnectedFn

	t.Cleanup(func() {
		getReportFn, dbConnectedFn = originalGet, originalConnected
	})

	dbConnectedFn = func() bool { return true }
	getReportFn = func(_ context.Context, id string) (*report.StoredReport, error) {
		if id != storedID {
			return nil, db.ErrReportNotFound
		}

		return &report.StoredReport{
			ID:          storedID,
			UserID:      "u",
			ReportType:  report.ModeClinic,
			FileName:    "cbc.pdf",
			ProcessedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
			Processed:   sampleProcessed(),
		}, nil
	}
}

//nolint:paralleltest // Overrides package-level storage function variables.
func TestViewReport(t *testing.T) {
	stubStoredReport(t)

	app := newTestApp(t, &Services{})

	rec := app.do(httptest.NewRequest(http.MethodGet, "/reports/"+storedID, nil))
	if rec.Code != http.StatusOK || app.tmpl.name != "report" {
		t.Fatalf("expected report page, got %d %q", rec.Code, app.tmpl.name)
	}

	snap, ok := app.data["Page"].(viewer.Snapshot)
	if !ok || snap.State != viewer.StateRendered || snap.Mode != report.ModeClinic {
		t.Fatalf("expected rendered clinic page, got %+v", app.data["Page"])
	}

	app.do(httptest.NewRequest(http.MethodGet, "/reports/"+storedID+"?mode=patient", nil))

	if snap := app.data["Page"].(viewer.Snapshot); snap.Mode != report.ModePatient {
		t.Fatalf("expected patient view, got %s", snap.Mode)
	}

	app.do(httptest.NewRequest(http.MethodGet, "/reports/missing", nil))

	if app.tmpl.status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", app.tmpl.status)
	}
}

//nolint:paralleltest // Overrides package-level storage function variables.
func TestViewReportWithoutStorage(t *testing.T) {
	originalConnected := dbConnectedFn

	t.Cleanup(func() { dbConnectedFn = originalConnected })

	dbConnectedFn = func() bool { return false }

	app := newTestApp(t, &Services{})
	app.do(httptest.NewRequest(http.MethodGet, "/reports/"+storedID, nil))

	if app.tmpl.status != http.StatusNotFound || app.tmpl.name != "not_found" {
		t.Fatalf("expected not found page, got %d %q", app.tmpl.status, app.tmpl.name)
	}
}

//nolint:paralleltest // Overrides package-level storage function variables.
func TestExportReport(t *testing.T) {
	stubStoredReport(t)

	rec := newTestApp(t, &Services{}).do(httptest.NewRequest(http.MethodGet, "/reports/"+storedID+"/export.xlsx", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if !strings.Contains(rec.Header().Get("Content-Disposition"), "cbc-lab-results.xlsx") {
		t.Fatalf("unexpected disposition %q", rec.Header().Get("Content-Disposition"))
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(labSheet)
	if err != nil {
		t.Fatalf("failed to read rows: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(rows))
	}

	// The charted range and status are used for hemoglobin.
	hb := rows[1]
	if hb[0] != "Hemoglobin" || hb[3] != "11.6-15 g/dL" || hb[5] != "low" {
		t.Fatalf("unexpected hemoglobin row: %v", hb)
	}

	if rows[2][3] != "136-145" {
		t.Fatalf("expected report range for sodium, got %v", rows[2])
	}
}

//nolint:paralleltest // Overrides package-level storage function variables.
func TestReportQRCode(t *testing.T) {
	stubStoredReport(t)

	app := newTestApp(t, &Services{PublicURL: "https://labs.example.org/"})

	rec := app.do(httptest.NewRequest(http.MethodGet, "/reports/"+storedID+"/qr.png", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("expected png, got %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}

	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatal("expected PNG signature")
	}
}

//nolint:paralleltest // Overrides package-level storage function variables.
func TestReportQRCodeNeedsPublicURL(t *testing.T) {
	stubStoredReport(t)

	app := newTestApp(t, &Services{})

	app.do(httptest.NewRequest(http.MethodGet, "/reports/"+storedID+"/qr.png", nil))
	if app.tmpl.status != http.StatusNotFound || app.tmpl.name != "not_found" {
		t.Fatalf("expected not found without a public URL, got %d %q", app.tmpl.status, app.tmpl.name)
	}

	app.do(httptest.NewRequest(http.MethodGet, "/reports/"+storedID, nil))
	if app.tmpl.status != http.StatusOK || app.tmpl.name != "report" {
		t.Fatalf("expected report page, got %d %q", app.tmpl.status, app.tmpl.name)
	}

	if _, ok := app.data["QRURL"]; ok {
		t.Fatal("expected no QR code link without a public URL")
	}
}

func TestReportURL(t *testing.T) {
	t.Parallel()

	if got := reportURL("https://labs.example.org/", "abc"); got != "https://labs.example.org/reports/abc" {
		t.Fatalf("unexpected report URL %q", got)
	}
}
