// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/humaidq/labwave/client"
	"github.com/humaidq/labwave/report"
	"github.com/humaidq/labwave/viewer"
)

type submitFunc func(ctx context.Context, file client.File, mode report.Mode) (report.Result, error)

func (f submitFunc) Submit(ctx context.Context, file client.File, mode report.Mode) (report.Result, error) {
	return f(ctx, file, mode)
}

func TestViewerUploadAndReset(t *testing.T) {
	t.Parallel()

	var submittedBy string

	svc := &Services{
		Submitter: func(userID string) viewer.Submitter {
			submittedBy = userID

			return submitFunc(func(_ context.Context, file client.File, mode report.Mode) (report.Result, error) {
				if file.Name != "cbc.pdf" || mode != report.ModeClinic {
					t.Errorf("unexpected submission %q %s", file.Name, mode)
				}

				return report.ClinicResult(&report.ClinicData{Summary: "ok"}), nil
			})
		},
	}

	app := newTestApp(t, svc)

	if rec := app.do(httptest.NewRequest(http.MethodGet, "/clinic", nil)); rec.Code != http.StatusOK || app.tmpl.name != "mode" {
		t.Fatalf("expected mode page, got %d %q", rec.Code, app.tmpl.name)
	}

	rec := app.do(multipartUpload(t, "/clinic/upload", "cbc.pdf", []byte("%PDF"), nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/clinic" {
		t.Fatalf("expected redirect to /clinic, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	sess := svc.Viewers.Get(app.session.ID())
	if submittedBy != sess.UserID() {
		t.Fatalf("expected upload under the session id, got %q", submittedBy)
	}

	app.do(httptest.NewRequest(http.MethodGet, "/clinic", nil))

	snap, ok := app.data["Page"].(viewer.Snapshot)
	if !ok || snap.State != viewer.StateRendered {
		t.Fatalf("expected rendered page after redirect, got %+v", app.data["Page"])
	}

	app.do(httptest.NewRequest(http.MethodPost, "/clinic/reset", nil))

	if sess.Page(report.ModeClinic).Snapshot().State != viewer.StateIdle {
		t.Fatal("expected reset to return the page to idle")
	}
}

func TestViewerUploadError(t *testing.T) {
	t.Parallel()

	svc := &Services{
		Submitter: func(string) viewer.Submitter {
			return submitFunc(func(context.Context, client.File, report.Mode) (report.Result, error) {
				return report.Result{}, &client.FetchError{Status: http.StatusBadRequest, Message: "Invalid file type. Allowed: PDF, PNG, JPG, JPEG, BMP"}
			})
		},
	}

	app := newTestApp(t, svc)
	app.do(multipartUpload(t, "/patient/upload", "notes.txt", []byte("x"), nil))

	snap := svc.Viewers.Get(app.session.ID()).Page(report.ModePatient).Snapshot()
	if snap.State != viewer.StateErrorShown || snap.Result != nil {
		t.Fatalf("expected error panel without a result, got %s", snap.State)
	}
}

func TestViewerUploadWithoutFile(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &Services{Submitter: func(string) viewer.Submitter {
		t.Fatal("no submission expected without a file")
		return nil
	}})

	app.do(multipartUpload(t, "/patient/upload", "", nil, nil))

	msg, ok := app.session.flash.(FlashMessage)
	if !ok || msg.Type != FlashError || msg.Message != "No file provided" {
		t.Fatalf("expected error flash, got %+v", app.session.flash)
	}
}

func TestHomeAndUnknownMode(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &Services{})

	if rec := app.do(httptest.NewRequest(http.MethodGet, "/", nil)); rec.Code != http.StatusOK || app.tmpl.name != "home" {
		t.Fatalf("expected home page, got %d %q", rec.Code, app.tmpl.name)
	}

	if rec := app.do(httptest.NewRequest(http.MethodGet, "/radiology", nil)); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown mode, got %d", rec.Code)
	}
}

func TestViewerUploadCancelledByReset(t *testing.T) {
	t.Parallel()

	svc := &Services{}
	app := newTestApp(t, svc)

	svc.Submitter = func(string) viewer.Submitter {
		return submitFunc(func(context.Context, client.File, report.Mode) (report.Result, error) {
			svc.Viewers.Get(app.session.ID()).Page(report.ModePatient).Reset()
			return report.PatientResult(&report.PatientData{Summary: "late"}), nil
		})
	}

	app.do(multipartUpload(t, "/patient/upload", "cbc.pdf", []byte("%PDF"), nil))

	msg, ok := app.session.flash.(FlashMessage)
	if !ok || msg.Type != FlashInfo || msg.Message != "The upload of cbc.pdf was discarded because the page was reset." {
		t.Fatalf("expected reset flash, got %+v", app.session.flash)
	}

	if state := svc.Viewers.Get(app.session.ID()).Page(report.ModePatient).Snapshot().State; state != viewer.StateIdle {
		t.Fatalf("expected the reset page to stay idle, got %s", state)
	}
}
