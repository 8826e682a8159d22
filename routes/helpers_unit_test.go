// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package routes

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"

	"github.com/humaidq/labwave/pipeline"
	"github.com/humaidq/labwave/report"
	"github.com/humaidq/labwave/viewer"
)

type testSession struct {
	id    string
	data  map[interface{}]interface{}
	flash interface{}
}

func newTestSession() *testSession {
	return &testSession{
		id:   "test-session",
		data: make(map[interface{}]interface{}),
	}
}

func (s *testSession) ID() string {
	return s.id
}

func (s *testSession) RegenerateID(http.ResponseWriter, *http.Request) error {
	return nil
}

func (s *testSession) Get(key interface{}) interface{} {
	return s.data[key]
}

func (s *testSession) Set(key, val interface{}) {
	s.data[key] = val
}

func (s *testSession) SetFlash(val interface{}) {
	s.flash = val
}

func (s *testSession) Delete(key interface{}) {
	delete(s.data, key)
}

func (s *testSession) Flush() {
	s.data = make(map[interface{}]interface{})
}

func (s *testSession) Encode() ([]byte, error) {
	return nil, nil
}

func (s *testSession) HasChanged() bool {
	return true
}

type templateStub struct {
	status int
	name   string
}

func (s *templateStub) HTML(status int, name string) {
	s.status = status
	s.name = name
}

type processorFunc func(ctx context.Context, up pipeline.Upload) (*pipeline.Result, error)

func (f processorFunc) Process(ctx context.Context, up pipeline.Upload) (*pipeline.Result, error) {
	return f(ctx, up)
}

type testApp struct {
	flame   *flamego.Flame
	session *testSession
	tmpl    *templateStub
	data    template.Data
}

func newTestApp(t *testing.T, svc *Services) *testApp {
	t.Helper()

	if svc.Viewers == nil {
		svc.Viewers = viewer.NewRegistry(0)
	}

	app := &testApp{
		flame:   flamego.New(),
		session: newTestSession(),
		tmpl:    &templateStub{},
		data:    template.Data{},
	}

	f := app.flame
	f.Map(svc)
	f.Use(func(c flamego.Context) {
		c.MapTo(app.session, (*session.Session)(nil))
		c.MapTo(app.tmpl, (*template.Template)(nil))
		c.Map(app.data)
		c.Next()
	})

	f.Get("/api/health", APIHealth)
	f.Post("/api/upload", APIUpload)
	f.Get("/api/reports", APIListReports)
	f.Get("/", Home)
	f.Get("/{mode}", ModePage)
	f.Post("/{mode}/upload", ModeUpload)
	f.Post("/{mode}/reset", ModeReset)
	f.Get("/reports/{id}", ViewReport)
	f.Get("/reports/{id}/export.xlsx", ExportReport)
	f.Get("/reports/{id}/qr.png", ReportQRCode)

	return app
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.flame.ServeHTTP(rec, req)

	return rec
}

// multipartUpload builds an upload request. An empty name sends the file
// field without a selection, a nil data omits the file field entirely.
func multipartUpload(t *testing.T, path, name string, data []byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer

	w := multipart.NewWriter(&body)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}

	if data != nil {
		part, err := w.CreateFormFile("file", name)
		if err != nil {
			t.Fatalf("failed to create file part: %v", err)
		}

		if _, err := part.Write(data); err != nil {
			t.Fatalf("failed to write file part: %v", err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())

	return req
}

func sampleProcessed() *report.Processed {
	p := &report.Processed{}
	p.HealthSummary.OverallHealthReading = "Good"
	p.HealthSummary.SummaryText = "Mostly normal."
	p.StructuredData.PatientDemographics = report.Demographics{Name: "Jane Doe", Age: "42", Sex: "F"}
	p.StructuredData.LabResults = []report.LabResult{
		{TestName: "Hemoglobin", Value: "11.2", Unit: "g/dL"},
		{TestName: "Sodium", Value: "140", Unit: "mmol/L", RefRange: "136-145"},
	}
	p.ClinicCharts.ReferenceComparison = []report.ReferencePoint{
		{TestName: "Hemoglobin", Value: 11.2, ReferenceRange: "11.6-15 g/dL", RefMin: 11.6, RefMax: 15, Status: "low"},
	}

	return p
}
