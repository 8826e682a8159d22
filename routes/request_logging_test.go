// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flamego/flamego"
)

func TestRequestLoggerSetsRequestID(t *testing.T) {
	t.Parallel()

	f := flamego.New()
	f.Use(RequestLogger)
	f.Get("/", func(c flamego.Context) {
		c.ResponseWriter().WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if len(rec.Header().Get(requestIDHeader)) != 36 {
		t.Fatalf("expected a generated request id, got %q", rec.Header().Get(requestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "upload-42")

	rec = httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	if got := rec.Header().Get(requestIDHeader); got != "upload-42" {
		t.Fatalf("expected the caller's request id, got %q", got)
	}
}

func TestRequestIDRejectsOddHeaders(t *testing.T) {
	t.Parallel()

	for _, header := range []string{"", "has space", string(make([]byte, 65))} {
		if got := requestID(header); got == header {
			t.Fatalf("expected %q to be replaced", header)
		}
	}
}
