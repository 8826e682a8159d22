/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/flamego/flamego"
	"github.com/flamego/template"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/humaidq/labwave/db"
	"github.com/humaidq/labwave/report"
	"github.com/humaidq/labwave/viewer"
)

// loadStoredReport fetches the {id} report. It writes a 404 page and
// returns nil when storage is off or the report does not exist.
func loadStoredReport(c flamego.Context, t template.Template, data template.Data) *report.StoredReport {
	notFound := func() {
		data["PageTitle"] = "Report not found"
		t.HTML(http.StatusNotFound, "not_found")
	}

	if !dbConnectedFn() {
		notFound()
		return nil
	}

	stored, err := getReportFn(c.Request().Context(), c.Param("id"))
	if errors.Is(err, db.ErrReportNotFound) || errors.Is(err, db.ErrInvalidReportID) {
		notFound()
		return nil
	}

	if err != nil {
		logger.Error("Failed to load report", "report_id", c.Param("id"), "error", err)
		data["PageTitle"] = "Error"
		data["Error"] = "Failed to load report"
		t.HTML(http.StatusInternalServerError, "not_found")

		return nil
	}

	return stored
}

// ViewReport renders a stored report for the mode it was requested in.
func ViewReport(c flamego.Context, svc *Services, t template.Template, data template.Data) {
	stored := loadStoredReport(c, t, data)
	if stored == nil {
		return
	}

	mode := stored.ReportType
	if m := c.Query("mode"); m != "" {
		mode = report.ParseMode(m)
	}

	page := viewer.NewPage(mode)
	if stored.Processed != nil {
		resp := report.FormatResponse(stored.Processed, mode, stored.ID, stored.ProcessedAt)
		if res, ok := report.ResultFromResponse(resp, mode); ok {
			if err := page.Show(res); err != nil {
				logger.Warn("Failed to render stored report", "report_id", stored.ID, "error", err)
			}
		}
	}

	data["PageTitle"] = stored.FileName
	data["Report"] = stored
	data["Mode"] = mode
	data["ModeLabel"] = mode.Label()
	data["Page"] = page.Snapshot()
	data["ExportURL"] = "/reports/" + stored.ID + "/export.xlsx"

	if svc.PublicURL != "" {
		data["QRURL"] = "/reports/" + stored.ID + "/qr.png"
	}

	t.HTML(http.StatusOK, "report")
}

// ExportReport downloads the lab results of a stored report as a workbook.
func ExportReport(c flamego.Context, t template.Template, data template.Data) {
	stored := loadStoredReport(c, t, data)
	if stored == nil {
		return
	}

	workbook, err := buildLabWorkbook(stored)
	if err != nil {
		logger.Error("Failed to export report", "report_id", stored.ID, "error", err)
		c.ResponseWriter().WriteHeader(http.StatusInternalServerError)

		return
	}

	name := strings.TrimSuffix(stored.FileName, filepath.Ext(stored.FileName))
	if name == "" {
		name = "report"
	}

	header := c.ResponseWriter().Header()
	header.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"-lab-results.xlsx"))
	c.ResponseWriter().WriteHeader(http.StatusOK)

	if _, err := c.ResponseWriter().Write(workbook); err != nil {
		logger.Warn("Failed to write workbook", "report_id", stored.ID, "error", err)
	}
}

// ReportQRCode serves a QR code linking to the stored report. Without a
// public URL there is no trustworthy link to encode, so it is not served.
func ReportQRCode(c flamego.Context, svc *Services, t template.Template, data template.Data) {
	if svc.PublicURL == "" {
		t.HTML(http.StatusNotFound, "not_found")
		return
	}

	stored := loadStoredReport(c, t, data)
	if stored == nil {
		return
	}

	png, err := qrcode.Encode(reportURL(svc.PublicURL, stored.ID), qrcode.Medium, 256)
	if err != nil {
		logger.Error("Failed to generate QR code", "report_id", stored.ID, "error", err)
		c.ResponseWriter().WriteHeader(http.StatusInternalServerError)

		return
	}

	c.ResponseWriter().Header().Set("Content-Type", "image/png")
	c.ResponseWriter().WriteHeader(http.StatusOK)

	if _, err := c.ResponseWriter().Write(png); err != nil {
		logger.Warn("Failed to write QR code", "report_id", stored.ID, "error", err)
	}
}

// reportURL is the absolute link to a stored report under publicURL.
func reportURL(publicURL, id string) string {
	return strings.TrimRight(publicURL, "/") + "/reports/" + id
}
