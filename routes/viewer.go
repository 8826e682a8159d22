/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"errors"
	"net/http"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"

	"github.com/humaidq/labwave/client"
	"github.com/humaidq/labwave/report"
	"github.com/humaidq/labwave/viewer"
)

func modePath(mode report.Mode) string {
	return "/" + string(mode)
}

// modeFromParam reads the {mode} route parameter. Only the two known modes
// are served.
func modeFromParam(c flamego.Context) (report.Mode, bool) {
	switch report.Mode(c.Param("mode")) {
	case report.ModePatient:
		return report.ModePatient, true
	case report.ModeClinic:
		return report.ModeClinic, true
	default:
		return "", false
	}
}

// Home shows the mode selection view.
func Home(s session.Session, svc *Services, t template.Template, data template.Data) {
	sess := svc.Viewers.Get(s.ID())
	sess.Navigate(viewer.ViewSelection)

	data["IsSelection"] = true
	data["PageTitle"] = "Lab Report Analyzer"
	data["Modes"] = []report.Mode{report.ModePatient, report.ModeClinic}

	t.HTML(http.StatusOK, "home")
}

// ModePage shows the patient or clinic view of the session.
func ModePage(c flamego.Context, s session.Session, svc *Services, t template.Template, data template.Data) {
	mode, ok := modeFromParam(c)
	if !ok {
		c.ResponseWriter().WriteHeader(http.StatusNotFound)
		return
	}

	page := svc.Viewers.Get(s.ID()).Navigate(viewer.ViewFor(mode))

	data["PageTitle"] = mode.Label() + " Report"
	data["Mode"] = mode
	data["ModeLabel"] = mode.Label()
	data["UploadAction"] = modePath(mode) + "/upload"
	data["ResetAction"] = modePath(mode) + "/reset"
	data["Page"] = page.Snapshot()

	t.HTML(http.StatusOK, "mode")
}

// LimitUploadBody parses the upload form under the size cap before the CSRF
// check reads the body. An oversized upload goes back to the mode view with
// an error.
func LimitUploadBody() flamego.Handler {
	return func(c flamego.Context, s session.Session) {
		err := parseUploadForm(c.ResponseWriter(), c.Request().Request)
		if !errors.Is(err, errFileTooLarge) {
			c.Next()
			return
		}

		mode, ok := modeFromParam(c)
		if !ok {
			c.ResponseWriter().WriteHeader(http.StatusNotFound)
			return
		}

		SetErrorFlash(s, "%s", msgFileTooLarge)
		c.Redirect(modePath(mode), http.StatusSeeOther)
	}
}

// ModeUpload submits the selected file through the upload client and
// redirects back to the mode view, which shows the result or the error.
func ModeUpload(c flamego.Context, s session.Session, svc *Services) {
	mode, ok := modeFromParam(c)
	if !ok {
		c.ResponseWriter().WriteHeader(http.StatusNotFound)
		return
	}

	sess := svc.Viewers.Get(s.ID())
	page := sess.Navigate(viewer.ViewFor(mode))

	upload, err := readUpload(c.ResponseWriter(), c.Request().Request)
	if err != nil {
		_, msg := uploadErrorStatus(err)
		SetErrorFlash(s, "%s", msg)
		c.Redirect(modePath(mode), http.StatusSeeOther)

		return
	}

	submitter := svc.Submitter(sess.UserID())
	switch page.Upload(c.Request().Context(), submitter, client.File{Name: upload.Name, Data: upload.Data}) {
	case viewer.OutcomeSuperseded:
		logger.Debug("Discarded superseded upload", "file", upload.Name, "mode", mode)
		SetInfoFlash(s, "A newer upload replaced %s.", upload.Name)
	case viewer.OutcomeCancelled:
		logger.Debug("Discarded upload after reset", "file", upload.Name, "mode", mode)
		SetInfoFlash(s, "The upload of %s was discarded because the page was reset.", upload.Name)
	case viewer.OutcomeWritten:
	}

	c.Redirect(modePath(mode), http.StatusSeeOther)
}

// ModeReset clears the mode view.
func ModeReset(c flamego.Context, s session.Session, svc *Services) {
	mode, ok := modeFromParam(c)
	if !ok {
		c.ResponseWriter().WriteHeader(http.StatusNotFound)
		return
	}

	svc.Viewers.Get(s.ID()).Page(mode).Reset()

	c.Redirect(modePath(mode), http.StatusSeeOther)
}
