/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"net/http"

	"github.com/flamego/csrf"
	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"
)

// PageData fills the template data shared by every page: the CSRF token of
// the viewer forms and the pending flash message.
func PageData() flamego.Handler {
	return func(x csrf.CSRF, flash session.Flash, data template.Data) {
		data["csrf_token"] = x.Token()

		if msg, ok := flash.(FlashMessage); ok {
			data["Flash"] = msg
		}
	}
}

// PrivateHeaders keeps report pages out of caches and search indexes. Lab
// results are personal health data.
func PrivateHeaders() flamego.Handler {
	return func(c flamego.Context) {
		header := c.ResponseWriter().Header()
		header.Set("X-Robots-Tag", "noindex, nofollow, noarchive")
		header.Set("X-Content-Type-Options", "nosniff")
		header.Set("Referrer-Policy", "same-origin")

		if c.Request().Method == http.MethodGet || c.Request().Method == http.MethodHead {
			header.Set("Cache-Control", "no-store, max-age=0")
		}

		c.Next()
	}
}
