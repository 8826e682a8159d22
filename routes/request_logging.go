/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/flamego/flamego"
	"github.com/google/uuid"

	"github.com/humaidq/labwave/logging"
)

var requestLogger = logging.Logger(logging.SourceWebRequest)

const requestIDHeader = "X-Request-ID"

// RequestLogger logs request metadata and timing for each HTTP request. The
// request id is echoed back so a viewer error can be matched to its upload.
func RequestLogger(c flamego.Context) {
	start := time.Now()

	id := requestID(c.Request().Header.Get(requestIDHeader))
	c.ResponseWriter().Header().Set(requestIDHeader, id)

	c.Next()

	status := c.ResponseWriter().Status()
	if status == 0 {
		status = http.StatusOK
	}

	fields := []any{
		"event", "request",
		"request_id", id,
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	fields = append(fields, baseRequestFields(c)...)

	if status >= http.StatusInternalServerError {
		requestLogger.Error("request", fields...)
		return
	}

	requestLogger.Info("request", fields...)
}

// requestID keeps a caller-supplied id when it looks sane.
func requestID(header string) string {
	header = strings.TrimSpace(header)
	if header != "" && len(header) <= 64 && !strings.ContainsAny(header, " \t\r\n") {
		return header
	}

	return uuid.NewString()
}

func baseRequestFields(c flamego.Context) []any {
	return []any{
		"method", c.Request().Method,
		"path", c.Request().URL.Path,
		"ip", clientIP(c),
		"user_agent", c.Request().UserAgent(),
	}
}

func clientIP(c flamego.Context) string {
	forwardedFor := c.Request().Header.Get("X-Forwarded-For")
	if forwardedFor != "" {
		if idx := strings.Index(forwardedFor, ","); idx != -1 {
			forwardedFor = forwardedFor[:idx]
		}

		if ip := strings.TrimSpace(forwardedFor); ip != "" {
			return ip
		}
	}

	return c.RemoteAddr()
}
