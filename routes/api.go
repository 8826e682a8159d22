/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/flamego/flamego"

	"github.com/humaidq/labwave/pipeline"
	"github.com/humaidq/labwave/report"
)

// MaxUploadSize is the largest accepted report file.
const MaxUploadSize = 16 << 20

// Upload error messages returned by the API.
const (
	msgNoFile          = "No file provided"
	msgNoFileSelected  = "No file selected"
	msgInvalidFileType = "Invalid file type. Allowed: PDF, PNG, JPG, JPEG, BMP"
	msgFileTooLarge    = "File too large. Maximum size is 16MB"
	msgProcessFailed   = "Failed to process report"
	defaultUserID      = "anonymous_user"
)

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
}

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status               string `json:"status"`
	Message              string `json:"message"`
	ProcessorInitialized bool   `json:"processor_initialized"`
	DatabaseConnected    bool   `json:"database_connected"`
}

// APIHealth reports whether the service is up and configured.
func APIHealth(c flamego.Context, svc *Services) {
	writeJSON(c, http.StatusOK, HealthResponse{
		Status:               "healthy",
		Message:              "Medical Report Analyzer API is running",
		ProcessorInitialized: svc.Processor != nil,
		DatabaseConnected:    dbConnectedFn(),
	})
}

// uploadedFile is a report file read from a multipart request.
type uploadedFile struct {
	Name string
	Data []byte
}

// readUpload reads the "file" field of a multipart request and enforces the
// size limit. The file type is checked by the API only.
// parseUploadForm caps the request body and parses the multipart form. A
// form that is already parsed is left alone.
func parseUploadForm(w http.ResponseWriter, r *http.Request) error {
	if r.MultipartForm != nil {
		return nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+1<<20)

	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return errFileTooLarge
		}

		return fmt.Errorf("%w: %w", errMissingFile, err)
	}

	return nil
}

func readUpload(w http.ResponseWriter, r *http.Request) (*uploadedFile, error) {
	if err := parseUploadForm(w, r); err != nil {
		return nil, err
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		// A file input submitted without a selection arrives as a plain
		// value with an empty filename.
		if _, ok := r.MultipartForm.Value["file"]; ok {
			return nil, errEmptyFileName
		}

		return nil, errMissingFile
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", errMissingFile, err)
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if header.Filename == "" || name == "." {
		return nil, errEmptyFileName
	}

	if header.Size > MaxUploadSize {
		return nil, errFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	if len(data) > MaxUploadSize {
		return nil, errFileTooLarge
	}

	return &uploadedFile{Name: name, Data: data}, nil
}

func (f *uploadedFile) validate() error {
	if !allowedExtensions[strings.ToLower(filepath.Ext(f.Name))] {
		return errInvalidFileType
	}

	return nil
}

// submittedMode reads the reportType field. A missing field means the
// default mode, while a field sent empty counts as clinic.
func submittedMode(r *http.Request) report.Mode {
	if r.MultipartForm != nil {
		if values, ok := r.MultipartForm.Value["reportType"]; ok && len(values) > 0 {
			return report.ParseMode(values[0])
		}
	}

	return report.DefaultMode
}

func uploadErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, errFileTooLarge):
		return http.StatusRequestEntityTooLarge, msgFileTooLarge
	case errors.Is(err, errEmptyFileName):
		return http.StatusBadRequest, msgNoFileSelected
	case errors.Is(err, errInvalidFileType):
		return http.StatusBadRequest, msgInvalidFileType
	case errors.Is(err, errMissingFile):
		return http.StatusBadRequest, msgNoFile
	default:
		return http.StatusInternalServerError, msgProcessFailed
	}
}

// APIUpload processes an uploaded report and returns it formatted for the
// requested report type.
func APIUpload(c flamego.Context, svc *Services) {
	if svc.Processor == nil {
		writeJSON(c, http.StatusInternalServerError, report.ErrorResponse{
			Error:   msgProcessFailed,
			Details: errProcessorNotInitialized.Error(),
		})

		return
	}

	r := c.Request().Request

	upload, err := readUpload(c.ResponseWriter(), r)
	if err == nil {
		err = upload.validate()
	}

	if err != nil {
		status, msg := uploadErrorStatus(err)
		if status == http.StatusInternalServerError {
			writeJSON(c, status, report.ErrorResponse{Error: msg, Details: err.Error()})
			return
		}

		logger.Debug("Rejected upload", "reason", err)
		writeJSONError(c, status, msg)

		return
	}

	mode := submittedMode(r)

	userID := strings.TrimSpace(r.FormValue("userId"))
	if userID == "" {
		userID = defaultUserID
	}

	logger.Info("Processing report", "file", upload.Name, "type", mode, "user_id", userID)

	result, err := svc.Processor.Process(r.Context(), pipeline.Upload{
		UserID:   userID,
		Mode:     mode,
		FileName: upload.Name,
		Data:     upload.Data,
	})
	if err != nil {
		logger.Error("Failed to process report", "file", upload.Name, "error", err)
		writeJSON(c, http.StatusInternalServerError, report.ErrorResponse{
			Error:   msgProcessFailed,
			Details: err.Error(),
		})

		return
	}

	writeJSON(c, http.StatusOK, result.Response(mode))
}

// ReportSummary is one entry of the report list.
type ReportSummary struct {
	ReportID             string      `json:"reportId"`
	ReportType           report.Mode `json:"reportType"`
	FileName             string      `json:"fileName"`
	OverallHealthReading string      `json:"overallHealthReading"`
	ProcessedAt          string      `json:"processedAt"`
	URL                  string      `json:"url"`
}

// APIListReports lists the stored reports of a user, newest first.
func APIListReports(c flamego.Context) {
	userID := strings.TrimSpace(c.Query("userId"))
	if userID == "" {
		writeJSONError(c, http.StatusBadRequest, "userId is required")
		return
	}

	if !dbConnectedFn() {
		writeJSONError(c, http.StatusServiceUnavailable, "Report storage is not configured")
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	reports, err := listReportsFn(c.Request().Context(), userID, limit)
	if err != nil {
		logger.Error("Failed to list reports", "user_id", userID, "error", err)
		writeJSONError(c, http.StatusInternalServerError, "Failed to list reports")

		return
	}

	summaries := make([]ReportSummary, 0, len(reports))
	for _, r := range reports {
		summaries = append(summaries, ReportSummary{
			ReportID:             r.ID,
			ReportType:           r.ReportType,
			FileName:             r.FileName,
			OverallHealthReading: r.OverallHealthReading,
			ProcessedAt:          r.ProcessedAt.UTC().Format(time.RFC3339),
			URL:                  "/reports/" + r.ID,
		})
	}

	writeJSON(c, http.StatusOK, map[string]any{"reports": summaries})
}

func writeJSON(c flamego.Context, status int, payload any) {
	c.ResponseWriter().Header().Set("Content-Type", "application/json")
	c.ResponseWriter().WriteHeader(status)

	if err := json.NewEncoder(c.ResponseWriter()).Encode(payload); err != nil {
		logger.Error("Error encoding JSON response", "error", err)
	}
}

func writeJSONError(c flamego.Context, status int, message string) {
	writeJSON(c, status, report.ErrorResponse{Error: message})
}
