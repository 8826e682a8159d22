/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */

// Package client uploads lab reports to the labwave API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/humaidq/labwave/report"
)

// DefaultBaseURL is the API base used when none is configured.
const DefaultBaseURL = "http://127.0.0.1:8080/api"

// File is a report to upload.
type File struct {
	Name string
	Data []byte
}

// FetchError is an upload failure: a network error, a non-2xx status or a
// response without the expected report. Status is zero for network errors.
type FetchError struct {
	Status  int
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Status == 0 {
		return "upload failed: " + e.Message
	}

	return fmt.Sprintf("upload failed (%d): %s", e.Status, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client submits reports on behalf of one viewer session.
type Client struct {
	http   *resty.Client
	userID string
}

// New creates a client for the API at baseURL with a fresh session id.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimSuffix(baseURL, "/")).
			SetLogger(logger).
			SetHeader("Accept", "application/json"),
		userID: uuid.NewString(),
	}
}

// WithUserID returns a client sharing the connection pool that submits as
// another session.
func (c *Client) WithUserID(id string) *Client {
	return &Client{http: c.http, userID: id}
}

// UserID returns the session id sent with uploads.
func (c *Client) UserID() string {
	return c.userID
}

// Submit uploads a report and returns the data for mode. It sends exactly
// one request; every failure is a *FetchError.
func (c *Client) Submit(ctx context.Context, file File, mode report.Mode) (report.Result, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", file.Name, bytes.NewReader(file.Data)).
		SetFormData(map[string]string{
			"reportType": string(mode),
			"userId":     c.userID,
		}).
		Post("/upload")
	if err != nil {
		return report.Result{}, &FetchError{Message: "could not reach the server", Err: err}
	}

	logger.Debug("Upload finished", "file", file.Name, "mode", mode, "status", resp.StatusCode())

	body := resp.Body()

	if !resp.IsSuccess() {
		msg := http.StatusText(resp.StatusCode())

		var apiErr report.ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}

		return report.Result{}, &FetchError{Status: resp.StatusCode(), Message: msg}
	}

	var upload report.UploadResponse
	if err := json.Unmarshal(body, &upload); err != nil {
		return report.Result{}, &FetchError{Status: resp.StatusCode(), Message: "malformed response", Err: err}
	}

	result, ok := report.ResultFromResponse(upload, mode)
	if !ok {
		return report.Result{}, &FetchError{
			Status:  resp.StatusCode(),
			Message: fmt.Sprintf("response has no %s data", mode),
		}
	}

	return result, nil
}
