/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package report

import "time"

// StoredReport is a processed report as persisted for a user.
type StoredReport struct {
	ID                   string     `json:"reportId"`
	UserID               string     `json:"userId"`
	ReportType           Mode       `json:"reportType"`
	FileName             string     `json:"fileName"`
	FileDigest           string     `json:"fileDigest"`
	OverallHealthReading string     `json:"overallHealthReading"`
	ProcessedAt          time.Time  `json:"processedAt"`
	Processed            *Processed `json:"processed,omitempty"`
}
