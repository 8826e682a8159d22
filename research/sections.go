/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package research

import (
	"regexp"
	"strings"
)

// Section names written by the synthesis step.
const (
	SectionPatientExplainer = "PATIENT EXPLAINER"
	SectionClinicianSummary = "CLINICIAN SUMMARY"
)

var citationPattern = regexp.MustCompile(`https?://[^\s)]+`)

// ExtractSection returns the lines following the first line that mentions
// name (case-insensitive), up to the next markdown heading.
func ExtractSection(markdown, name string) string {
	name = strings.ToUpper(name)

	var (
		out       []string
		inSection bool
	)

	for _, line := range strings.Split(markdown, "\n") {
		switch {
		case strings.Contains(strings.ToUpper(line), name):
			inSection = true
		case inSection && strings.HasPrefix(strings.TrimSpace(line), "#"):
			return strings.TrimSpace(strings.Join(out, "\n"))
		case inSection:
			out = append(out, line)
		}
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}

// ExtractCitations returns every http(s) URL in the text, in order.
func ExtractCitations(markdown string) []string {
	urls := citationPattern.FindAllString(markdown, -1)
	if urls == nil {
		return []string{}
	}

	return urls
}
