/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package report

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Text is a string that accepts any JSON scalar. LLM output puts numbers,
// strings, booleans and nulls in the same fields, so every loosely typed
// field of a report decodes into Text.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}

	if data[0] != '"' {
		// Numbers, booleans and nested values are kept verbatim.
		*t = Text(data)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	*t = Text(s)

	return nil
}

// String returns the trimmed text.
func (t Text) String() string {
	return strings.TrimSpace(string(t))
}

// Float parses the text as a number. Leading and trailing non-numeric
// characters such as "<" or "%" are not accepted.
func (t Text) Float() (float64, bool) {
	v, err := strconv.ParseFloat(t.String(), 64)
	if err != nil {
		return 0, false
	}

	return v, true
}

// Or returns the text, or fallback when the text is empty.
func (t Text) Or(fallback string) string {
	if s := t.String(); s != "" {
		return s
	}

	return fallback
}

// TextList is a list of Text that also accepts a single scalar or null.
type TextList []Text

// UnmarshalJSON implements json.Unmarshaler.
func (l *TextList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	if data[0] != '[' {
		var single Text
		if err := single.UnmarshalJSON(data); err != nil {
			return err
		}

		*l = TextList{single}

		return nil
	}

	var items []Text
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}

	*l = items

	return nil
}

// Strings returns the non-empty entries as plain strings.
func (l TextList) Strings() []string {
	out := make([]string, 0, len(l))
	for _, item := range l {
		if s := item.String(); s != "" {
			out = append(out, s)
		}
	}

	return out
}
