// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"testing"

	"github.com/humaidq/labwave/report"
)

func TestLookupReferenceRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		test   string
		unit   string
		demo   report.Demographics
		want   string
		wantOK bool
	}{
		{name: "male adult", test: "Hemoglobin", unit: "g/dL", demo: report.Demographics{Age: "35", Sex: "Male"}, want: "13.2-16.6 g/dL", wantOK: true},
		{name: "female by alias", test: "HGB", demo: report.Demographics{Age: "35 years", Sex: "F"}, want: "11.6-15 g/dL", wantOK: true},
		{name: "unknown sex on sexed test", test: "Hemoglobin", demo: report.Demographics{Age: "35"}},
		{name: "unisex without sex", test: "Sodium", unit: "mmol/L", want: "136-145 mmol/L", wantOK: true},
		{name: "unit mismatch", test: "Glucose", unit: "mmol/L"},
		{name: "parenthetical alias", test: "SGPT (ALT), Serum", unit: "U/L", demo: report.Demographics{Age: "40", Sex: "male"}, want: "10-50 IU/L", wantOK: true},
		{name: "open lower bound", test: "LDL Cholesterol", unit: "mg/dL", want: "0-100 mg/dL", wantOK: true},
		{name: "open upper bound", test: "HDL", demo: report.Demographics{Sex: "Male"}},
		{name: "pediatric", test: "WBC", unit: "x10^3/uL", demo: report.Demographics{Age: "9"}, want: "4.5-13 ×10³/μL", wantOK: true},
		{name: "unknown test", test: "Unobtainium"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := LookupReferenceRange(tt.test, tt.unit, tt.demo)
			if ok != tt.wantOK || got != tt.want {
				t.Fatalf("LookupReferenceRange(%q, %q) = (%q, %v), want (%q, %v)",
					tt.test, tt.unit, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestAgeRangeFromText(t *testing.T) {
	t.Parallel()

	tests := map[string]AgeRange{
		"":         AgeAdult,
		"unknown":  AgeAdult,
		"17":       AgePediatric,
		"18 years": AgeAdult,
		"50Y":      AgeMiddleAge,
		"64":       AgeMiddleAge,
		"65":       AgeSenior,
	}

	for in, want := range tests {
		if got := AgeRangeFromText(in); got != want {
			t.Fatalf("AgeRangeFromText(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestReferenceTableCoversEveryAge(t *testing.T) {
	t.Parallel()

	for _, test := range ReferenceTests() {
		for _, age := range ageRanges {
			found := false

			for _, r := range test.Ranges {
				if r.Age == age {
					found = true
					break
				}
			}

			if !found {
				t.Fatalf("%s has no range for %s", test.Name, age)
			}
		}
	}
}

func TestReferenceAliasesAreNormalized(t *testing.T) {
	t.Parallel()

	for _, test := range ReferenceTests() {
		for _, alias := range test.Aliases {
			if normalizeTestName(alias) != alias {
				t.Fatalf("alias %q of %s is not normalized", alias, test.Name)
			}
		}
	}
}
