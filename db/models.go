/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"strconv"
	"strings"
)

// Gender represents biological sex for medical reference ranges
type Gender string

// Gender values represent supported biological-sex categories.
const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderUnisex Gender = "Unisex" // For ranges that don't vary by gender
)

// ParseGender reads the sex printed on a report. Unknown values return "".
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male", "man":
		return GenderMale
	case "f", "female", "woman":
		return GenderFemale
	default:
		return ""
	}
}

// AgeRange represents age-based categorization for reference ranges
type AgeRange string

// AgeRange values represent supported age groups for lab ranges.
const (
	AgePediatric AgeRange = "Pediatric" // 0-17
	AgeAdult     AgeRange = "Adult"     // 18-49
	AgeMiddleAge AgeRange = "MiddleAge" // 50-64
	AgeSenior    AgeRange = "Senior"    // 65+
)

var ageRanges = []AgeRange{AgePediatric, AgeAdult, AgeMiddleAge, AgeSenior}

// AgeRangeFor returns the age range category of an age in years.
func AgeRangeFor(age int) AgeRange {
	switch {
	case age <= 17:
		return AgePediatric
	case age <= 49:
		return AgeAdult
	case age <= 64:
		return AgeMiddleAge
	default:
		return AgeSenior
	}
}

// AgeRangeFromText reads the leading number of an age such as "42 years".
// Reports without a readable age default to adult.
func AgeRangeFromText(s string) AgeRange {
	s = strings.TrimSpace(s)

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}

	age, err := strconv.Atoi(s[:end])
	if err != nil {
		return AgeAdult
	}

	return AgeRangeFor(age)
}
