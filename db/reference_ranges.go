/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/humaidq/labwave/report"
)

// Range is the reference interval of a test for one demographic. A nil bound
// is open.
type Range struct {
	Age    AgeRange
	Gender Gender
	Min    *float64
	Max    *float64
}

// ReferenceTest is a lab test with its built-in reference ranges. Aliases
// are normalized names the test is also reported under.
type ReferenceTest struct {
	Name    string
	Unit    string
	Aliases []string
	Ranges  []Range
}

func ptr(v float64) *float64 {
	return &v
}

// every returns the same unisex interval for all age groups.
func every(lo, hi *float64) []Range {
	ranges := make([]Range, 0, len(ageRanges))
	for _, age := range ageRanges {
		ranges = append(ranges, Range{age, GenderUnisex, lo, hi})
	}

	return ranges
}

// ReferenceTests returns the built-in reference table.
func ReferenceTests() []ReferenceTest {
	return referenceTests
}

var referenceTests = []ReferenceTest{
	{
		Name: "White blood cells", Unit: "×10³/μL",
		Aliases: []string{"wbc", "whitebloodcellcount", "totalleukocytecount", "tlc", "leukocytes"},
		Ranges: []Range{
			{AgePediatric, GenderUnisex, ptr(4.5), ptr(13.0)},
			{AgeAdult, GenderUnisex, ptr(4.5), ptr(11.0)},
			{AgeMiddleAge, GenderUnisex, ptr(4.5), ptr(11.0)},
			{AgeSenior, GenderUnisex, ptr(4.0), ptr(10.5)},
		},
	},
	{
		Name: "Red blood cells", Unit: "×10⁶/μL",
		Aliases: []string{"rbc", "redbloodcellcount", "erythrocytes"},
		Ranges: []Range{
			{AgePediatric, GenderUnisex, ptr(4.0), ptr(5.5)},
			{AgeAdult, GenderMale, ptr(4.35), ptr(5.65)},
			{AgeAdult, GenderFemale, ptr(3.92), ptr(5.13)},
			{AgeMiddleAge, GenderMale, ptr(4.30), ptr(5.60)},
			{AgeMiddleAge, GenderFemale, ptr(3.90), ptr(5.10)},
			{AgeSenior, GenderMale, ptr(4.20), ptr(5.50)},
			{AgeSenior, GenderFemale, ptr(3.80), ptr(5.00)},
		},
	},
	{
		Name: "Hemoglobin", Unit: "g/dL",
		Aliases: []string{"hb", "hgb", "haemoglobin"},
		Ranges: []Range{
			{AgePediatric, GenderUnisex, ptr(10.0), ptr(15.5)},
			{AgeAdult, GenderMale, ptr(13.2), ptr(16.6)},
			{AgeAdult, GenderFemale, ptr(11.6), ptr(15.0)},
			{AgeMiddleAge, GenderMale, ptr(13.0), ptr(16.5)},
			{AgeMiddleAge, GenderFemale, ptr(11.5), ptr(14.8)},
			{AgeSenior, GenderMale, ptr(12.4), ptr(16.0)},
			{AgeSenior, GenderFemale, ptr(11.7), ptr(14.5)},
		},
	},
	{
		Name: "Hematocrit", Unit: "%",
		Aliases: []string{"hct", "pcv", "haematocrit", "packedcellvolume"},
		Ranges: []Range{
			{AgePediatric, GenderUnisex, ptr(31.0), ptr(45.0)},
			{AgeAdult, GenderMale, ptr(41.0), ptr(50.0)},
			{AgeAdult, GenderFemale, ptr(36.0), ptr(44.0)},
			{AgeMiddleAge, GenderMale, ptr(40.0), ptr(50.0)},
			{AgeMiddleAge, GenderFemale, ptr(36.0), ptr(44.0)},
			{AgeSenior, GenderMale, ptr(38.0), ptr(49.0)},
			{AgeSenior, GenderFemale, ptr(35.0), ptr(43.0)},
		},
	},
	{
		Name: "M.C.V", Unit: "fL",
		Aliases: []string{"meancorpuscularvolume"},
		Ranges: []Range{
			{AgePediatric, GenderUnisex, ptr(78.0), ptr(95.0)},
			{AgeAdult, GenderUnisex, ptr(80.0), ptr(96.0)},
			{AgeMiddleAge, GenderUnisex, ptr(80.0), ptr(96.0)},
			{AgeSenior, GenderUnisex, ptr(80.0), ptr(96.0)},
		},
	},
	{
		Name: "M.C.H", Unit: "pg",
		Aliases: []string{"meancorpuscularhemoglobin"},
		Ranges: every(ptr(27.0), ptr(33.0)),
	},
	{
		Name: "M.C.H.C", Unit: "g/dL",
		Aliases: []string{"meancorpuscularhemoglobinconcentration"},
		Ranges: every(ptr(33.0), ptr(36.0)),
	},
	{
		Name: "RDW - CV", Unit: "%",
		Aliases: []string{"rdw", "rdwcv"},
		Ranges: every(ptr(11.5), ptr(14.5)),
	},
	{
		Name: "Platelets", Unit: "×10³/μL",
		Aliases: []string{"plt", "plateletcount"},
		Ranges: []Range{
			{AgePediatric, GenderUnisex, ptr(150.0), ptr(450.0)},
			{AgeAdult, GenderUnisex, ptr(150.0), ptr(450.0)},
			{AgeMiddleAge, GenderUnisex, ptr(150.0), ptr(450.0)},
			{AgeSenior, GenderUnisex, ptr(140.0), ptr(400.0)},
		},
	},
	{
		Name: "M.P.V", Unit: "fL",
		Aliases: []string{"meanplateletvolume"},
		Ranges: every(ptr(7.5), ptr(11.5)),
	},
	{
		Name: "Neutrophils", Unit: "%",
		Ranges: every(ptr(40.0), ptr(70.0)),
	},
	{
		Name: "Neutrophils (Absolute)", Unit: "×10³/μL",
		Ranges: every(ptr(1.8), ptr(7.8)),
	},
	{
		Name: "Lymphocytes", Unit: "%",
		Ranges: every(ptr(20.0), ptr(40.0)),
	},
	{
		Name: "Lymphocytes (Absolute)", Unit: "×10³/μL",
		Ranges: every(ptr(1.0), ptr(4.8)),
	},
	{
		Name: "Monocytes", Unit: "%",
		Ranges: every(ptr(2.0), ptr(8.0)),
	},
	{
		Name: "Monocytes (Absolute)", Unit: "×10³/μL",
		Ranges: every(ptr(0.2), ptr(1.0)),
	},
	{
		Name: "Eosinophils", Unit: "%",
		Ranges: every(ptr(1.0), ptr(4.0)),
	},
	{
		Name: "Eosinophils (Absolute)", Unit: "×10³/μL",
		Ranges: every(ptr(0.0), ptr(0.5)),
	},
	{
		Name: "Basophils", Unit: "%",
		Ranges: every(ptr(0.5), ptr(1.0)),
	},
	{
		Name: "Basophils (Absolute)", Unit: "×10³/μL",
		Ranges: every(ptr(0.0), ptr(0.2)),
	},
	{
		Name: "Glucose fasting FBS", Unit: "mg/dL",
		Aliases: []string{"glucose", "fastingglucose", "fbs", "fastingbloodsugar", "fastingplasmaglucose", "bloodglucose"},
		Ranges: []Range{
			{AgePediatric, GenderUnisex, ptr(70.0), ptr(100.0)},
			{AgeAdult, GenderUnisex, ptr(70.0), ptr(99.0)},
			{AgeMiddleAge, GenderUnisex, ptr(70.0), ptr(99.0)},
			{AgeSenior, GenderUnisex, ptr(70.0), ptr(99.0)},
		},
	},
	{
		Name: "Uric Acid", Unit: "umol/L",
		Aliases: []string{"urate"},
		Ranges: []Range{
			{AgePediatric, GenderUnisex, ptr(120.0), ptr(330.0)},
			{AgeAdult, GenderMale, ptr(200.0), ptr(420.0)},
			{AgeAdult, GenderFemale, ptr(140.0), ptr(360.0)},
			{AgeMiddleAge, GenderMale, ptr(200.0), ptr(420.0)},
			{AgeMiddleAge, GenderFemale, ptr(140.0), ptr(360.0)},
			{AgeSenior, GenderMale, ptr(210.0), ptr(440.0)},
			{AgeSenior, GenderFemale, ptr(140.0), ptr(360.0)},
		},
	},
	{
		Name: "Creatinine", Unit: "mg/dL",
		Aliases: []string{"serumcreatinine"},
		Ranges: []Range{
			{AgePediatric, GenderUnisex, ptr(0.3), ptr(0.7)},
			{AgeAdult, GenderMale, ptr(0.74), ptr(1.35)},
			{AgeAdult, GenderFemale, ptr(0.59), ptr(1.04)},
			{AgeMiddleAge, GenderMale, ptr(0.74), ptr(1.35)},
			{AgeMiddleAge, GenderFemale, ptr(0.59), ptr(1.04)},
			{AgeSenior, GenderMale, ptr(0.70), ptr(1.30)},
			{AgeSenior, GenderFemale, ptr(0.59), ptr(1.04)},
		},
	},
	{
		Name: "Calcium", Unit: "mmol/L",
		Ranges: []Range{
			{AgePediatric, GenderUnisex, ptr(2.20), ptr(2.70)},
			{AgeAdult, GenderUnisex, ptr(2.15), ptr(2.55)},
			{AgeMiddleAge, GenderUnisex, ptr(2.15), ptr(2.55)},
			{AgeSenior, GenderUnisex, ptr(2.15), ptr(2.55)},
		},
	},
	{
		Name: "Bicarbonate", Unit: "mmol/L",
		Aliases: []string{"hco3", "co2"},
		Ranges: []Range{
			{AgePediatric, GenderUnisex, ptr(18.0), ptr(25.0)},
			{AgeAdult, GenderUnisex, ptr(22.0), ptr(29.0)},
			{AgeMiddleAge, GenderUnisex, ptr(22.0), ptr(29.0)},
			{AgeSenior, GenderUnisex, ptr(22.0), ptr(29.0)},
		},
	},
	{
		Name: "Sodium", Unit: "mmol/L",
		Aliases: []string{"na"},
		Ranges: every(ptr(136.0), ptr(145.0)),
	},
	{
		Name: "Potassium", Unit: "mmol/L",
		Aliases: []string{"k"},
		Ranges: every(ptr(3.5), ptr(5.1)),
	},
	{
		Name: "Chloride", Unit: "mmol/L",
		Aliases: []string{"cl"},
		Ranges: every(ptr(98.0), ptr(107.0)),
	},
	{
		Name: "Total Cholesterol", Unit: "mg/dL",
		Aliases: []string{"cholesterol", "cholesteroltotal"},
		Ranges: every(nil, ptr(200.0)),
	},
	{
		Name: "LDL Cholesterol", Unit: "mg/dL",
		Aliases: []string{"ldl", "ldlc"},
		Ranges: []Range{
			{AgePediatric, GenderUnisex, nil, ptr(110.0)},
			{AgeAdult, GenderUnisex, nil, ptr(100.0)},
			{AgeMiddleAge, GenderUnisex, nil, ptr(100.0)},
			{AgeSenior, GenderUnisex, nil, ptr(100.0)},
		},
	},
	{
		Name: "HDL Cholesterol", Unit: "mg/dL",
		Aliases: []string{"hdl", "hdlc"},
		Ranges: []Range{
			{AgePediatric, GenderUnisex, ptr(40.0), nil},
			{AgeAdult, GenderMale, ptr(40.0), nil},
			{AgeAdult, GenderFemale, ptr(50.0), nil},
			{AgeMiddleAge, GenderMale, ptr(40.0), nil},
			{AgeMiddleAge, GenderFemale, ptr(50.0), nil},
			{AgeSenior, GenderMale, ptr(40.0), nil},
			{AgeSenior, GenderFemale, ptr(50.0), nil},
		},
	},
	{
		Name: "Triglycerides", Unit: "mg/dL",
		Aliases: []string{"tg", "triglyceride"},
		Ranges: every(nil, ptr(150.0)),
	},
	{
		Name: "Non-HDL Cholesterol", Unit: "mg/dL",
		Ranges: every(nil, ptr(130.0)),
	},
	{
		Name: "Apolipoprotein B", Unit: "mg/dL",
		Aliases: []string{"apob"},
		Ranges: every(nil, ptr(90.0)),
	},
	{
		Name: "TG/HDL (Calc)", Unit: "",
		Ranges: every(nil, ptr(3.0)),
	},
	{
		Name: "Atherogenic Coefficient", Unit: "",
		Ranges: every(nil, ptr(3.0)),
	},
	{
		Name: "SGPT (ALT), Serum", Unit: "IU/L",
		Aliases: []string{"alt", "sgpt", "alaninetransaminase", "alanineaminotransferase"},
		Ranges: []Range{
			{AgePediatric, GenderMale, ptr(10.0), ptr(35.0)},
			{AgePediatric, GenderFemale, ptr(10.0), ptr(30.0)},
			{AgeAdult, GenderMale, ptr(10.0), ptr(50.0)},
			{AgeAdult, GenderFemale, ptr(10.0), ptr(35.0)},
			{AgeMiddleAge, GenderMale, ptr(10.0), ptr(50.0)},
			{AgeMiddleAge, GenderFemale, ptr(10.0), ptr(35.0)},
			{AgeSenior, GenderMale, ptr(10.0), ptr(50.0)},
			{AgeSenior, GenderFemale, ptr(10.0), ptr(35.0)},
		},
	},
	{
		Name: "SGOT (AST)", Unit: "IU/L",
		Aliases: []string{"ast", "sgot", "aspartatetransaminase", "aspartateaminotransferase"},
		Ranges: []Range{
			{AgePediatric, GenderUnisex, ptr(15.0), ptr(50.0)},
			{AgeAdult, GenderMale, ptr(10.0), ptr(40.0)},
			{AgeAdult, GenderFemale, ptr(10.0), ptr(35.0)},
			{AgeMiddleAge, GenderMale, ptr(10.0), ptr(40.0)},
			{AgeMiddleAge, GenderFemale, ptr(10.0), ptr(35.0)},
			{AgeSenior, GenderMale, ptr(10.0), ptr(40.0)},
			{AgeSenior, GenderFemale, ptr(10.0), ptr(35.0)},
		},
	},
	{
		Name: "GGT", Unit: "IU/L",
		Aliases: []string{"gammagt", "gammaglutamyltransferase"},
		Ranges: []Range{
			{AgePediatric, GenderMale, ptr(10.0), ptr(71.0)},
			{AgePediatric, GenderFemale, ptr(6.0), ptr(42.0)},
			{AgeAdult, GenderMale, ptr(10.0), ptr(71.0)},
			{AgeAdult, GenderFemale, ptr(6.0), ptr(42.0)},
			{AgeMiddleAge, GenderMale, ptr(10.0), ptr(71.0)},
			{AgeMiddleAge, GenderFemale, ptr(6.0), ptr(42.0)},
			{AgeSenior, GenderMale, ptr(10.0), ptr(71.0)},
			{AgeSenior, GenderFemale, ptr(6.0), ptr(42.0)},
		},
	},
	{
		Name: "Bilirubin Total", Unit: "mg/dL",
		Aliases: []string{"totalbilirubin", "bilirubin"},
		Ranges: every(ptr(0.3), ptr(1.2)),
	},
	{
		Name: "Bilirubin Direct", Unit: "mg/dL",
		Aliases: []string{"directbilirubin"},
		Ranges: every(nil, ptr(0.3)),
	},
	{
		Name: "Bilirubin Indirect", Unit: "mg/dL",
		Aliases: []string{"indirectbilirubin"},
		Ranges: every(ptr(0.2), ptr(0.8)),
	},
	{
		Name: "Alkaline Phosphatase (ALP)", Unit: "IU/L",
		Aliases: []string{"alp", "alkalinephosphatase"},
		Ranges: []Range{
			{AgePediatric, GenderUnisex, ptr(100.0), ptr(500.0)},
			{AgeAdult, GenderUnisex, ptr(40.0), ptr(130.0)},
			{AgeMiddleAge, GenderUnisex, ptr(40.0), ptr(130.0)},
			{AgeSenior, GenderUnisex, ptr(40.0), ptr(130.0)},
		},
	},
	{
		Name: "Albumin", Unit: "g/dL",
		Ranges: []Range{
			{AgePediatric, GenderUnisex, ptr(3.5), ptr(5.0)},
			{AgeAdult, GenderUnisex, ptr(3.5), ptr(5.2)},
			{AgeMiddleAge, GenderUnisex, ptr(3.5), ptr(5.2)},
			{AgeSenior, GenderUnisex, ptr(3.2), ptr(4.8)},
		},
	},
	{
		Name: "Total Protein", Unit: "g/dL",
		Ranges: every(ptr(6.4), ptr(8.3)),
	},
	{
		Name: "Globulin", Unit: "g/dL",
		Ranges: every(ptr(2.0), ptr(3.5)),
	},
	{
		Name: "Vitamin D", Unit: "nmol/L",
		Aliases: []string{"25ohvitamind", "vitamind3", "25hydroxyvitamind"},
		Ranges: every(ptr(75.0), ptr(250.0)),
	},
	{
		Name: "Vitamin B12", Unit: "pmol/L",
		Aliases: []string{"b12", "cobalamin"},
		Ranges: every(ptr(150.0), ptr(650.0)),
	},
	{
		Name: "Magnesium, Serum", Unit: "mmol/L",
		Aliases: []string{"magnesium", "mg"},
		Ranges: every(ptr(0.65), ptr(1.05)),
	},
	{
		Name: "Iron, Serum", Unit: "umol/L",
		Aliases: []string{"iron", "serumiron"},
		Ranges: []Range{
			{AgePediatric, GenderMale, ptr(11.0), ptr(28.0)},
			{AgePediatric, GenderFemale, ptr(6.6), ptr(26.0)},
			{AgeAdult, GenderMale, ptr(11.0), ptr(28.0)},
			{AgeAdult, GenderFemale, ptr(6.6), ptr(26.0)},
			{AgeMiddleAge, GenderMale, ptr(11.0), ptr(28.0)},
			{AgeMiddleAge, GenderFemale, ptr(6.6), ptr(26.0)},
			{AgeSenior, GenderMale, ptr(11.0), ptr(28.0)},
			{AgeSenior, GenderFemale, ptr(6.6), ptr(26.0)},
		},
	},
	{
		Name: "Ferritin", Unit: "ng/mL",
		Ranges: []Range{
			{AgePediatric, GenderMale, ptr(24.0), ptr(336.0)},
			{AgePediatric, GenderFemale, ptr(11.0), ptr(307.0)},
			{AgeAdult, GenderMale, ptr(24.0), ptr(336.0)},
			{AgeAdult, GenderFemale, ptr(11.0), ptr(307.0)},
			{AgeMiddleAge, GenderMale, ptr(24.0), ptr(336.0)},
			{AgeMiddleAge, GenderFemale, ptr(11.0), ptr(307.0)},
			{AgeSenior, GenderMale, ptr(24.0), ptr(336.0)},
			{AgeSenior, GenderFemale, ptr(11.0), ptr(307.0)},
		},
	},
	{
		Name: "Zinc", Unit: "umol/L",
		Ranges: every(ptr(10.0), ptr(18.0)),
	},
	{
		Name: "TSH", Unit: "uIU/mL",
		Aliases: []string{"thyroidstimulatinghormone"},
		Ranges: []Range{
			{AgePediatric, GenderUnisex, ptr(0.7), ptr(6.0)},
			{AgeAdult, GenderUnisex, ptr(0.40), ptr(4.50)},
			{AgeMiddleAge, GenderUnisex, ptr(0.40), ptr(4.50)},
			{AgeSenior, GenderUnisex, ptr(0.40), ptr(5.80)},
		},
	},
	{
		Name: "Haemoglobin HbA1c", Unit: "%",
		Aliases: []string{"hba1c", "a1c", "glycatedhemoglobin", "hemoglobina1c"},
		Ranges: every(nil, ptr(5.7)),
	},
	{
		Name: "ESR", Unit: "mm/h",
		Aliases: []string{"erythrocytesedimentationrate"},
		Ranges: []Range{
			{AgePediatric, GenderUnisex, ptr(0.0), ptr(10.0)},
			{AgeAdult, GenderMale, ptr(0.0), ptr(15.0)},
			{AgeAdult, GenderFemale, ptr(0.0), ptr(20.0)},
			{AgeMiddleAge, GenderMale, ptr(0.0), ptr(20.0)},
			{AgeMiddleAge, GenderFemale, ptr(0.0), ptr(30.0)},
			{AgeSenior, GenderMale, ptr(0.0), ptr(30.0)},
			{AgeSenior, GenderFemale, ptr(0.0), ptr(40.0)},
		},
	},
}

var (
	parenthetical = regexp.MustCompile(`\([^)]*\)`)
	nonAlnum      = regexp.MustCompile(`[^a-z0-9]+`)

	testIndex = sync.OnceValue(func() map[string]*ReferenceTest {
		idx := make(map[string]*ReferenceTest, len(referenceTests)*3)

		for i := range referenceTests {
			t := &referenceTests[i]
			idx[normalizeTestName(t.Name)] = t

			for _, alias := range t.Aliases {
				if _, taken := idx[alias]; !taken {
					idx[alias] = t
				}
			}
		}

		return idx
	})
)

func normalizeTestName(name string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(name), "")
}

// FindReferenceTest looks a test up by name or alias. Names are compared
// without case, punctuation, a parenthetical or a trailing specimen such as
// ", Serum".
func FindReferenceTest(name string) (*ReferenceTest, bool) {
	idx := testIndex()
	lower := strings.ToLower(strings.TrimSpace(name))

	candidates := []string{lower, parenthetical.ReplaceAllString(lower, "")}

	// "SGPT (ALT)" is also known by the parenthetical.
	if m := parenthetical.FindString(lower); m != "" {
		candidates = append(candidates, strings.Trim(m, "()"))
	}

	for _, c := range candidates {
		if before, _, ok := strings.Cut(c, ","); ok {
			candidates = append(candidates, before)
		}
	}

	for _, c := range candidates {
		for _, key := range []string{normalizeTestName(c), stripSpecimen(normalizeTestName(c))} {
			if key == "" {
				continue
			}

			if t, ok := idx[key]; ok {
				return t, true
			}
		}
	}

	return nil, false
}

func stripSpecimen(key string) string {
	for _, s := range []string{"serum", "plasma", "blood", "total"} {
		key = strings.TrimPrefix(key, s)
		key = strings.TrimSuffix(key, s)
	}

	return key
}

// RangeFor returns the interval for a demographic. An exact gender match is
// preferred over a unisex one; without a known gender only unisex intervals
// apply.
func (t *ReferenceTest) RangeFor(age AgeRange, gender Gender) (Range, bool) {
	var unisex *Range

	for i := range t.Ranges {
		r := &t.Ranges[i]
		if r.Age != age {
			continue
		}

		if gender != "" && r.Gender == gender {
			return *r, true
		}

		if r.Gender == GenderUnisex {
			unisex = r
		}
	}

	if unisex == nil {
		return Range{}, false
	}

	return *unisex, true
}

func normalizeUnit(unit string) string {
	u := strings.ToLower(strings.Join(strings.Fields(unit), ""))
	u = strings.NewReplacer("µ", "u", "μ", "u", "x10", "×10", "^", "", "³", "3", "⁶", "6").Replace(u)

	if u == "iu/l" {
		return "u/l"
	}

	return u
}

// LookupReferenceRange returns the built-in range text for a test, such as
// "13.2-16.6 g/dL". unit is the unit printed on the report; when it is given
// and differs from the table's, no range is returned. Open-ended upper
// bounds are not returned since they cannot be charted.
func LookupReferenceRange(testName, unit string, demo report.Demographics) (string, bool) {
	t, ok := FindReferenceTest(testName)
	if !ok {
		return "", false
	}

	if unit != "" && normalizeUnit(unit) != normalizeUnit(t.Unit) {
		return "", false
	}

	r, ok := t.RangeFor(AgeRangeFromText(demo.Age.String()), ParseGender(demo.Sex.String()))
	if !ok || r.Max == nil {
		return "", false
	}

	lo := 0.0
	if r.Min != nil {
		lo = *r.Min
	}

	text := formatBound(lo) + "-" + formatBound(*r.Max)
	if t.Unit != "" {
		text += " " + t.Unit
	}

	return text, true
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
