package labs

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	valuePattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	rangePattern = regexp.MustCompile(`-?\d+(?:\.\d+)?\s*(?:-|–|—|to|TO)\s*-?\d+(?:\.\d+)?`)
)

type detailField struct {
	set      func(*PatientDetails, string)
	patterns []*regexp.Regexp
}

// detail builds a case-insensitive label pattern whose value runs to the end of
// the line or to the next gap of two or more spaces.
func detail(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)` + label + `\s*[:\-]\s*(.+?)(?:\s{2,}|$)`)
}

var detailFields = []detailField{
	{
		set:      func(d *PatientDetails, v string) { d.Name = v },
		patterns: []*regexp.Regexp{detail(`Patient Name`), detail(`Name`)},
	},
	{
		set:      func(d *PatientDetails, v string) { d.Age = v },
		patterns: []*regexp.Regexp{detail(`Age`)},
	},
	{
		set:      func(d *PatientDetails, v string) { d.Gender = v },
		patterns: []*regexp.Regexp{detail(`Gender`), detail(`Sex`)},
	},
	{
		set:      func(d *PatientDetails, v string) { d.PatientID = v },
		patterns: []*regexp.Regexp{detail(`Patient ID`), detail(`ID`)},
	},
	{
		set:      func(d *PatientDetails, v string) { d.DateOfReport = v },
		patterns: []*regexp.Regexp{detail(`Date`), detail(`Date of Report`)},
	},
	{
		set:      func(d *PatientDetails, v string) { d.ReferringDoctor = v },
		patterns: []*regexp.Regexp{detail(`Ref(?:erring)? Doctor`)},
	},
	{
		set:      func(d *PatientDetails, v string) { d.LaboratoryName = v },
		patterns: []*regexp.Regexp{detail(`Laboratory`), detail(`Lab Name`)},
	},
}

// header lines contain one of these words and are never parsed as tests.
var headerKeywords = []string{"patient", "name", "referring", "doctor", "lab", "report", "date", "age", "gender"}

// Parse extracts patient details and flagged lab tests from report text.
// Parsing is best-effort: unrecognized lines are skipped.
func Parse(text string) Report {
	return Report{
		PatientDetails: parseDetails(text),
		Tests:          parseTests(text),
	}
}

func parseDetails(text string) PatientDetails {
	var d PatientDetails
	for _, field := range detailFields {
		for _, p := range field.patterns {
			if m := p.FindStringSubmatch(text); m != nil {
				field.set(&d, cleanValue(m[1]))
				break
			}
		}
	}
	return d
}

func parseTests(text string) []Test {
	tests := []Test{}
	for raw := range strings.Lines(text) {
		line := strings.Join(strings.Fields(raw), " ")
		if line == "" {
			continue
		}
		if t, ok := parseTestLine(line); ok {
			tests = append(tests, t)
		}
	}
	return tests
}

func parseTestLine(line string) (Test, bool) {
	lowered := strings.ToLower(line)
	for _, kw := range headerKeywords {
		if strings.Contains(lowered, kw) {
			return Test{}, false
		}
	}

	if !strings.ContainsFunc(line, unicode.IsDigit) {
		return Test{}, false
	}

	loc := valuePattern.FindStringIndex(line)
	if loc == nil {
		return Test{}, false
	}

	name := strings.Trim(line[:loc[0]], "-: ")
	if len(name) < 2 {
		return Test{}, false
	}

	value := line[loc[0]:loc[1]]
	remainder := strings.TrimSpace(line[loc[1]:])

	var reference, unit string
	if r := rangePattern.FindStringIndex(remainder); r != nil {
		reference = strings.TrimSpace(remainder[r[0]:r[1]])
		unit = strings.Trim(remainder[:r[0]], "-: ")
	} else {
		unit = remainder
	}

	return Test{
		Name:           name,
		Value:          value,
		Unit:           unit,
		ReferenceRange: reference,
		Flag:           ComputeFlag(value, reference),
		RawTextSnippet: line,
	}, true
}

func cleanValue(v string) string {
	return strings.Trim(strings.TrimSpace(v), "-:")
}
