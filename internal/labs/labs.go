// Package labs parses extracted report text into patient details and lab tests,
// and flags each test against its reference range.
package labs

// Flag classifies a test value against its reference range.
type Flag string

// Flag values. FlagNone means the value or range could not be compared.
const (
	FlagNone   Flag = ""
	FlagLow    Flag = "low"
	FlagNormal Flag = "normal"
	FlagHigh   Flag = "high"
)

// PatientDetails holds the header fields of a lab report. Fields not found are empty.
type PatientDetails struct {
	Name            string `json:"name"`
	Age             string `json:"age"`
	Gender          string `json:"gender"`
	PatientID       string `json:"patient_id"`
	DateOfReport    string `json:"date_of_report"`
	ReferringDoctor string `json:"referring_doctor"`
	LaboratoryName  string `json:"laboratory_name"`
}

// Test is one parsed lab test line.
type Test struct {
	Name           string `json:"name"`
	Value          string `json:"value"`
	Unit           string `json:"unit"`
	ReferenceRange string `json:"reference_range"`
	Flag           Flag   `json:"flag"`
	RawTextSnippet string `json:"raw_text_snippet"`
}

// Abnormal reports whether the test is flagged low or high.
func (t Test) Abnormal() bool {
	return t.Flag == FlagLow || t.Flag == FlagHigh
}

// Report is the structured view of a lab report's text.
type Report struct {
	PatientDetails PatientDetails `json:"patient_details"`
	Tests          []Test         `json:"tests"`
}

// Abnormal returns the tests flagged low or high, in report order.
func (r Report) Abnormal() []Test {
	var out []Test
	for _, t := range r.Tests {
		if t.Abnormal() {
			out = append(out, t)
		}
	}
	return out
}
