// Package resources is a small curated knowledge base of trusted health
// references. Entries are matched by keyword against analysis text and handed
// to the resource-finder stage so its links come from known organizations.
package resources

import (
	"fmt"
	"strings"
)

// Resource is one trusted reference.
type Resource struct {
	Topic        string   `json:"topic"`
	Organization string   `json:"organization"`
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	Keywords     []string `json:"-"`
}

var catalog = []Resource{
	{
		Topic:        "lipids",
		Organization: "American Heart Association",
		Title:        "Cholesterol",
		URL:          "https://www.heart.org/en/health-topics/cholesterol",
		Keywords:     []string{"lipid", "cholesterol", "ldl", "hdl", "triglyceride"},
	},
	{
		Topic:        "anemia",
		Organization: "World Health Organization",
		Title:        "Anaemia",
		URL:          "https://www.who.int/health-topics/anaemia",
		Keywords:     []string{"anemia", "anaemia", "hemoglobin", "haemoglobin", "ferritin", "iron"},
	},
	{
		Topic:        "thyroid",
		Organization: "American Thyroid Association",
		Title:        "Patient Thyroid Information",
		URL:          "https://www.thyroid.org/patient-thyroid-information/",
		Keywords:     []string{"thyroid", "tsh", "t3", "t4"},
	},
	{
		Topic:        "diabetes",
		Organization: "American Diabetes Association",
		Title:        "Medication Management",
		URL:          "https://diabetes.org/diabetes/medication-management",
		Keywords:     []string{"diabetes", "glucose", "hba1c", "a1c", "insulin"},
	},
}

var fallback = Resource{
	Topic:        "general",
	Organization: "Centers for Disease Control and Prevention",
	Title:        "Laboratory Testing",
	URL:          "https://www.cdc.gov/lab/index.html",
}

// Fallback returns the general reference used when nothing matches.
func Fallback() Resource {
	return fallback
}

// Lookup returns the resources whose keywords appear in any of the texts,
// in catalog order. When nothing matches it returns the fallback alone.
func Lookup(texts ...string) []Resource {
	var b strings.Builder
	for _, t := range texts {
		b.WriteString(strings.ToLower(t))
		b.WriteByte('\n')
	}
	haystack := tokenize(b.String())

	var matches []Resource
	for _, r := range catalog {
		if r.matches(haystack) {
			matches = append(matches, r)
		}
	}

	if len(matches) == 0 {
		return []Resource{Fallback()}
	}
	return matches
}

// Format renders resources as a markdown bullet list for prompt context.
func Format(list []Resource) string {
	var b strings.Builder
	for _, r := range list {
		fmt.Fprintf(&b, "- %s: %s (%s)\n", r.Organization, r.Title, r.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r Resource) matches(tokens map[string]struct{}) bool {
	for _, kw := range r.Keywords {
		for token := range tokens {
			if strings.HasPrefix(token, kw) {
				return true
			}
		}
	}
	return false
}

func tokenize(s string) map[string]struct{} {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		tokens[f] = struct{}{}
	}
	return tokens
}
