// Package review implements the pull request review pipeline: turning model
// findings into position-addressed review comments and posting them.
package review

import "strings"

// Severity classifies a finding. The values are ordered: SUGGESTION < MINOR
// < MAJOR < CRITICAL.
type Severity string

const (
	SeveritySuggestion Severity = "SUGGESTION"
	SeverityMinor      Severity = "MINOR"
	SeverityMajor      Severity = "MAJOR"
	SeverityCritical   Severity = "CRITICAL"
)

var severityRank = map[Severity]int{
	SeveritySuggestion: 0,
	SeverityMinor:      1,
	SeverityMajor:      2,
	SeverityCritical:   3,
}

var severityMarker = map[Severity]string{
	SeverityCritical:   "🔴",
	SeverityMajor:      "🟠",
	SeverityMinor:      "🟡",
	SeveritySuggestion: "🟢",
}

// ParseSeverity normalizes a model-supplied severity string. Unknown or
// empty values map to SUGGESTION rather than failing the finding.
func ParseSeverity(s string) Severity {
	sev := Severity(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := severityRank[sev]; ok {
		return sev
	}
	return SeveritySuggestion
}

// Marker returns the colored marker shown before the severity label in
// comment bodies.
func (s Severity) Marker() string {
	return severityMarker[s]
}

// AtLeast reports whether s is at or above the given level.
func (s Severity) AtLeast(level Severity) bool {
	return severityRank[s] >= severityRank[level]
}

// WorstSeverity returns the highest severity among the findings, or
// SUGGESTION when there are none.
func WorstSeverity(findings []Finding) Severity {
	worst := SeveritySuggestion
	for _, f := range findings {
		if severityRank[f.Severity] > severityRank[worst] {
			worst = f.Severity
		}
	}
	return worst
}
