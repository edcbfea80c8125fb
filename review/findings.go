package review

import (
	"fmt"
	"strings"
)

// fallbackHeader opens the aggregated review comment carrying findings that
// could not be attached to a diff line.
const fallbackHeader = "### 🤖 AI Review (findings without a diff location)"

// noFindingsHeader opens the review comment posted when the model reports
// nothing actionable.
const noFindingsHeader = "### 🤖 AI Review"

// Finding is one issue reported by the model. Line is the right-hand (new
// file) line number; zero or negative means the model supplied none.
type Finding struct {
	Severity Severity
	File     string
	Line     int
	Title    string
	Detail   string
	Fix      string
}

// InlineBody renders the comment body for a finding attached to a diff line.
func (f Finding) InlineBody() string {
	parts := []string{
		fmt.Sprintf("%s **%s** — %s", f.Severity.Marker(), f.Severity, f.Title),
	}
	if f.Detail != "" {
		parts = append(parts, f.Detail)
	}
	if f.Fix != "" {
		parts = append(parts, "**Suggested fix:** "+f.Fix)
	}
	return strings.Join(parts, "\n\n")
}

// fallbackLine renders one bullet for a finding that goes into the
// aggregated fallback comment instead of an inline comment.
func (f Finding) fallbackLine() string {
	where := "`" + f.File + "`"
	if f.Line > 0 {
		where += fmt.Sprintf(" L%d", f.Line)
	}
	line := fmt.Sprintf("- %s **%s** %s — %s\n  %s", f.Severity.Marker(), f.Severity, where, f.Title, f.Detail)
	if f.Fix != "" {
		line += "\n  **Suggested fix:** " + f.Fix
	}
	return line
}

// BuildFallbackBody aggregates unlocated findings into a single review body.
// Returns the empty string when there is nothing to report.
func BuildFallbackBody(findings []Finding) string {
	if len(findings) == 0 {
		return ""
	}
	lines := make([]string, len(findings))
	for i, f := range findings {
		lines[i] = f.fallbackLine()
	}
	return fallbackHeader + "\n\n" + strings.Join(lines, "\n")
}

// BuildSummaryBody renders all findings as a single review body, used when
// inline commenting is disabled.
func BuildSummaryBody(findings []Finding) string {
	lines := make([]string, len(findings))
	for i, f := range findings {
		lines[i] = f.fallbackLine()
	}
	return noFindingsHeader + "\n\n" + strings.Join(lines, "\n")
}

// BuildNoFindingsBody returns the review body posted when no findings were
// produced. If the model's output parsed cleanly the PR gets a clean bill;
// otherwise the raw text is surfaced so the run is not silently lost.
func BuildNoFindingsBody(rawText string, parsedSuccessfully bool) string {
	if parsedSuccessfully {
		return noFindingsHeader + "\n\nLGTM! 🎉 No issues found."
	}
	message := strings.TrimSpace(rawText)
	if message == "" {
		message = "The review could not be generated (no usable model response)."
	}
	return noFindingsHeader + "\n\n" + message
}

// BuildNoFilesBody returns the review body posted when no changed files
// survive filtering.
func BuildNoFilesBody() string {
	return noFindingsHeader + "\n\nNo reviewable files in this pull request."
}
