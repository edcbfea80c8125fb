package review

import (
	"strings"
	"testing"
)

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		input string
		want  Severity
	}{
		{"CRITICAL", SeverityCritical},
		{"major", SeverityMajor},
		{" Minor ", SeverityMinor},
		{"SUGGESTION", SeveritySuggestion},
		{"", SeveritySuggestion},
		{"banana", SeveritySuggestion},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseSeverity(tt.input); got != tt.want {
				t.Errorf("ParseSeverity(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestSeverityAtLeast(t *testing.T) {
	if !SeverityCritical.AtLeast(SeverityMajor) {
		t.Error("CRITICAL should be at least MAJOR")
	}
	if !SeverityMajor.AtLeast(SeverityMajor) {
		t.Error("MAJOR should be at least MAJOR")
	}
	if SeverityMinor.AtLeast(SeverityMajor) {
		t.Error("MINOR should not be at least MAJOR")
	}
	if !SeveritySuggestion.AtLeast(SeveritySuggestion) {
		t.Error("SUGGESTION should be at least SUGGESTION")
	}
}

func TestWorstSeverity(t *testing.T) {
	tests := []struct {
		name     string
		findings []Finding
		want     Severity
	}{
		{
			name: "critical wins",
			findings: []Finding{
				{Severity: SeverityMinor},
				{Severity: SeverityCritical},
				{Severity: SeverityMajor},
			},
			want: SeverityCritical,
		},
		{
			name:     "empty defaults to suggestion",
			findings: nil,
			want:     SeveritySuggestion,
		},
		{
			name: "single finding",
			findings: []Finding{
				{Severity: SeverityMajor},
			},
			want: SeverityMajor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WorstSeverity(tt.findings); got != tt.want {
				t.Errorf("WorstSeverity = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestInlineBody(t *testing.T) {
	f := Finding{
		Severity: SeverityCritical,
		File:     "auth.go",
		Line:     42,
		Title:    "SQL injection",
		Detail:   "User input flows into the query.",
		Fix:      "Use a parameterized query.",
	}

	body := f.InlineBody()

	for _, want := range []string{"🔴", "**CRITICAL**", "SQL injection", "User input flows into the query.", "**Suggested fix:** Use a parameterized query."} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestInlineBodyOmitsEmptyParts(t *testing.T) {
	f := Finding{Severity: SeverityMinor, Title: "Unchecked error"}

	body := f.InlineBody()

	if strings.Contains(body, "Suggested fix") {
		t.Errorf("body should omit fix section when empty:\n%s", body)
	}
	if strings.Contains(body, "\n\n\n") {
		t.Errorf("body has empty sections:\n%s", body)
	}
}

func TestBuildFallbackBody(t *testing.T) {
	findings := []Finding{
		{Severity: SeverityMajor, File: "a.go", Line: 10, Title: "First", Detail: "d1", Fix: "f1"},
		{Severity: SeveritySuggestion, File: "b.go", Title: "Second", Detail: "d2"},
	}

	body := BuildFallbackBody(findings)

	if !strings.HasPrefix(body, fallbackHeader) {
		t.Errorf("body missing header:\n%s", body)
	}
	if !strings.Contains(body, "`a.go` L10") {
		t.Errorf("body missing located finding:\n%s", body)
	}
	// The second finding has no line; only the path is rendered.
	if !strings.Contains(body, "`b.go` —") {
		t.Errorf("body missing line-less finding:\n%s", body)
	}
	if !strings.Contains(body, "**Suggested fix:** f1") {
		t.Errorf("body missing fix:\n%s", body)
	}
}

func TestBuildFallbackBodyEmpty(t *testing.T) {
	if body := BuildFallbackBody(nil); body != "" {
		t.Errorf("expected empty body for no findings, got %q", body)
	}
}

func TestBuildNoFindingsBody(t *testing.T) {
	t.Run("parsed cleanly", func(t *testing.T) {
		body := BuildNoFindingsBody("ignored raw text", true)
		if !strings.Contains(body, "LGTM") {
			t.Errorf("expected LGTM body, got %q", body)
		}
	})

	t.Run("parse failed surfaces raw text", func(t *testing.T) {
		body := BuildNoFindingsBody("the model rambled here", false)
		if !strings.Contains(body, "the model rambled here") {
			t.Errorf("expected raw text in body, got %q", body)
		}
	})

	t.Run("parse failed with empty text", func(t *testing.T) {
		body := BuildNoFindingsBody("   ", false)
		if !strings.Contains(body, "could not be generated") {
			t.Errorf("expected placeholder body, got %q", body)
		}
	})
}
