package review

import (
	"testing"
)

func TestExtractJSONBlock(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "fenced block",
			text: "Here is my review:\n```json\n[{\"file\": \"a.go\"}]\n```\nDone.",
			want: `[{"file": "a.go"}]`,
		},
		{
			name: "case insensitive fence",
			text: "```JSON\n[]\n```",
			want: "[]",
		},
		{
			name: "multiline content",
			text: "```json\n[\n  {\"file\": \"a.go\"}\n]\n```",
			want: "[\n  {\"file\": \"a.go\"}\n]",
		},
		{
			name: "no fence",
			text: "I found nothing to report.",
			want: "",
		},
		{
			name: "first fence wins",
			text: "```json\n[1]\n```\n```json\n[2]\n```",
			want: "[1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSONBlock(tt.text); got != tt.want {
				t.Errorf("ExtractJSONBlock(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseFindings(t *testing.T) {
	block := `[
		{"severity": "CRITICAL", "file": "auth.go", "line": 42, "title": "SQL injection", "detail": "User input flows into the query.", "fix": "Use a parameterized query."},
		{"severity": "minor", "file": "util.go", "line": "17", "title": "Unchecked error"},
		{"severity": "bogus", "file": "", "title": "  "}
	]`

	findings, err := ParseFindings(block, 50)
	if err != nil {
		t.Fatalf("ParseFindings failed: %v", err)
	}
	if len(findings) != 3 {
		t.Fatalf("expected 3 findings, got %d", len(findings))
	}

	first := findings[0]
	if first.Severity != SeverityCritical || first.File != "auth.go" || first.Line != 42 {
		t.Errorf("unexpected first finding: %+v", first)
	}
	if first.Fix != "Use a parameterized query." {
		t.Errorf("unexpected fix: %q", first.Fix)
	}

	// Lowercase severity and quoted line number are normalized.
	second := findings[1]
	if second.Severity != SeverityMinor {
		t.Errorf("expected MINOR, got %s", second.Severity)
	}
	if second.Line != 17 {
		t.Errorf("expected line 17 from quoted number, got %d", second.Line)
	}

	// Garbage degrades instead of failing.
	third := findings[2]
	if third.Severity != SeveritySuggestion {
		t.Errorf("unknown severity should normalize to SUGGESTION, got %s", third.Severity)
	}
	if third.File != "-" {
		t.Errorf("empty file should become %q, got %q", "-", third.File)
	}
	if third.Title != "(untitled finding)" {
		t.Errorf("blank title should get placeholder, got %q", third.Title)
	}
	if third.Line != 0 {
		t.Errorf("missing line should be 0, got %d", third.Line)
	}
}

func TestParseFindingsSingleObject(t *testing.T) {
	findings, err := ParseFindings(`{"severity": "MAJOR", "file": "a.go", "line": 3, "title": "Race"}`, 50)
	if err != nil {
		t.Fatalf("ParseFindings failed: %v", err)
	}
	if len(findings) != 1 || findings[0].Severity != SeverityMajor {
		t.Errorf("expected single MAJOR finding, got %+v", findings)
	}
}

func TestParseFindingsSkipsNonObjectElements(t *testing.T) {
	block := `[
		{"severity": "MAJOR", "file": "a.go", "line": 3, "title": "Race"},
		"stray note the model tacked on",
		42,
		null,
		{"severity": "MINOR", "file": "b.go", "line": 7, "title": "Typo"}
	]`

	findings, err := ParseFindings(block, 50)
	if err != nil {
		t.Fatalf("ParseFindings failed: %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings with non-objects dropped, got %d: %+v", len(findings), findings)
	}
	if findings[0].File != "a.go" || findings[1].File != "b.go" {
		t.Errorf("unexpected findings: %+v", findings)
	}
}

func TestParseFindingsMaxFindings(t *testing.T) {
	block := `[
		{"title": "one"}, {"title": "two"}, {"title": "three"}
	]`
	findings, err := ParseFindings(block, 2)
	if err != nil {
		t.Fatalf("ParseFindings failed: %v", err)
	}
	if len(findings) != 2 {
		t.Errorf("expected cap at 2 findings, got %d", len(findings))
	}
}

func TestParseFindingsInvalidJSON(t *testing.T) {
	if _, err := ParseFindings("not json at all", 50); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestCoerceLine(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{name: "integer", raw: "42", want: 42},
		{name: "quoted integer", raw: `"42"`, want: 42},
		{name: "float", raw: "42.0", want: 42},
		{name: "null", raw: "null", want: 0},
		{name: "empty", raw: "", want: 0},
		{name: "garbage", raw: `"about line 40"`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := coerceLine([]byte(tt.raw)); got != tt.want {
				t.Errorf("coerceLine(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}
