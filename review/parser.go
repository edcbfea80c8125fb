package review

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// jsonBlockRegex pulls the contents of a fenced ```json block out of the
// model's raw text output.
var jsonBlockRegex = regexp.MustCompile("(?is)```json\\s*(.+?)\\s*```")

// ExtractJSONBlock returns the contents of the first ```json fence in text,
// or the empty string when none exists.
func ExtractJSONBlock(text string) string {
	m := jsonBlockRegex.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// rawFinding mirrors the JSON shape the model is instructed to emit. Line is
// kept raw because models occasionally return it as a string or a float.
type rawFinding struct {
	Severity string          `json:"severity"`
	File     string          `json:"file"`
	Line     json.RawMessage `json:"line"`
	Title    string          `json:"title"`
	Detail   string          `json:"detail"`
	Fix      string          `json:"fix"`
}

// ParseFindings decodes a JSON block into normalized findings. The decoder
// is deliberately tolerant: a single object is accepted in place of an
// array, array elements that are not objects are dropped, unknown severities
// degrade to SUGGESTION, unparseable line numbers become "no line", and
// findings past maxFindings are dropped. Only structurally invalid JSON
// returns an error.
func ParseFindings(block string, maxFindings int) ([]Finding, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(block), &elements); err != nil {
		// The model sometimes emits a bare object for a single finding.
		var single rawFinding
		if err2 := json.Unmarshal([]byte(block), &single); err2 != nil {
			return nil, err
		}
		elements = []json.RawMessage{json.RawMessage(block)}
	}

	raw := make([]rawFinding, 0, len(elements))
	for _, el := range elements {
		if !bytes.HasPrefix(bytes.TrimSpace(el), []byte("{")) {
			continue
		}
		var r rawFinding
		if err := json.Unmarshal(el, &r); err != nil {
			continue
		}
		raw = append(raw, r)
	}

	if maxFindings > 0 && len(raw) > maxFindings {
		raw = raw[:maxFindings]
	}

	findings := make([]Finding, 0, len(raw))
	for _, r := range raw {
		file := r.File
		if file == "" {
			file = "-"
		}
		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = "(untitled finding)"
		}
		findings = append(findings, Finding{
			Severity: ParseSeverity(r.Severity),
			File:     file,
			Line:     coerceLine(r.Line),
			Title:    title,
			Detail:   strings.TrimSpace(r.Detail),
			Fix:      strings.TrimSpace(r.Fix),
		})
	}

	return findings, nil
}

// coerceLine converts a raw JSON line value into an int, returning 0 for
// anything that is not a usable positive number.
func coerceLine(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0
	}
	s = strings.Trim(s, `"`)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}
