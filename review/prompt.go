package review

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/reviewbot/reviewbot/github"
)

// DefaultSystemPrompt is used when the configuration supplies none.
const DefaultSystemPrompt = `You are an experienced software engineer reviewing pull request diffs. Be concise and specific. Only report real issues; do not pad the review with trivia.`

const promptSchema = `Respond with a JSON array inside a ` + "```json" + ` fence and nothing else.

JSON schema:
[
  {
    "severity": "CRITICAL" | "MAJOR" | "MINOR" | "SUGGESTION",
    "file": "relative path (e.g. src/main.go)",
    "line": 123,
    "title": "short headline",
    "detail": "brief background and reasoning",
    "fix": "concrete suggested fix (optional)"
  }
]

"line" must be the line number on the right-hand (new) side of the diff.`

// BuildPrompt assembles the review prompt: the changed-file list, patch
// blocks under a character budget, the response schema, and any extra
// instructions. When the budget runs out mid-file the block is cut at the
// boundary and remaining files are omitted, matching the configured
// max_diff_chars limit rather than the model's context window.
func BuildPrompt(files []github.PullRequestFile, userPrompt string, maxDiffChars int, style string) string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = "- " + f.Filename
	}
	fileList := strings.Join(names, "\n")

	var patches []string
	used := 0
	for _, f := range files {
		block := fmt.Sprintf("\n\n=== %s ===\n%s", f.Filename, f.Patch)
		if used+len(block) > maxDiffChars {
			remaining := maxDiffChars - used
			if cut := trimToRuneBoundary(block, remaining); cut != "" {
				patches = append(patches, cut)
				used += len(cut)
			}
			break
		}
		patches = append(patches, block)
		used += len(block)
	}

	diffSnippet := strings.Join(patches, "")
	if diffSnippet == "" {
		diffSnippet = "(no diff content available)"
	}

	styleDirective := ""
	if style != "" {
		styleDirective = fmt.Sprintf("\nKeep the review tone %q.", style)
	}

	extra := userPrompt
	if extra == "" {
		extra = "(none)"
	}

	return strings.TrimSpace(fmt.Sprintf(`Review the following pull request diff.%s

%s

## Changed files
%s

## Diff (limited to %d characters)
%s

## Additional instructions
%s`, styleDirective, promptSchema, fileList, maxDiffChars, diffSnippet, extra))
}

// trimToRuneBoundary shortens s to at most max bytes without splitting a
// multi-byte character.
func trimToRuneBoundary(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
