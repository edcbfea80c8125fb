package review

import "strings"

// InlineComment is a candidate inline review comment, addressed by diff
// position.
type InlineComment struct {
	Path     string
	Position int
	Body     string
}

// ExistingComment is an inline comment already posted on the pull request.
// Position is zero for outdated comments, in which case Line carries the
// address GitHub reports instead.
type ExistingComment struct {
	Path     string
	Position int
	Line     int
	Body     string
}

// commentKey identifies a comment for dedup purposes: path, position (or
// plain line when no position is available), and whitespace-trimmed body.
type commentKey struct {
	path    string
	address int
	body    string
}

func (c ExistingComment) key() commentKey {
	address := c.Position
	if address == 0 {
		address = c.Line
	}
	return commentKey{path: c.Path, address: address, body: strings.TrimSpace(c.Body)}
}

func (c InlineComment) key() commentKey {
	return commentKey{path: c.Path, address: c.Position, body: strings.TrimSpace(c.Body)}
}

// FilterExisting removes candidates that exactly match something already
// posted, making repeated runs on the same revision idempotent. Matching is
// deliberately conservative: byte-identical after trimming surrounding
// whitespace, case-sensitive, so a legitimately different comment at the same
// location survives. Pure function; neither input slice is mutated.
func FilterExisting(existing []ExistingComment, existingReviewBodies []string, inline []InlineComment, fallbacks []string) ([]InlineComment, []string) {
	seen := make(map[commentKey]bool, len(existing))
	for _, c := range existing {
		seen[c.key()] = true
	}

	seenBodies := make(map[string]bool, len(existingReviewBodies))
	for _, b := range existingReviewBodies {
		if trimmed := strings.TrimSpace(b); trimmed != "" {
			seenBodies[trimmed] = true
		}
	}

	filteredInline := make([]InlineComment, 0, len(inline))
	for _, c := range inline {
		if seen[c.key()] {
			continue
		}
		filteredInline = append(filteredInline, c)
	}

	filteredFallbacks := make([]string, 0, len(fallbacks))
	for _, b := range fallbacks {
		if seenBodies[strings.TrimSpace(b)] {
			continue
		}
		filteredFallbacks = append(filteredFallbacks, b)
	}

	return filteredInline, filteredFallbacks
}
