package review

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/reviewbot/reviewbot/github"
)

// DefaultSnapRadius is how far FindPosition probes around a line number that
// has no exact position entry.
const DefaultSnapRadius = 3

// PositionMap maps right-hand (new file) line numbers to diff positions for
// one file. A position is the 1-based index into the file's patch text,
// counting every physical line including hunk headers. Only added lines
// appear as keys; context and removed lines are not addressable.
type PositionMap map[int]int

// hunkRightStartRegex extracts the right-side start line from a hunk header
// like "@@ -12,7 +20,6 @@".
var hunkRightStartRegex = regexp.MustCompile(`\+(\d+)(?:,(\d+))?`)

// BuildPositionMap parses one file's unified diff patch text into a
// PositionMap. An empty patch, or one with no added lines, yields an empty
// map. Malformed hunk headers reset the right-line counter, making the lines
// that follow unaddressable until the next valid header; no error is ever
// returned.
func BuildPositionMap(patch string) PositionMap {
	mapping := make(PositionMap)
	if patch == "" {
		return mapping
	}

	position := 0
	rightLine := 0

	for _, raw := range strings.Split(patch, "\n") {
		position++
		switch {
		case strings.HasPrefix(raw, "@@"):
			// The header itself counts toward position but is not addressable.
			if m := hunkRightStartRegex.FindStringSubmatch(raw); m != nil {
				rightLine, _ = strconv.Atoi(m[1])
			} else {
				rightLine = 0
			}
		case strings.HasPrefix(raw, "+"):
			mapping[rightLine] = position
			rightLine++
		case strings.HasPrefix(raw, "-"):
			// Removed line, left side only.
		default:
			// Context line advances both sides, but only once a hunk
			// header has established the right-side counter.
			if rightLine > 0 {
				rightLine++
			}
		}
	}

	return mapping
}

// BuildPositionMaps builds one PositionMap per changed file. Files without
// patch text, or whose patch contains no added lines, are omitted so that
// later lookups fall through to the fallback path.
func BuildPositionMaps(files []github.PullRequestFile) map[string]PositionMap {
	maps := make(map[string]PositionMap)
	for _, f := range files {
		if f.Patch == "" {
			continue
		}
		if m := BuildPositionMap(f.Patch); len(m) > 0 {
			maps[f.Filename] = m
		}
	}
	return maps
}

// Resolve returns the position for a right-hand line number. An exact entry
// wins; otherwise neighbors are probed outward up to snapRadius, checking
// line-d before line+d at each distance. The tie-break order is load-bearing:
// a line sitting between two added lines resolves to the preceding one.
func (m PositionMap) Resolve(line, snapRadius int) (int, bool) {
	if pos, ok := m[line]; ok {
		return pos, true
	}
	for d := 1; d <= snapRadius; d++ {
		if pos, ok := m[line-d]; ok {
			return pos, true
		}
		if pos, ok := m[line+d]; ok {
			return pos, true
		}
	}
	return 0, false
}

// FindPosition resolves a (path, line) finding location against the per-file
// position maps. A missing line number, unknown path, or no entry within the
// snap radius all return unresolved rather than an error; the caller routes
// such findings to the fallback comment.
func FindPosition(maps map[string]PositionMap, path string, line, snapRadius int) (int, bool) {
	if line <= 0 {
		return 0, false
	}
	m, ok := maps[path]
	if !ok {
		return 0, false
	}
	return m.Resolve(line, snapRadius)
}
