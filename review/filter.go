package review

import (
	"path/filepath"
	"strings"

	"github.com/reviewbot/reviewbot/github"
)

// FilterFiles selects the changed files to review. A file survives when it
// matches the include globs (or no include globs are set), matches no
// exclude glob, and carries patch text. At most maxFiles files are returned,
// preserving the host API's order.
func FilterFiles(files []github.PullRequestFile, includeGlobs, excludeGlobs []string, maxFiles int) []github.PullRequestFile {
	var result []github.PullRequestFile
	for _, f := range files {
		if len(includeGlobs) > 0 && !matchesAny(includeGlobs, f.Filename) {
			continue
		}
		if matchesAny(excludeGlobs, f.Filename) {
			continue
		}
		if f.Patch == "" {
			continue
		}
		result = append(result, f)
		if maxFiles > 0 && len(result) >= maxFiles {
			break
		}
	}
	return result
}

func matchesAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if matchGlob(pattern, path) {
			return true
		}
	}
	return false
}

// matchGlob matches a path against a glob pattern. filepath.Match has no
// "**" support, so directory-spanning patterns like "vendor/**" and
// "**/*.go" are handled by prefix/suffix checks before the standard glob
// matching; "*.gen.go" style patterns also match against the basename.
func matchGlob(pattern, path string) bool {
	if strings.Contains(pattern, "**") {
		parts := strings.SplitN(pattern, "**", 2)
		prefix, suffix := parts[0], parts[1]
		if strings.HasPrefix(path, prefix) {
			trimmed := strings.TrimPrefix(suffix, "/")
			if suffix == "" || strings.HasSuffix(path, trimmed) {
				return true
			}
			if matched, _ := filepath.Match(trimmed, filepath.Base(path)); matched {
				return true
			}
		}
		if prefix != "" && suffix == "" && strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")) {
			return true
		}
	}

	if matched, _ := filepath.Match(pattern, path); matched {
		return true
	}
	if matched, _ := filepath.Match(pattern, filepath.Base(path)); matched {
		return true
	}
	return false
}
