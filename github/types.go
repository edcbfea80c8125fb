// Package github provides the GitHub API client used by the reviewer.
package github

import "time"

// PullRequest represents a GitHub pull request.
type PullRequest struct {
	ID      int64  `json:"id"`
	Number  int    `json:"number"`
	State   string `json:"state"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	Draft   bool   `json:"draft"`
	Head    *Ref   `json:"head"`
	Base    *Ref   `json:"base"`
	User    *User  `json:"user"`
	HTMLURL string `json:"html_url"`
}

// Ref represents a git reference (branch/commit).
type Ref struct {
	Ref string `json:"ref"`
	SHA string `json:"sha"`
}

// User represents a GitHub user or organization.
type User struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Type  string `json:"type"`
}

// PullRequestFile represents a file changed in a pull request.
// Patch is empty when GitHub omits it (binary files, very large diffs).
type PullRequestFile struct {
	SHA       string `json:"sha"`
	Filename  string `json:"filename"`
	Status    string `json:"status"` // added, removed, modified, renamed, copied, changed, unchanged
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Changes   int    `json:"changes"`
	Patch     string `json:"patch,omitempty"`
}

// DraftComment is an inline comment submitted as part of a review.
// Position is the 1-based index into the file's patch text, counting every
// line of the patch including hunk headers.
type DraftComment struct {
	Path     string `json:"path"`
	Position int    `json:"position"`
	Body     string `json:"body"`
}

// ReviewRequest represents a request to create a pull request review.
type ReviewRequest struct {
	CommitID string         `json:"commit_id,omitempty"`
	Body     string         `json:"body"`
	Event    string         `json:"event"` // APPROVE, REQUEST_CHANGES, COMMENT
	Comments []DraftComment `json:"comments,omitempty"`
}

// Review represents a pull request review response.
type Review struct {
	ID          int64     `json:"id"`
	User        *User     `json:"user"`
	Body        string    `json:"body"`
	State       string    `json:"state"`
	HTMLURL     string    `json:"html_url"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ReviewComment represents an existing inline comment on a pull request.
// Position is zero when the comment is outdated; Line may carry the current
// line number instead.
type ReviewComment struct {
	ID       int64  `json:"id"`
	Path     string `json:"path"`
	Position int    `json:"position,omitempty"`
	Line     int    `json:"line,omitempty"`
	Side     string `json:"side,omitempty"`
	Body     string `json:"body"`
	User     *User  `json:"user"`
	HTMLURL  string `json:"html_url"`
}
