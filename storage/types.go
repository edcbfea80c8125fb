package storage

import "time"

// TokenUsage represents model token usage for a single review run.
type TokenUsage struct {
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens,omitempty"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens,omitempty"`
}

// RunRecord is the stored outcome of one review run against a pull request.
type RunRecord struct {
	ID             int64       `json:"id,omitempty"`
	Owner          string      `json:"owner"`
	Repo           string      `json:"repo"`
	PRNumber       int         `json:"pr_number"`
	Model          string      `json:"model"`
	FindingCount   int         `json:"finding_count"`
	InlinePosted   int         `json:"inline_posted"`
	FallbackPosted bool        `json:"fallback_posted"`
	WorstSeverity  string      `json:"worst_severity"`
	Usage          *TokenUsage `json:"usage,omitempty"`
	CreatedAt      time.Time   `json:"created_at,omitempty"`
}
