// Package storage defines the run-history storage interface for reviewbot.
package storage

import (
	"context"
)

// Storage records review runs for later inspection. Implementations must be
// safe for concurrent use by multiple goroutines. A nil Storage is valid and
// means persistence is disabled.
type Storage interface {
	StoreRun(ctx context.Context, run *RunRecord) error
	ListRunsForPR(ctx context.Context, owner, repo string, prNumber int) ([]*RunRecord, error)
	Close() error
}
