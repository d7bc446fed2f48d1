package runs

import "context"

// DefaultListLimit caps ListBySession when no limit is given.
const DefaultListLimit = 50

// Repo defines persistence operations for the run journal.
type Repo interface {
	Create(ctx context.Context, run Run) error
	// ListBySession returns runs newest first.
	ListBySession(ctx context.Context, sessionID string, limit int) ([]Run, error)
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > DefaultListLimit {
		return DefaultListLimit
	}
	return limit
}
