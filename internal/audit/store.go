package audit

import "context"

// Store persists audit entries.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	// List returns matching entries, newest first.
	List(ctx context.Context, f Filters) ([]Entry, error)
}
