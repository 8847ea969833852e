package frame

import "context"

// Store is the persistence interface for frame summaries.
type Store interface {
	Get(ctx context.Context, id string) (*Summary, bool, error)
	Put(ctx context.Context, s *Summary) error
	// List returns up to limit summaries, newest first.
	List(ctx context.Context, limit int) ([]*Summary, error)
}

// Notifier is told about frames whose defect fraction crossed the alert threshold.
type Notifier interface {
	Send(ctx context.Context, s *Summary) error
}
