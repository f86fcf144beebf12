package ports

import "context"

// Connectivity reports whether the client currently has a network path to
// the document store. Offline, order commits are queued instead of written.
type Connectivity interface {
	Online() bool
}

// OrderCommit is one day's batch of order writes awaiting replay.
type OrderCommit struct {
	Day    string         `json:"day"`
	UserID string         `json:"user_id"`
	Orders map[string]int `json:"orders"`
}

// PendingOrderQueue holds order commits made while offline, keyed by day.
// A later commit for the same day replaces the queued one; replay drains
// the queue and re-enqueues entries whose writes still fail.
type PendingOrderQueue interface {
	Enqueue(ctx context.Context, commit OrderCommit) error
	DrainAll(ctx context.Context) ([]OrderCommit, error)
	Requeue(ctx context.Context, commit OrderCommit) error
	Len(ctx context.Context) (int, error)
}
