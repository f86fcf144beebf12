// Package memory holds process-local infrastructure: the offline order
// queue, the connectivity monitor, and the change feed. All of it is
// per-process state, deliberately not shared across instances.
package memory

import (
	"context"
	"sync"

	"ccivisits-backend/application/ports"
)

// PendingOrderQueue is the in-memory ports.PendingOrderQueue. Entries are
// keyed by day: a later commit for the same day replaces the queued one,
// since only the final arrangement matters on replay.
type PendingOrderQueue struct {
	mu      sync.Mutex
	byDay   map[string]ports.OrderCommit
	dayList []string
}

// NewPendingOrderQueue creates an empty queue.
func NewPendingOrderQueue() *PendingOrderQueue {
	return &PendingOrderQueue{
		byDay: make(map[string]ports.OrderCommit),
	}
}

// Enqueue stores a commit for later replay, replacing any queued commit
// for the same day.
func (q *PendingOrderQueue) Enqueue(ctx context.Context, commit ports.OrderCommit) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, exists := q.byDay[commit.Day]; !exists {
		q.dayList = append(q.dayList, commit.Day)
	}
	q.byDay[commit.Day] = commit
	return nil
}

// DrainAll removes and returns every queued commit in enqueue order.
func (q *PendingOrderQueue) DrainAll(ctx context.Context) ([]ports.OrderCommit, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	drained := make([]ports.OrderCommit, 0, len(q.dayList))
	for _, day := range q.dayList {
		drained = append(drained, q.byDay[day])
	}
	q.byDay = make(map[string]ports.OrderCommit)
	q.dayList = nil
	return drained, nil
}

// Requeue puts a commit back after a failed replay. A commit queued for
// the same day in the meantime wins.
func (q *PendingOrderQueue) Requeue(ctx context.Context, commit ports.OrderCommit) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, exists := q.byDay[commit.Day]; exists {
		return nil
	}
	q.byDay[commit.Day] = commit
	q.dayList = append(q.dayList, commit.Day)
	return nil
}

// Len reports how many commits are queued.
func (q *PendingOrderQueue) Len(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.byDay), nil
}
