package ports

import (
	"context"
	"time"

	"ccivisits-backend/domain/directory"
	"ccivisits-backend/domain/events"
	"ccivisits-backend/domain/history"
	"ccivisits-backend/domain/visit"
)

// VisitRepository defines the interface for visit persistence.
// This is a port; the domain does not know about the implementation.
type VisitRepository interface {
	// Save persists a visit (create or full update).
	Save(ctx context.Context, v *visit.Visit) error

	// GetByID retrieves a visit by its ID.
	GetByID(ctx context.Context, id string) (*visit.Visit, error)

	// ListByDay retrieves all visits for a calendar day key.
	ListByDay(ctx context.Context, dayKey string) ([]*visit.Visit, error)

	// ListByDateRange retrieves visits with from <= date < to.
	ListByDateRange(ctx context.Context, from, to time.Time) ([]*visit.Visit, error)

	// ListAll pages through every visit; pageToken is empty for the first
	// page and the returned token is empty on the last.
	ListAll(ctx context.Context, pageToken string, limit int) ([]*visit.Visit, string, error)

	// UpdateOrder writes only the order key of one visit.
	UpdateOrder(ctx context.Context, id string, order int) error
}

// HistoryRepository persists the per-visit event log and its snapshots.
type HistoryRepository interface {
	// AppendEvents appends events to a visit's log in one batch.
	AppendEvents(ctx context.Context, visitID string, evts []history.Event) error

	// ListEvents returns a visit's full event log ordered by timestamp
	// ascending.
	ListEvents(ctx context.Context, visitID string) ([]history.Event, error)

	// ListSnapshots returns a visit's snapshots ordered by version ascending.
	ListSnapshots(ctx context.Context, visitID string) ([]history.Snapshot, error)

	// SaveSnapshot persists one compaction snapshot.
	SaveSnapshot(ctx context.Context, snap history.Snapshot) error
}

// UserRepository is the users-directory collaborator.
type UserRepository interface {
	Save(ctx context.Context, u *directory.User) error
	GetByID(ctx context.Context, id string) (*directory.User, error)
	List(ctx context.Context) ([]*directory.User, error)
	UpdateRole(ctx context.Context, id string, role directory.Role) error
}

// InstitutionRepository manages CCI records and assignment lookups.
type InstitutionRepository interface {
	Save(ctx context.Context, inst *directory.Institution) error
	GetByID(ctx context.Context, id string) (*directory.Institution, error)
	List(ctx context.Context) ([]*directory.Institution, error)
}

// EventBus publishes domain events to the messaging infrastructure.
type EventBus interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	PublishBatch(ctx context.Context, evts []events.DomainEvent) error
}
