// Package events defines the domain events published to the event bus.
// Events represent something that has already happened.
package events

import "time"

// SourceBackend identifies this service as the event source on the bus.
const SourceBackend = "ccivisits.backend"

// DomainEvent is the base interface for all domain events.
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields.
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// VisitCreated is raised when a new visit is recorded.
type VisitCreated struct {
	BaseEvent
	VisitID       string `json:"visit_id"`
	InstitutionID string `json:"institution_id"`
	CreatorID     string `json:"creator_id"`
	Day           string `json:"day"`
}

// NewVisitCreated creates a VisitCreated event.
func NewVisitCreated(visitID, institutionID, creatorID, day string, timestamp time.Time) VisitCreated {
	return VisitCreated{
		BaseEvent: BaseEvent{
			AggregateID: visitID,
			EventType:   "visit.created",
			Timestamp:   timestamp,
		},
		VisitID:       visitID,
		InstitutionID: institutionID,
		CreatorID:     creatorID,
		Day:           day,
	}
}

// VisitUpdated is raised when a visit's fields change.
type VisitUpdated struct {
	BaseEvent
	VisitID  string `json:"visit_id"`
	EditorID string `json:"editor_id"`
	Day      string `json:"day"`
}

// NewVisitUpdated creates a VisitUpdated event.
func NewVisitUpdated(visitID, editorID, day string, timestamp time.Time) VisitUpdated {
	return VisitUpdated{
		BaseEvent: BaseEvent{
			AggregateID: visitID,
			EventType:   "visit.updated",
			Timestamp:   timestamp,
		},
		VisitID:  visitID,
		EditorID: editorID,
		Day:      day,
	}
}

// OrderCommitted is raised when a day's manual ordering is persisted.
type OrderCommitted struct {
	BaseEvent
	Day      string         `json:"day"`
	UserID   string         `json:"user_id"`
	Orders   map[string]int `json:"orders"`
	Deferred bool           `json:"deferred"` // true when queued offline
}

// NewOrderCommitted creates an OrderCommitted event.
func NewOrderCommitted(day, userID string, orders map[string]int, deferred bool, timestamp time.Time) OrderCommitted {
	return OrderCommitted{
		BaseEvent: BaseEvent{
			AggregateID: day,
			EventType:   "visit.order_committed",
			Timestamp:   timestamp,
		},
		Day:      day,
		UserID:   userID,
		Orders:   orders,
		Deferred: deferred,
	}
}

// ExportCompleted is raised when a scheduled CSV export finishes.
type ExportCompleted struct {
	BaseEvent
	ExportID   string `json:"export_id"`
	VisitCount int    `json:"visit_count"`
	SizeBytes  int    `json:"size_bytes"`
}

// NewExportCompleted creates an ExportCompleted event.
func NewExportCompleted(exportID string, visitCount, sizeBytes int, timestamp time.Time) ExportCompleted {
	return ExportCompleted{
		BaseEvent: BaseEvent{
			AggregateID: exportID,
			EventType:   "export.completed",
			Timestamp:   timestamp,
		},
		ExportID:   exportID,
		VisitCount: visitCount,
		SizeBytes:  sizeBytes,
	}
}

// UserRoleChanged is raised when an admin changes a user's role; the
// role-sync trigger consumes it to rewrite the user's claims.
type UserRoleChanged struct {
	BaseEvent
	UserID  string `json:"user_id"`
	OldRole string `json:"old_role"`
	NewRole string `json:"new_role"`
}

// NewUserRoleChanged creates a UserRoleChanged event.
func NewUserRoleChanged(userID, oldRole, newRole string, timestamp time.Time) UserRoleChanged {
	return UserRoleChanged{
		BaseEvent: BaseEvent{
			AggregateID: userID,
			EventType:   "user.role_changed",
			Timestamp:   timestamp,
		},
		UserID:  userID,
		OldRole: oldRole,
		NewRole: newRole,
	}
}
