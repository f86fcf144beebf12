package queries

import (
	"errors"

	"ccivisits-backend/domain/history"
)

// GetVisitHistoryQuery represents a query for a visit's edit history.
type GetVisitHistoryQuery struct {
	VisitID string
}

// Validate validates the GetVisitHistoryQuery
func (q GetVisitHistoryQuery) Validate() error {
	if q.VisitID == "" {
		return errors.New("visit ID is required")
	}
	return nil
}

// VisitHistoryResult is the rendered history view: events newer than the
// latest snapshot listed individually, older ones grouped under their
// snapshot with its summary line.
type VisitHistoryResult struct {
	VisitID   string          `json:"visit_id"`
	Recent    []history.Event `json:"recent"`
	Snapshots []SnapshotView  `json:"snapshots"`
}

// SnapshotView is one expandable snapshot group.
type SnapshotView struct {
	ID      string      `json:"id"`
	Version int         `json:"version"`
	Summary string      `json:"summary"`
	Events  []EventView `json:"events"`
}

// EventView wraps a referenced event. Missing marks event IDs a snapshot
// references that no longer resolve; the view renders a placeholder for
// them rather than dropping the reference.
type EventView struct {
	Event   history.Event `json:"event"`
	Missing bool          `json:"missing"`
}
