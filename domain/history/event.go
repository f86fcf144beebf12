// Package history implements the event-sourcing-lite version history for
// visit edits: per-field diff events plus periodic snapshot compaction
// that bounds the growth of the event log.
package history

import (
	"time"

	"github.com/google/uuid"
)

// EventKind is the closed set of field-level change kinds. Every place
// that renders or summarizes events matches exhaustively over these.
type EventKind string

const (
	KindAgendaEdit  EventKind = "agenda_edit"
	KindDebriefEdit EventKind = "debrief_edit"
	KindNoteAdd     EventKind = "note_add"
	KindNoteEdit    EventKind = "note_edit"
	KindNoteDelete  EventKind = "note_delete"
)

// Valid reports whether k is one of the five known kinds.
func (k EventKind) Valid() bool {
	switch k {
	case KindAgendaEdit, KindDebriefEdit, KindNoteAdd, KindNoteEdit, KindNoteDelete:
		return true
	}
	return false
}

// Event is one immutable field-level change record for a visit. Created
// exactly once per detected change and never mutated afterwards.
type Event struct {
	ID        string    `json:"id"`
	VisitID   string    `json:"visit_id"`
	Kind      EventKind `json:"kind"`
	Before    string    `json:"before,omitempty"`
	After     string    `json:"after,omitempty"`
	ActorID   string    `json:"actor_id"`
	ActorName string    `json:"actor_name"`
	NoteID    string    `json:"note_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func newEvent(visitID string, kind EventKind, before, after, noteID string, at time.Time) Event {
	return Event{
		ID:        uuid.New().String(),
		VisitID:   visitID,
		Kind:      kind,
		Before:    before,
		After:     after,
		NoteID:    noteID,
		Timestamp: at,
	}
}
