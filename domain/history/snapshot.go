package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Snapshot is a compaction record grouping a batch of event IDs by
// reference, not by copy. Version numbers form a monotonic append-only
// sequence per visit; snapshots are never merged, renumbered or deleted.
// An event is "recent" iff it appears in no snapshot's EventIDs.
type Snapshot struct {
	ID         string    `json:"id"`
	VisitID    string    `json:"visit_id"`
	Version    int       `json:"version"`
	EventIDs   []string  `json:"event_ids"`
	Summary    string    `json:"summary"`
	EventCount int       `json:"event_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewSnapshot builds a snapshot over a batch of events.
func NewSnapshot(visitID string, version int, events []Event, at time.Time) Snapshot {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return Snapshot{
		ID:         uuid.New().String(),
		VisitID:    visitID,
		Version:    version,
		EventIDs:   ids,
		Summary:    Summarize(events),
		EventCount: len(events),
		CreatedAt:  at,
	}
}

// Summarize produces the human-readable digest shown on a collapsed
// snapshot, e.g. "2 agenda edits, 1 note added".
func Summarize(events []Event) string {
	counts := make(map[EventKind]int, 5)
	for _, e := range events {
		counts[e.Kind]++
	}

	var parts []string
	// Fixed kind order keeps summaries stable across runs.
	for _, k := range []EventKind{KindAgendaEdit, KindDebriefEdit, KindNoteAdd, KindNoteEdit, KindNoteDelete} {
		n := counts[k]
		if n == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, kindPhrase(k, n)))
	}
	if len(parts) == 0 {
		return "no changes"
	}
	return strings.Join(parts, ", ")
}

func kindPhrase(k EventKind, n int) string {
	var singular, plural string
	switch k {
	case KindAgendaEdit:
		singular, plural = "agenda edit", "agenda edits"
	case KindDebriefEdit:
		singular, plural = "debrief edit", "debrief edits"
	case KindNoteAdd:
		singular, plural = "note added", "notes added"
	case KindNoteEdit:
		singular, plural = "note edited", "notes edited"
	case KindNoteDelete:
		singular, plural = "note deleted", "notes deleted"
	default:
		singular, plural = "change", "changes"
	}
	if n == 1 {
		return singular
	}
	return plural
}
