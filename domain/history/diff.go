package history

import (
	"time"

	"ccivisits-backend/domain/visit"
)

// Diff compares the before and after states of a visit and synthesizes one
// event per detected field-level change. Narrative fields are compared on
// their normalized plain text; notes are matched by ID equality, never by
// position. Actor attribution is stamped later by the caller.
func Diff(before, after *visit.Visit, at time.Time) []Event {
	if before == nil || after == nil {
		return nil
	}

	var events []Event

	if ba, aa := PlainText(before.Agenda), PlainText(after.Agenda); ba != aa {
		events = append(events, newEvent(after.ID, KindAgendaEdit, ba, aa, "", at))
	}
	if bd, ad := PlainText(before.Debrief), PlainText(after.Debrief); bd != ad {
		events = append(events, newEvent(after.ID, KindDebriefEdit, bd, ad, "", at))
	}

	events = append(events, diffNotes(after.ID, before.Notes, after.Notes, at)...)
	return events
}

func diffNotes(visitID string, before, after []visit.Note, at time.Time) []Event {
	var events []Event

	beforeByID := make(map[string]visit.Note, len(before))
	for _, n := range before {
		beforeByID[n.ID] = n
	}

	for _, n := range after {
		prev, existed := beforeByID[n.ID]
		if !existed {
			events = append(events, newEvent(visitID, KindNoteAdd, "", n.Text, n.ID, at))
			continue
		}
		if PlainText(prev.Text) != PlainText(n.Text) {
			events = append(events, newEvent(visitID, KindNoteEdit, prev.Text, n.Text, n.ID, at))
		}
	}

	afterIDs := make(map[string]bool, len(after))
	for _, n := range after {
		afterIDs[n.ID] = true
	}
	for _, n := range before {
		if !afterIDs[n.ID] {
			events = append(events, newEvent(visitID, KindNoteDelete, n.Text, "", n.ID, at))
		}
	}

	return events
}
