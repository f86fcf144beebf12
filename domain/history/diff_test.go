package history

import (
	"testing"
	"time"

	"ccivisits-backend/domain/visit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseVisit() *visit.Visit {
	return &visit.Visit{
		ID:      "visit-1",
		Agenda:  "A",
		Debrief: "same debrief",
	}
}

func TestDiff_AgendaChangeOnly(t *testing.T) {
	before := baseVisit()
	after := before.Clone()
	after.Agenda = "B"

	events := Diff(before, after, time.Now())

	require.Len(t, events, 1)
	assert.Equal(t, KindAgendaEdit, events[0].Kind)
	assert.Equal(t, "A", events[0].Before)
	assert.Equal(t, "B", events[0].After)
	assert.Equal(t, "visit-1", events[0].VisitID)
}

func TestDiff_NormalizedMarkupEqualIsNoChange(t *testing.T) {
	before := baseVisit()
	before.Agenda = "<p>Hello <b>world</b></p>"
	after := before.Clone()
	after.Agenda = "Hello   world"

	events := Diff(before, after, time.Now())

	assert.Empty(t, events)
}

func TestDiff_NotesByID(t *testing.T) {
	before := baseVisit()
	before.Notes = []visit.Note{{ID: "1", Text: "x"}}
	after := before.Clone()
	after.Notes = []visit.Note{{ID: "1", Text: "y"}, {ID: "2", Text: "z"}}

	events := Diff(before, after, time.Now())

	require.Len(t, events, 2)

	byKind := make(map[EventKind]Event)
	for _, e := range events {
		byKind[e.Kind] = e
	}

	edit, ok := byKind[KindNoteEdit]
	require.True(t, ok)
	assert.Equal(t, "1", edit.NoteID)
	assert.Equal(t, "x", edit.Before)
	assert.Equal(t, "y", edit.After)

	add, ok := byKind[KindNoteAdd]
	require.True(t, ok)
	assert.Equal(t, "2", add.NoteID)
	assert.Equal(t, "z", add.After)

	_, deleted := byKind[KindNoteDelete]
	assert.False(t, deleted)
}

func TestDiff_NoteDeleted(t *testing.T) {
	before := baseVisit()
	before.Notes = []visit.Note{{ID: "1", Text: "gone"}}
	after := before.Clone()
	after.Notes = nil

	events := Diff(before, after, time.Now())

	require.Len(t, events, 1)
	assert.Equal(t, KindNoteDelete, events[0].Kind)
	assert.Equal(t, "gone", events[0].Before)
	assert.Equal(t, "1", events[0].NoteID)
}

func TestDiff_NotesMatchedByIDNotPosition(t *testing.T) {
	before := baseVisit()
	before.Notes = []visit.Note{{ID: "1", Text: "one"}, {ID: "2", Text: "two"}}
	after := before.Clone()
	after.Notes = []visit.Note{{ID: "2", Text: "two"}, {ID: "1", Text: "one"}}

	events := Diff(before, after, time.Now())

	assert.Empty(t, events, "reordering notes is not a content change")
}

func TestDiff_NilInputs(t *testing.T) {
	assert.Nil(t, Diff(nil, baseVisit(), time.Now()))
	assert.Nil(t, Diff(baseVisit(), nil, time.Now()))
}

func TestPlainText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"<p>Hello</p><p>World</p>", "Hello World"},
		{"plain text", "plain text"},
		{"a &amp; b &lt;c&gt;", "a & b <c>"},
		{"line<br/>break", "line break"},
		{"  spaced\n\n\tout  ", "spaced out"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PlainText(tc.in), "input %q", tc.in)
	}
}
