package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeEvents(n int, start time.Time) []Event {
	events := make([]Event, n)
	for i := 0; i < n; i++ {
		events[i] = Event{
			ID:        fmt.Sprintf("event-%03d", i),
			VisitID:   "visit-1",
			Kind:      KindAgendaEdit,
			Timestamp: start.Add(time.Duration(i) * time.Minute),
		}
	}
	return events
}

func TestPlanCompaction_PartitionsIntoBatchesOfTen(t *testing.T) {
	now := time.Now()
	events := makeEvents(25, now.Add(-time.Hour))

	planned := PlanCompaction(events, nil, now)

	require.Len(t, planned, 3)
	assert.Equal(t, 1, planned[0].Version)
	assert.Equal(t, 2, planned[1].Version)
	assert.Equal(t, 3, planned[2].Version)
	assert.Equal(t, 10, planned[0].EventCount)
	assert.Equal(t, 10, planned[1].EventCount)
	assert.Equal(t, 5, planned[2].EventCount)

	// Union of eventIds covers each of the 25 events exactly once.
	seen := make(map[string]int)
	for _, s := range planned {
		for _, id := range s.EventIDs {
			seen[id]++
		}
	}
	require.Len(t, seen, 25)
	for id, n := range seen {
		assert.Equal(t, 1, n, "event %s referenced %d times", id, n)
	}
}

func TestPlanCompaction_NothingNewProducesNoSnapshots(t *testing.T) {
	now := time.Now()
	events := makeEvents(10, now.Add(-time.Hour))
	existing := []Snapshot{NewSnapshot("visit-1", 1, events, now)}

	planned := PlanCompaction(events, existing, now)

	assert.Empty(t, planned)
}

func TestPlanCompaction_ContinuesVersionSequence(t *testing.T) {
	now := time.Now()
	old := makeEvents(10, now.Add(-2*time.Hour))
	existing := []Snapshot{NewSnapshot("visit-1", 4, old, now)}

	fresh := makeEvents(12, now.Add(-time.Hour))
	for i := range fresh {
		fresh[i].ID = fmt.Sprintf("fresh-%03d", i)
	}
	all := append(append([]Event{}, old...), fresh...)

	planned := PlanCompaction(all, existing, now)

	require.Len(t, planned, 2)
	assert.Equal(t, 5, planned[0].Version)
	assert.Equal(t, 6, planned[1].Version)
}

func TestPlanCompaction_OrdersByTimestampAscending(t *testing.T) {
	now := time.Now()
	events := makeEvents(12, now.Add(-time.Hour))
	// Shuffle: feed newest first; compaction must still batch oldest first.
	reversed := make([]Event, len(events))
	for i, e := range events {
		reversed[len(events)-1-i] = e
	}

	planned := PlanCompaction(reversed, nil, now)

	require.Len(t, planned, 2)
	assert.Equal(t, "event-000", planned[0].EventIDs[0])
	assert.Equal(t, "event-010", planned[1].EventIDs[0])
}

func TestRecentEvents(t *testing.T) {
	now := time.Now()
	events := makeEvents(15, now.Add(-time.Hour))
	existing := []Snapshot{NewSnapshot("visit-1", 1, events[:10], now)}

	recent := RecentEvents(events, existing)

	require.Len(t, recent, 5)
	assert.Equal(t, "event-010", recent[0].ID)
}

func TestSummarize(t *testing.T) {
	events := []Event{
		{Kind: KindAgendaEdit},
		{Kind: KindAgendaEdit},
		{Kind: KindNoteAdd},
	}
	assert.Equal(t, "2 agenda edits, 1 note added", Summarize(events))

	assert.Equal(t, "no changes", Summarize(nil))

	mixed := []Event{
		{Kind: KindDebriefEdit},
		{Kind: KindNoteDelete},
		{Kind: KindNoteDelete},
	}
	assert.Equal(t, "1 debrief edit, 2 notes deleted", Summarize(mixed))
}
