package history

import (
	"sort"
	"time"
)

// CompactionBatchSize is how many events one snapshot groups.
const CompactionBatchSize = 10

// PlanCompaction computes the snapshots that a compaction pass should
// persist. Events already referenced by an existing snapshot are skipped;
// the remaining events, ordered by timestamp ascending, are partitioned
// into consecutive batches of CompactionBatchSize, each assigned the next
// version after the current maximum. An empty result means the log is
// fully compacted.
//
// Version assignment is not protected against a concurrent compaction on
// the same visit reading the same maximum; callers run compaction inline
// after an append and accept that race.
func PlanCompaction(events []Event, existing []Snapshot, now time.Time) []Snapshot {
	snapshotted := make(map[string]bool)
	maxVersion := 0
	for _, s := range existing {
		if s.Version > maxVersion {
			maxVersion = s.Version
		}
		for _, id := range s.EventIDs {
			snapshotted[id] = true
		}
	}

	recent := make([]Event, 0, len(events))
	for _, e := range events {
		if !snapshotted[e.ID] {
			recent = append(recent, e)
		}
	}
	if len(recent) == 0 {
		return nil
	}

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Timestamp.Before(recent[j].Timestamp)
	})

	var planned []Snapshot
	for start := 0; start < len(recent); start += CompactionBatchSize {
		end := start + CompactionBatchSize
		if end > len(recent) {
			end = len(recent)
		}
		maxVersion++
		planned = append(planned, NewSnapshot(recent[start].VisitID, maxVersion, recent[start:end], now))
	}
	return planned
}

// RecentEvents filters the event log down to events not yet referenced by
// any snapshot. This is the read-side contract for the ungrouped part of
// the history view.
func RecentEvents(events []Event, snapshots []Snapshot) []Event {
	snapshotted := make(map[string]bool)
	for _, s := range snapshots {
		for _, id := range s.EventIDs {
			snapshotted[id] = true
		}
	}
	recent := make([]Event, 0, len(events))
	for _, e := range events {
		if !snapshotted[e.ID] {
			recent = append(recent, e)
		}
	}
	return recent
}
