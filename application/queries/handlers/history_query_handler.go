package handlers

import (
	"context"
	"fmt"
	"sort"

	"ccivisits-backend/application/ports"
	"ccivisits-backend/application/queries"
	"ccivisits-backend/domain/history"
	"go.uber.org/zap"
)

// HistoryQueryHandler renders the edit-history view for a visit
type HistoryQueryHandler struct {
	historyRepo ports.HistoryRepository
	logger      *zap.Logger
}

// NewHistoryQueryHandler creates a new history query handler
func NewHistoryQueryHandler(historyRepo ports.HistoryRepository, logger *zap.Logger) *HistoryQueryHandler {
	return &HistoryQueryHandler{historyRepo: historyRepo, logger: logger}
}

// HandleGetVisitHistory builds the history view: unsnapshotted events
// newest first, then snapshot groups newest version first, each with its
// referenced events resolved.
func (h *HistoryQueryHandler) HandleGetVisitHistory(ctx context.Context, q queries.GetVisitHistoryQuery) (*queries.VisitHistoryResult, error) {
	events, err := h.historyRepo.ListEvents(ctx, q.VisitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history events: %w", err)
	}
	snapshots, err := h.historyRepo.ListSnapshots(ctx, q.VisitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	recent := history.RecentEvents(events, snapshots)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Timestamp.After(recent[j].Timestamp)
	})

	byID := make(map[string]history.Event, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}

	views := make([]queries.SnapshotView, 0, len(snapshots))
	for i := len(snapshots) - 1; i >= 0; i-- {
		snap := snapshots[i]
		view := queries.SnapshotView{
			ID:      snap.ID,
			Version: snap.Version,
			Summary: snap.Summary,
			Events:  make([]queries.EventView, 0, len(snap.EventIDs)),
		}
		for _, id := range snap.EventIDs {
			e, ok := byID[id]
			if !ok {
				h.logger.Debug("snapshot references missing event",
					zap.String("visit_id", q.VisitID),
					zap.String("event_id", id))
				e = history.Event{ID: id, VisitID: q.VisitID}
			}
			view.Events = append(view.Events, queries.EventView{Event: e, Missing: !ok})
		}
		views = append(views, view)
	}

	return &queries.VisitHistoryResult{
		VisitID:   q.VisitID,
		Recent:    recent,
		Snapshots: views,
	}, nil
}
