package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ccivisits-backend/application/queries"
	"ccivisits-backend/domain/history"
	"ccivisits-backend/tests/mocks"
)

func TestHandleGetVisitHistory_RendersPlaceholderForMissingEvent(t *testing.T) {
	ctx := context.Background()
	mockHistoryRepo := new(mocks.MockHistoryRepository)

	base := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	kept := history.Event{
		ID:        "evt-1",
		VisitID:   "visit-1",
		Kind:      history.KindAgendaEdit,
		Before:    "Old agenda",
		After:     "New agenda",
		ActorName: "Priya Nair",
		Timestamp: base,
	}
	snap := history.Snapshot{
		ID:         "snap-1",
		VisitID:    "visit-1",
		Version:    1,
		EventIDs:   []string{"evt-1", "evt-gone"},
		Summary:    "2 edits",
		EventCount: 2,
		CreatedAt:  base.Add(time.Hour),
	}

	// evt-gone is referenced by the snapshot but absent from the log.
	mockHistoryRepo.On("ListEvents", ctx, "visit-1").Return([]history.Event{kept}, nil)
	mockHistoryRepo.On("ListSnapshots", ctx, "visit-1").Return([]history.Snapshot{snap}, nil)

	handler := NewHistoryQueryHandler(mockHistoryRepo, zap.NewNop())
	result, err := handler.HandleGetVisitHistory(ctx, queries.GetVisitHistoryQuery{VisitID: "visit-1"})
	require.NoError(t, err)

	require.Len(t, result.Snapshots, 1)
	views := result.Snapshots[0].Events
	require.Len(t, views, 2)

	assert.False(t, views[0].Missing)
	assert.Equal(t, "evt-1", views[0].Event.ID)
	assert.Equal(t, "New agenda", views[0].Event.After)

	// The dangling reference stays visible as a placeholder.
	assert.True(t, views[1].Missing)
	assert.Equal(t, "evt-gone", views[1].Event.ID)
	assert.Equal(t, "visit-1", views[1].Event.VisitID)

	// The snapshotted event is not repeated in the recent list.
	assert.Empty(t, result.Recent)
}

func TestHandleGetVisitHistory_OrdersRecentAndSnapshotsNewestFirst(t *testing.T) {
	ctx := context.Background()
	mockHistoryRepo := new(mocks.MockHistoryRepository)

	base := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	older := history.Event{ID: "evt-1", VisitID: "visit-1", Kind: history.KindAgendaEdit, Timestamp: base}
	newer := history.Event{ID: "evt-2", VisitID: "visit-1", Kind: history.KindDebriefEdit, Timestamp: base.Add(time.Minute)}
	v1 := history.Snapshot{ID: "snap-1", VisitID: "visit-1", Version: 1, EventIDs: []string{"evt-0"}, Summary: "1 edit"}
	v2 := history.Snapshot{ID: "snap-2", VisitID: "visit-1", Version: 2, EventIDs: []string{}, Summary: "0 edits"}

	mockHistoryRepo.On("ListEvents", ctx, "visit-1").Return([]history.Event{older, newer}, nil)
	mockHistoryRepo.On("ListSnapshots", ctx, "visit-1").Return([]history.Snapshot{v1, v2}, nil)

	handler := NewHistoryQueryHandler(mockHistoryRepo, zap.NewNop())
	result, err := handler.HandleGetVisitHistory(ctx, queries.GetVisitHistoryQuery{VisitID: "visit-1"})
	require.NoError(t, err)

	require.Len(t, result.Recent, 2)
	assert.Equal(t, "evt-2", result.Recent[0].ID)
	assert.Equal(t, "evt-1", result.Recent[1].ID)

	require.Len(t, result.Snapshots, 2)
	assert.Equal(t, 2, result.Snapshots[0].Version)
	assert.Equal(t, 1, result.Snapshots[1].Version)
}
