package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"ccivisits-backend/domain/directory"
	"ccivisits-backend/domain/history"
	"ccivisits-backend/tests/fixtures"
	"ccivisits-backend/tests/mocks"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestHistoryService_RecordVisitUpdate_StampsActor(t *testing.T) {
	ctx := context.Background()
	mockHistoryRepo := new(mocks.MockHistoryRepository)
	mockUserRepo := new(mocks.MockUserRepository)
	logger := zap.NewNop()

	before := fixtures.NewVisitBuilder().WithAgenda("Old agenda").Build()
	after := before.Clone()
	after.Agenda = "New agenda"

	mockUserRepo.On("GetByID", ctx, "user-1").
		Return(fixtures.NewTestUser("user-1", "Priya Nair", directory.RoleVisitor), nil)
	mockHistoryRepo.On("AppendEvents", ctx, after.ID, mock.MatchedBy(func(evts []history.Event) bool {
		return len(evts) == 1 &&
			evts[0].Kind == history.KindAgendaEdit &&
			evts[0].ActorID == "user-1" &&
			evts[0].ActorName == "Priya Nair"
	})).Return(nil)
	mockHistoryRepo.On("ListEvents", ctx, after.ID).Return([]history.Event{}, nil)
	mockHistoryRepo.On("ListSnapshots", ctx, after.ID).Return([]history.Snapshot{}, nil)

	svc := NewHistoryService(mockHistoryRepo, mockUserRepo, nil, logger)
	svc.RecordVisitUpdate(ctx, before, after, "user-1")

	mockHistoryRepo.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
}

func TestHistoryService_RecordVisitUpdate_NoChangesNoWrites(t *testing.T) {
	ctx := context.Background()
	mockHistoryRepo := new(mocks.MockHistoryRepository)
	mockUserRepo := new(mocks.MockUserRepository)

	before := fixtures.NewVisitBuilder().WithAgenda("Same").Build()
	after := before.Clone()

	svc := NewHistoryService(mockHistoryRepo, mockUserRepo, nil, zap.NewNop())
	svc.RecordVisitUpdate(ctx, before, after, "user-1")

	mockHistoryRepo.AssertNotCalled(t, "AppendEvents", mock.Anything, mock.Anything, mock.Anything)
}

func TestHistoryService_RecordVisitUpdate_UnknownActorFallback(t *testing.T) {
	ctx := context.Background()
	mockHistoryRepo := new(mocks.MockHistoryRepository)
	mockUserRepo := new(mocks.MockUserRepository)

	before := fixtures.NewVisitBuilder().Build()
	after := before.Clone()
	after.Debrief = "What we found"

	mockUserRepo.On("GetByID", ctx, "ghost").Return(nil, errors.New("not found"))
	mockHistoryRepo.On("AppendEvents", ctx, after.ID, mock.MatchedBy(func(evts []history.Event) bool {
		return len(evts) == 1 && evts[0].ActorName == "Unknown"
	})).Return(nil)
	mockHistoryRepo.On("ListEvents", ctx, after.ID).Return([]history.Event{}, nil)
	mockHistoryRepo.On("ListSnapshots", ctx, after.ID).Return([]history.Snapshot{}, nil)

	svc := NewHistoryService(mockHistoryRepo, mockUserRepo, nil, zap.NewNop())
	svc.RecordVisitUpdate(ctx, before, after, "ghost")

	mockHistoryRepo.AssertExpectations(t)
}

func TestHistoryService_RecordVisitUpdate_AppendFailureSwallowed(t *testing.T) {
	ctx := context.Background()
	mockHistoryRepo := new(mocks.MockHistoryRepository)
	mockUserRepo := new(mocks.MockUserRepository)

	before := fixtures.NewVisitBuilder().Build()
	after := before.Clone()
	after.Agenda = "Changed"

	mockUserRepo.On("GetByID", ctx, "user-1").
		Return(fixtures.NewTestUser("user-1", "Priya Nair", directory.RoleVisitor), nil)
	mockHistoryRepo.On("AppendEvents", ctx, after.ID, mock.Anything).
		Return(errors.New("table throttled"))

	svc := NewHistoryService(mockHistoryRepo, mockUserRepo, nil, zap.NewNop())
	svc.RecordVisitUpdate(ctx, before, after, "user-1")

	// Compaction never runs when the append failed.
	mockHistoryRepo.AssertNotCalled(t, "ListEvents", mock.Anything, mock.Anything)
	mockHistoryRepo.AssertNotCalled(t, "SaveSnapshot", mock.Anything, mock.Anything)
}

func TestHistoryService_Compact_SavesFullBatches(t *testing.T) {
	ctx := context.Background()
	mockHistoryRepo := new(mocks.MockHistoryRepository)
	mockUserRepo := new(mocks.MockUserRepository)

	base := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	events := make([]history.Event, 0, 12)
	for i := 0; i < 12; i++ {
		events = append(events, history.Event{
			ID:        fmt.Sprintf("evt-%02d", i),
			VisitID:   "visit-1",
			Kind:      history.KindAgendaEdit,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
	}

	mockHistoryRepo.On("ListEvents", ctx, "visit-1").Return(events, nil)
	mockHistoryRepo.On("ListSnapshots", ctx, "visit-1").Return([]history.Snapshot{}, nil)
	mockHistoryRepo.On("SaveSnapshot", ctx, mock.MatchedBy(func(snap history.Snapshot) bool {
		return snap.Version == 1 && snap.EventCount == history.CompactionBatchSize
	})).Return(nil).Once()
	mockHistoryRepo.On("SaveSnapshot", ctx, mock.MatchedBy(func(snap history.Snapshot) bool {
		return snap.Version == 2 && snap.EventCount == 2
	})).Return(nil).Once()

	svc := NewHistoryService(mockHistoryRepo, mockUserRepo, nil, zap.NewNop())
	svc.Compact(ctx, "visit-1")

	mockHistoryRepo.AssertExpectations(t)
	mockHistoryRepo.AssertNumberOfCalls(t, "SaveSnapshot", 2)
}
