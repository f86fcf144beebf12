package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"ccivisits-backend/application/ports"
	"ccivisits-backend/domain/events"
	"ccivisits-backend/domain/visit"
	"ccivisits-backend/tests/fixtures"
	"ccivisits-backend/tests/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testDay = "2024-06-10"

func seedDay(repo *mocks.MockVisitRepository, ctx context.Context) {
	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	a := fixtures.NewVisitBuilder().WithID("visit-a").WithDate(date).WithOrder(1000).Build()
	b := fixtures.NewVisitBuilder().WithID("visit-b").WithDate(date).WithOrder(2000).Build()
	c := fixtures.NewVisitBuilder().WithID("visit-c").WithDate(date).WithOrder(3000).Build()
	repo.On("ListByDay", ctx, testDay).Return([]*visit.Visit{a, b, c}, nil)
}

func TestReorderService_Commit_WritesOnlyChangedOrders(t *testing.T) {
	ctx := context.Background()
	mockVisitRepo := new(mocks.MockVisitRepository)
	mockQueue := new(mocks.MockPendingOrderQueue)
	mockEventBus := new(mocks.MockEventBus)
	connectivity := &mocks.StubConnectivity{IsOnline: true}

	seedDay(mockVisitRepo, ctx)
	mockVisitRepo.On("UpdateOrder", mock.Anything, "visit-c", 2000).Return(nil)
	mockVisitRepo.On("UpdateOrder", mock.Anything, "visit-b", 3000).Return(nil)
	mockEventBus.On("Publish", ctx, mock.MatchedBy(func(e events.DomainEvent) bool {
		oc, ok := e.(events.OrderCommitted)
		return ok && oc.Day == testDay && !oc.Deferred
	})).Return(nil)

	svc := NewReorderService(mockVisitRepo, mockQueue, connectivity, mockEventBus, zap.NewNop())

	ids, err := svc.StartSession(ctx, testDay)
	require.NoError(t, err)
	assert.Equal(t, []string{"visit-a", "visit-b", "visit-c"}, ids)

	require.NoError(t, svc.BeginDrag(testDay, "visit-c"))
	_, err = svc.DragOver(testDay, "visit-b")
	require.NoError(t, err)
	require.NoError(t, svc.Drop(testDay))

	changed, err := svc.Commit(ctx, testDay, "user-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"visit-c": 2000, "visit-b": 3000}, changed)

	mockVisitRepo.AssertExpectations(t)
	mockVisitRepo.AssertNotCalled(t, "UpdateOrder", mock.Anything, "visit-a", mock.Anything)
	mockEventBus.AssertExpectations(t)
}

func TestReorderService_Commit_NoChangesIssuesNoWrites(t *testing.T) {
	ctx := context.Background()
	mockVisitRepo := new(mocks.MockVisitRepository)
	mockQueue := new(mocks.MockPendingOrderQueue)
	mockEventBus := new(mocks.MockEventBus)
	connectivity := &mocks.StubConnectivity{IsOnline: true}

	seedDay(mockVisitRepo, ctx)

	svc := NewReorderService(mockVisitRepo, mockQueue, connectivity, mockEventBus, zap.NewNop())
	_, err := svc.StartSession(ctx, testDay)
	require.NoError(t, err)

	changed, err := svc.Commit(ctx, testDay, "user-1")
	require.NoError(t, err)
	assert.Empty(t, changed)

	mockVisitRepo.AssertNotCalled(t, "UpdateOrder", mock.Anything, mock.Anything, mock.Anything)
	mockEventBus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestReorderService_Commit_OfflineQueuesWrites(t *testing.T) {
	ctx := context.Background()
	mockVisitRepo := new(mocks.MockVisitRepository)
	mockQueue := new(mocks.MockPendingOrderQueue)
	mockEventBus := new(mocks.MockEventBus)
	connectivity := &mocks.StubConnectivity{IsOnline: false}

	seedDay(mockVisitRepo, ctx)
	mockQueue.On("Enqueue", ctx, mock.MatchedBy(func(c ports.OrderCommit) bool {
		return c.Day == testDay && len(c.Orders) == 2
	})).Return(nil)
	mockEventBus.On("Publish", ctx, mock.MatchedBy(func(e events.DomainEvent) bool {
		oc, ok := e.(events.OrderCommitted)
		return ok && oc.Deferred
	})).Return(nil)

	svc := NewReorderService(mockVisitRepo, mockQueue, connectivity, mockEventBus, zap.NewNop())
	_, err := svc.StartSession(ctx, testDay)
	require.NoError(t, err)
	require.NoError(t, svc.BeginDrag(testDay, "visit-c"))
	_, err = svc.DragOver(testDay, "visit-b")
	require.NoError(t, err)

	_, err = svc.Commit(ctx, testDay, "user-1")
	require.NoError(t, err)

	mockVisitRepo.AssertNotCalled(t, "UpdateOrder", mock.Anything, mock.Anything, mock.Anything)
	mockQueue.AssertExpectations(t)
	mockEventBus.AssertExpectations(t)
}

func TestReorderService_FlushPending_ReplaysQueuedWrites(t *testing.T) {
	ctx := context.Background()
	mockVisitRepo := new(mocks.MockVisitRepository)
	mockQueue := new(mocks.MockPendingOrderQueue)
	mockEventBus := new(mocks.MockEventBus)
	connectivity := &mocks.StubConnectivity{IsOnline: true}

	queued := ports.OrderCommit{
		Day:    testDay,
		UserID: "user-1",
		Orders: map[string]int{"visit-c": 2000, "visit-b": 3000},
	}
	mockQueue.On("DrainAll", ctx).Return([]ports.OrderCommit{queued}, nil)
	mockVisitRepo.On("UpdateOrder", mock.Anything, "visit-c", 2000).Return(nil)
	mockVisitRepo.On("UpdateOrder", mock.Anything, "visit-b", 3000).Return(nil)
	mockEventBus.On("Publish", ctx, mock.Anything).Return(nil)

	svc := NewReorderService(mockVisitRepo, mockQueue, connectivity, mockEventBus, zap.NewNop())
	require.NoError(t, svc.FlushPending(ctx))

	mockVisitRepo.AssertExpectations(t)
	mockQueue.AssertNotCalled(t, "Requeue", mock.Anything, mock.Anything)
}

func TestReorderService_FlushPending_RequeuesFailedCommit(t *testing.T) {
	ctx := context.Background()
	mockVisitRepo := new(mocks.MockVisitRepository)
	mockQueue := new(mocks.MockPendingOrderQueue)
	mockEventBus := new(mocks.MockEventBus)
	connectivity := &mocks.StubConnectivity{IsOnline: true}

	queued := ports.OrderCommit{
		Day:    testDay,
		UserID: "user-1",
		Orders: map[string]int{"visit-c": 2000},
	}
	mockQueue.On("DrainAll", ctx).Return([]ports.OrderCommit{queued}, nil)
	mockVisitRepo.On("UpdateOrder", mock.Anything, "visit-c", 2000).
		Return(errors.New("connection reset"))
	mockQueue.On("Requeue", ctx, queued).Return(nil)

	svc := NewReorderService(mockVisitRepo, mockQueue, connectivity, mockEventBus, zap.NewNop())
	err := svc.FlushPending(ctx)
	assert.Error(t, err)

	mockQueue.AssertExpectations(t)
	mockEventBus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestReorderService_StartSession_ResumesInProgressArrangement(t *testing.T) {
	ctx := context.Background()
	mockVisitRepo := new(mocks.MockVisitRepository)
	mockQueue := new(mocks.MockPendingOrderQueue)
	mockEventBus := new(mocks.MockEventBus)
	connectivity := &mocks.StubConnectivity{IsOnline: true}

	seedDay(mockVisitRepo, ctx)

	svc := NewReorderService(mockVisitRepo, mockQueue, connectivity, mockEventBus, zap.NewNop())
	_, err := svc.StartSession(ctx, testDay)
	require.NoError(t, err)
	require.NoError(t, svc.BeginDrag(testDay, "visit-c"))
	ids, err := svc.DragOver(testDay, "visit-a")
	require.NoError(t, err)
	require.NoError(t, svc.Drop(testDay))
	assert.Equal(t, []string{"visit-c", "visit-a", "visit-b"}, ids)

	// Leaving move mode without committing keeps the arrangement.
	ids, err = svc.StartSession(ctx, testDay)
	require.NoError(t, err)
	assert.Equal(t, []string{"visit-c", "visit-a", "visit-b"}, ids)

	// Only an explicit discard resets to the persisted order.
	svc.Discard(testDay)
	ids, err = svc.StartSession(ctx, testDay)
	require.NoError(t, err)
	assert.Equal(t, []string{"visit-a", "visit-b", "visit-c"}, ids)
}

func TestReorderService_SessionSurvivesDrop(t *testing.T) {
	ctx := context.Background()
	mockVisitRepo := new(mocks.MockVisitRepository)
	mockQueue := new(mocks.MockPendingOrderQueue)
	mockEventBus := new(mocks.MockEventBus)
	connectivity := &mocks.StubConnectivity{IsOnline: true}

	seedDay(mockVisitRepo, ctx)

	svc := NewReorderService(mockVisitRepo, mockQueue, connectivity, mockEventBus, zap.NewNop())
	_, err := svc.StartSession(ctx, testDay)
	require.NoError(t, err)
	require.NoError(t, svc.BeginDrag(testDay, "visit-a"))
	require.NoError(t, svc.Drop(testDay))

	// Drop ends the drag but not the session.
	require.NoError(t, svc.BeginDrag(testDay, "visit-b"))

	svc.Discard(testDay)
	assert.Error(t, svc.BeginDrag(testDay, "visit-b"))
}
