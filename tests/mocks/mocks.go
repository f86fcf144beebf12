// Package mocks provides testify mocks for the application ports.
package mocks

import (
	"context"
	"time"

	"ccivisits-backend/application/ports"
	"ccivisits-backend/domain/directory"
	"ccivisits-backend/domain/events"
	"ccivisits-backend/domain/history"
	"ccivisits-backend/domain/visit"
	"github.com/stretchr/testify/mock"
)

// MockVisitRepository is a mock implementation of ports.VisitRepository
type MockVisitRepository struct {
	mock.Mock
}

func (m *MockVisitRepository) Save(ctx context.Context, v *visit.Visit) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockVisitRepository) GetByID(ctx context.Context, id string) (*visit.Visit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*visit.Visit), args.Error(1)
}

func (m *MockVisitRepository) ListByDay(ctx context.Context, dayKey string) ([]*visit.Visit, error) {
	args := m.Called(ctx, dayKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*visit.Visit), args.Error(1)
}

func (m *MockVisitRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]*visit.Visit, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*visit.Visit), args.Error(1)
}

func (m *MockVisitRepository) ListAll(ctx context.Context, pageToken string, limit int) ([]*visit.Visit, string, error) {
	args := m.Called(ctx, pageToken, limit)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]*visit.Visit), args.String(1), args.Error(2)
}

func (m *MockVisitRepository) UpdateOrder(ctx context.Context, id string, order int) error {
	args := m.Called(ctx, id, order)
	return args.Error(0)
}

// MockHistoryRepository is a mock implementation of ports.HistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) AppendEvents(ctx context.Context, visitID string, evts []history.Event) error {
	args := m.Called(ctx, visitID, evts)
	return args.Error(0)
}

func (m *MockHistoryRepository) ListEvents(ctx context.Context, visitID string) ([]history.Event, error) {
	args := m.Called(ctx, visitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]history.Event), args.Error(1)
}

func (m *MockHistoryRepository) ListSnapshots(ctx context.Context, visitID string) ([]history.Snapshot, error) {
	args := m.Called(ctx, visitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]history.Snapshot), args.Error(1)
}

func (m *MockHistoryRepository) SaveSnapshot(ctx context.Context, snap history.Snapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of ports.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, u *directory.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*directory.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directory.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*directory.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*directory.User), args.Error(1)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id string, role directory.Role) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

// MockInstitutionRepository is a mock implementation of ports.InstitutionRepository
type MockInstitutionRepository struct {
	mock.Mock
}

func (m *MockInstitutionRepository) Save(ctx context.Context, inst *directory.Institution) error {
	args := m.Called(ctx, inst)
	return args.Error(0)
}

func (m *MockInstitutionRepository) GetByID(ctx context.Context, id string) (*directory.Institution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directory.Institution), args.Error(1)
}

func (m *MockInstitutionRepository) List(ctx context.Context) ([]*directory.Institution, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*directory.Institution), args.Error(1)
}

// MockEventBus is a mock implementation of ports.EventBus
type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventBus) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	args := m.Called(ctx, evts)
	return args.Error(0)
}

// MockPendingOrderQueue is a mock implementation of ports.PendingOrderQueue
type MockPendingOrderQueue struct {
	mock.Mock
}

func (m *MockPendingOrderQueue) Enqueue(ctx context.Context, commit ports.OrderCommit) error {
	args := m.Called(ctx, commit)
	return args.Error(0)
}

func (m *MockPendingOrderQueue) DrainAll(ctx context.Context) ([]ports.OrderCommit, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.OrderCommit), args.Error(1)
}

func (m *MockPendingOrderQueue) Requeue(ctx context.Context, commit ports.OrderCommit) error {
	args := m.Called(ctx, commit)
	return args.Error(0)
}

func (m *MockPendingOrderQueue) Len(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// StubConnectivity reports a fixed online state.
type StubConnectivity struct {
	IsOnline bool
}

func (s *StubConnectivity) Online() bool { return s.IsOnline }
