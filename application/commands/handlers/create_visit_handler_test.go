package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"ccivisits-backend/application/commands"
	"ccivisits-backend/domain/directory"
	"ccivisits-backend/domain/visit"
	"ccivisits-backend/tests/fixtures"
	"ccivisits-backend/tests/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateVisitHandler_Handle_Success(t *testing.T) {
	ctx := context.Background()
	mockVisitRepo := new(mocks.MockVisitRepository)
	mockInstRepo := new(mocks.MockInstitutionRepository)
	mockUserRepo := new(mocks.MockUserRepository)
	mockEventBus := new(mocks.MockEventBus)

	cmd := &commands.CreateVisitCommand{
		InstitutionID:   "cci-42",
		InstitutionName: "Sunrise Children's Home",
		Date:            time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		CreatorID:       "user-1",
		CreatorRole:     "visitor",
		Agenda:          "Quarterly inspection",
	}

	mockUserRepo.On("GetByID", ctx, "user-1").
		Return(fixtures.NewTestUser("user-1", "Priya Nair", directory.RoleVisitor), nil)
	mockVisitRepo.On("Save", ctx, mock.MatchedBy(func(v *visit.Visit) bool {
		return v.InstitutionID == "cci-42" &&
			v.InstitutionName == "Sunrise Children's Home" &&
			v.Agenda == "Quarterly inspection" &&
			v.Status == visit.StatusScheduled
	})).Return(nil)
	mockEventBus.On("Publish", ctx, mock.Anything).Return(nil)

	handler := NewCreateVisitHandler(mockVisitRepo, mockInstRepo, mockUserRepo, mockEventBus, zap.NewNop())
	err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.NotEmpty(t, cmd.VisitID)
	mockVisitRepo.AssertExpectations(t)
	// Name was supplied, so no directory lookup is needed.
	mockInstRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestCreateVisitHandler_Handle_ResolvesInstitutionName(t *testing.T) {
	ctx := context.Background()
	mockVisitRepo := new(mocks.MockVisitRepository)
	mockInstRepo := new(mocks.MockInstitutionRepository)
	mockUserRepo := new(mocks.MockUserRepository)
	mockEventBus := new(mocks.MockEventBus)

	cmd := &commands.CreateVisitCommand{
		InstitutionID: "cci-42",
		Date:          time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		CreatorID:     "user-1",
	}

	mockInstRepo.On("GetByID", ctx, "cci-42").Return(&directory.Institution{
		ID:   "cci-42",
		Name: "Sunrise Children's Home",
	}, nil)
	mockUserRepo.On("GetByID", ctx, "user-1").
		Return(fixtures.NewTestUser("user-1", "Priya Nair", directory.RoleVisitor), nil)
	mockVisitRepo.On("Save", ctx, mock.MatchedBy(func(v *visit.Visit) bool {
		return v.InstitutionName == "Sunrise Children's Home"
	})).Return(nil)
	mockEventBus.On("Publish", ctx, mock.Anything).Return(nil)

	handler := NewCreateVisitHandler(mockVisitRepo, mockInstRepo, mockUserRepo, mockEventBus, zap.NewNop())
	require.NoError(t, handler.Handle(ctx, cmd))

	mockInstRepo.AssertExpectations(t)
	mockVisitRepo.AssertExpectations(t)
}

func TestCreateVisitHandler_Handle_FilledByRoleComesFromDirectory(t *testing.T) {
	ctx := context.Background()
	mockVisitRepo := new(mocks.MockVisitRepository)
	mockInstRepo := new(mocks.MockInstitutionRepository)
	mockUserRepo := new(mocks.MockUserRepository)
	mockEventBus := new(mocks.MockEventBus)

	// The token claims "viewer" but the directory assignment says admin.
	cmd := &commands.CreateVisitCommand{
		InstitutionID:   "cci-42",
		InstitutionName: "Sunrise Children's Home",
		Date:            time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		CreatorID:       "user-1",
		CreatorRole:     "viewer",
	}

	mockUserRepo.On("GetByID", ctx, "user-1").
		Return(fixtures.NewTestUser("user-1", "Priya Nair", directory.RoleAdmin), nil)
	mockVisitRepo.On("Save", ctx, mock.MatchedBy(func(v *visit.Visit) bool {
		return v.CreatorRole == string(directory.RoleAdmin)
	})).Return(nil)
	mockEventBus.On("Publish", ctx, mock.Anything).Return(nil)

	handler := NewCreateVisitHandler(mockVisitRepo, mockInstRepo, mockUserRepo, mockEventBus, zap.NewNop())
	require.NoError(t, handler.Handle(ctx, cmd))

	mockUserRepo.AssertExpectations(t)
	mockVisitRepo.AssertExpectations(t)
}

func TestCreateVisitHandler_Handle_MissingDirectoryEntryKeepsTokenRole(t *testing.T) {
	ctx := context.Background()
	mockVisitRepo := new(mocks.MockVisitRepository)
	mockInstRepo := new(mocks.MockInstitutionRepository)
	mockUserRepo := new(mocks.MockUserRepository)
	mockEventBus := new(mocks.MockEventBus)

	cmd := &commands.CreateVisitCommand{
		InstitutionID:   "cci-42",
		InstitutionName: "Sunrise Children's Home",
		Date:            time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		CreatorID:       "user-ghost",
		CreatorRole:     "visitor",
	}

	mockUserRepo.On("GetByID", ctx, "user-ghost").
		Return(nil, errors.New("user not found"))
	mockVisitRepo.On("Save", ctx, mock.MatchedBy(func(v *visit.Visit) bool {
		return v.CreatorRole == "visitor"
	})).Return(nil)
	mockEventBus.On("Publish", ctx, mock.Anything).Return(nil)

	handler := NewCreateVisitHandler(mockVisitRepo, mockInstRepo, mockUserRepo, mockEventBus, zap.NewNop())
	require.NoError(t, handler.Handle(ctx, cmd))

	mockVisitRepo.AssertExpectations(t)
}

func TestCreateVisitHandler_Handle_SaveFailure(t *testing.T) {
	ctx := context.Background()
	mockVisitRepo := new(mocks.MockVisitRepository)
	mockInstRepo := new(mocks.MockInstitutionRepository)
	mockUserRepo := new(mocks.MockUserRepository)
	mockEventBus := new(mocks.MockEventBus)

	cmd := &commands.CreateVisitCommand{
		InstitutionID:   "cci-42",
		InstitutionName: "Sunrise Children's Home",
		Date:            time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		CreatorID:       "user-1",
	}

	mockUserRepo.On("GetByID", ctx, "user-1").
		Return(fixtures.NewTestUser("user-1", "Priya Nair", directory.RoleVisitor), nil)
	mockVisitRepo.On("Save", ctx, mock.Anything).Return(errors.New("write throttled"))

	handler := NewCreateVisitHandler(mockVisitRepo, mockInstRepo, mockUserRepo, mockEventBus, zap.NewNop())
	err := handler.Handle(ctx, cmd)

	assert.Error(t, err)
	assert.Empty(t, cmd.VisitID)
	mockEventBus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}
