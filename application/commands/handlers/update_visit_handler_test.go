package handlers

import (
	"context"
	"errors"
	"testing"

	"ccivisits-backend/application/commands"
	"ccivisits-backend/application/services"
	"ccivisits-backend/domain/directory"
	"ccivisits-backend/domain/history"
	"ccivisits-backend/domain/visit"
	"ccivisits-backend/tests/fixtures"
	"ccivisits-backend/tests/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strPtr(s string) *string {
	return &s
}

func newTestHistoryService(historyRepo *mocks.MockHistoryRepository, userRepo *mocks.MockUserRepository) *services.HistoryService {
	return services.NewHistoryService(historyRepo, userRepo, nil, zap.NewNop())
}

func TestUpdateVisitHandler_Handle_Success(t *testing.T) {
	ctx := context.Background()
	mockVisitRepo := new(mocks.MockVisitRepository)
	mockHistoryRepo := new(mocks.MockHistoryRepository)
	mockUserRepo := new(mocks.MockUserRepository)
	mockEventBus := new(mocks.MockEventBus)

	v := fixtures.NewVisitBuilder().WithAgenda("Plan kitchen inspection").Build()

	cmd := &commands.UpdateVisitCommand{
		VisitID: v.ID,
		ActorID: "user-1",
		Agenda:  strPtr("Plan kitchen and dormitory inspection"),
	}

	mockVisitRepo.On("GetByID", ctx, v.ID).Return(v, nil)
	mockVisitRepo.On("Save", ctx, mock.AnythingOfType("*visit.Visit")).Return(nil)
	mockUserRepo.On("GetByID", ctx, "user-1").
		Return(fixtures.NewTestUser("user-1", "Priya Nair", directory.RoleVisitor), nil)
	mockHistoryRepo.On("AppendEvents", ctx, v.ID, mock.MatchedBy(func(evts []history.Event) bool {
		return len(evts) == 1 && evts[0].Kind == history.KindAgendaEdit
	})).Return(nil)
	mockHistoryRepo.On("ListEvents", ctx, v.ID).Return([]history.Event{}, nil)
	mockHistoryRepo.On("ListSnapshots", ctx, v.ID).Return([]history.Snapshot{}, nil)
	mockEventBus.On("Publish", ctx, mock.Anything).Return(nil)

	handler := NewUpdateVisitHandler(mockVisitRepo, newTestHistoryService(mockHistoryRepo, mockUserRepo), mockEventBus, zap.NewNop())
	err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	mockVisitRepo.AssertExpectations(t)
	mockHistoryRepo.AssertExpectations(t)
	mockEventBus.AssertExpectations(t)
}

func TestUpdateVisitHandler_Handle_VisitNotFound(t *testing.T) {
	ctx := context.Background()
	mockVisitRepo := new(mocks.MockVisitRepository)
	mockHistoryRepo := new(mocks.MockHistoryRepository)
	mockUserRepo := new(mocks.MockUserRepository)
	mockEventBus := new(mocks.MockEventBus)

	mockVisitRepo.On("GetByID", ctx, "missing").Return(nil, errors.New("not found"))

	handler := NewUpdateVisitHandler(mockVisitRepo, newTestHistoryService(mockHistoryRepo, mockUserRepo), mockEventBus, zap.NewNop())
	err := handler.Handle(ctx, &commands.UpdateVisitCommand{VisitID: "missing", ActorID: "user-1"})

	assert.Error(t, err)
	mockVisitRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpdateVisitHandler_Handle_RewritesNotes(t *testing.T) {
	ctx := context.Background()
	mockVisitRepo := new(mocks.MockVisitRepository)
	mockHistoryRepo := new(mocks.MockHistoryRepository)
	mockUserRepo := new(mocks.MockUserRepository)
	mockEventBus := new(mocks.MockEventBus)

	v := fixtures.NewVisitBuilder().WithNote("note-1", "spoke with warden").Build()

	cmd := &commands.UpdateVisitCommand{
		VisitID:  v.ID,
		ActorID:  "user-1",
		HasNotes: true,
		Notes: []commands.NoteInput{
			{ID: "note-1", Text: "spoke with warden and cook"},
			{Text: "follow up on medical records"},
		},
	}

	mockVisitRepo.On("GetByID", ctx, v.ID).Return(v, nil)
	mockVisitRepo.On("Save", ctx, mock.MatchedBy(func(saved *visit.Visit) bool {
		if len(saved.Notes) != 2 {
			return false
		}
		return saved.Notes[0].ID == "note-1" &&
			saved.Notes[0].Text == "spoke with warden and cook" &&
			saved.Notes[1].ID != ""
	})).Return(nil)
	mockUserRepo.On("GetByID", ctx, "user-1").
		Return(fixtures.NewTestUser("user-1", "Priya Nair", directory.RoleVisitor), nil)
	mockHistoryRepo.On("AppendEvents", ctx, v.ID, mock.MatchedBy(func(evts []history.Event) bool {
		kinds := map[history.EventKind]int{}
		for _, e := range evts {
			kinds[e.Kind]++
		}
		return kinds[history.KindNoteEdit] == 1 && kinds[history.KindNoteAdd] == 1
	})).Return(nil)
	mockHistoryRepo.On("ListEvents", ctx, v.ID).Return([]history.Event{}, nil)
	mockHistoryRepo.On("ListSnapshots", ctx, v.ID).Return([]history.Snapshot{}, nil)
	mockEventBus.On("Publish", ctx, mock.Anything).Return(nil)

	handler := NewUpdateVisitHandler(mockVisitRepo, newTestHistoryService(mockHistoryRepo, mockUserRepo), mockEventBus, zap.NewNop())
	err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	mockVisitRepo.AssertExpectations(t)
	mockHistoryRepo.AssertExpectations(t)
}

func TestUpdateVisitHandler_Handle_HistoryFailureDoesNotFailSave(t *testing.T) {
	ctx := context.Background()
	mockVisitRepo := new(mocks.MockVisitRepository)
	mockHistoryRepo := new(mocks.MockHistoryRepository)
	mockUserRepo := new(mocks.MockUserRepository)
	mockEventBus := new(mocks.MockEventBus)

	v := fixtures.NewVisitBuilder().Build()

	mockVisitRepo.On("GetByID", ctx, v.ID).Return(v, nil)
	mockVisitRepo.On("Save", ctx, mock.Anything).Return(nil)
	mockUserRepo.On("GetByID", ctx, "user-1").Return(nil, errors.New("directory down"))
	mockHistoryRepo.On("AppendEvents", ctx, v.ID, mock.Anything).
		Return(errors.New("event table unavailable"))
	mockEventBus.On("Publish", ctx, mock.Anything).Return(nil)

	handler := NewUpdateVisitHandler(mockVisitRepo, newTestHistoryService(mockHistoryRepo, mockUserRepo), mockEventBus, zap.NewNop())
	err := handler.Handle(ctx, &commands.UpdateVisitCommand{
		VisitID: v.ID,
		ActorID: "user-1",
		Debrief: strPtr("Completed rounds"),
	})

	assert.NoError(t, err)
	mockVisitRepo.AssertExpectations(t)
}
