package handlers

import (
	"context"
	"fmt"
	"time"

	"ccivisits-backend/application/commands"
	"ccivisits-backend/application/ports"
	"ccivisits-backend/application/services"
	"ccivisits-backend/domain/events"
	"ccivisits-backend/domain/visit"
	"go.uber.org/zap"
)

// UpdateVisitHandler handles partial visit updates and triggers the
// history trail for every applied edit.
type UpdateVisitHandler struct {
	visitRepo ports.VisitRepository
	history   *services.HistoryService
	eventBus  ports.EventBus
	logger    *zap.Logger
}

// NewUpdateVisitHandler creates a new update visit handler
func NewUpdateVisitHandler(
	visitRepo ports.VisitRepository,
	history *services.HistoryService,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *UpdateVisitHandler {
	return &UpdateVisitHandler{
		visitRepo: visitRepo,
		history:   history,
		eventBus:  eventBus,
		logger:    logger,
	}
}

// Handle executes the update visit command
func (h *UpdateVisitHandler) Handle(ctx context.Context, cmd *commands.UpdateVisitCommand) error {
	v, err := h.visitRepo.GetByID(ctx, cmd.VisitID)
	if err != nil {
		return fmt.Errorf("failed to get visit: %w", err)
	}

	// Snapshot the pre-edit state for the history diff.
	before := v.Clone()

	if cmd.Agenda != nil {
		v.Agenda = *cmd.Agenda
		v.Touch()
	}
	if cmd.Debrief != nil {
		v.Debrief = *cmd.Debrief
		v.Touch()
	}
	if cmd.Status != nil {
		v.Status = visit.ParseStatus(*cmd.Status)
		v.Touch()
	}
	if cmd.PersonMet != nil {
		v.PersonMet = visit.ParsePersonMet(*cmd.PersonMet)
		v.Touch()
	}
	if cmd.Quality != nil {
		v.Quality = visit.ParseQuality(*cmd.Quality)
		v.Touch()
	}
	if cmd.Hours != nil {
		v.Hours = visit.ParseHours(*cmd.Hours)
		v.Touch()
	}
	if cmd.HasNotes {
		v.RewriteNotes(rebuildNotes(before, cmd.Notes))
	}

	if err := h.visitRepo.Save(ctx, v); err != nil {
		return fmt.Errorf("failed to save visit: %w", err)
	}

	// Best effort; a history failure never fails the save.
	h.history.RecordVisitUpdate(ctx, before, v, cmd.ActorID)

	h.logger.Info("updated visit",
		zap.String("visit_id", v.ID),
		zap.String("actor_id", cmd.ActorID))

	event := events.NewVisitUpdated(v.ID, cmd.ActorID, v.DayKey(), time.Now())
	if err := h.eventBus.Publish(ctx, event); err != nil {
		h.logger.Warn("failed to publish visit updated event",
			zap.String("visit_id", v.ID), zap.Error(err))
	}
	return nil
}

// rebuildNotes maps incoming note inputs onto the visit's note list.
// Inputs carrying an existing ID keep its creation time; inputs without
// one become new notes.
func rebuildNotes(before *visit.Visit, inputs []commands.NoteInput) []visit.Note {
	notes := make([]visit.Note, 0, len(inputs))
	for _, in := range inputs {
		if in.ID == "" {
			notes = append(notes, visit.NewNote(in.Text))
			continue
		}
		if existing, ok := visit.NoteByID(before.Notes, in.ID); ok {
			existing.Text = in.Text
			notes = append(notes, existing)
			continue
		}
		note := visit.NewNote(in.Text)
		note.ID = in.ID
		notes = append(notes, note)
	}
	return notes
}
