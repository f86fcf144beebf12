package handlers

import (
	"context"
	"fmt"
	"time"

	"ccivisits-backend/application/commands"
	"ccivisits-backend/application/ports"
	"ccivisits-backend/domain/events"
	"ccivisits-backend/domain/visit"
	"go.uber.org/zap"
)

// CreateVisitHandler handles visit creation commands
type CreateVisitHandler struct {
	visitRepo ports.VisitRepository
	instRepo  ports.InstitutionRepository
	userRepo  ports.UserRepository
	eventBus  ports.EventBus
	logger    *zap.Logger
}

// NewCreateVisitHandler creates a new create visit handler
func NewCreateVisitHandler(
	visitRepo ports.VisitRepository,
	instRepo ports.InstitutionRepository,
	userRepo ports.UserRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *CreateVisitHandler {
	return &CreateVisitHandler{
		visitRepo: visitRepo,
		instRepo:  instRepo,
		userRepo:  userRepo,
		eventBus:  eventBus,
		logger:    logger,
	}
}

// Handle executes the create visit command
func (h *CreateVisitHandler) Handle(ctx context.Context, cmd *commands.CreateVisitCommand) error {
	name := cmd.InstitutionName
	if name == "" {
		inst, err := h.instRepo.GetByID(ctx, cmd.InstitutionID)
		if err != nil {
			return fmt.Errorf("failed to resolve institution %s: %w", cmd.InstitutionID, err)
		}
		name = inst.Name
	}

	role := h.resolveCreatorRole(ctx, cmd)

	v, err := visit.New(cmd.Date, cmd.InstitutionID, name, cmd.CreatorID, role)
	if err != nil {
		return err
	}
	if cmd.Agenda != "" {
		v.Agenda = cmd.Agenda
		v.Touch()
	}

	if err := h.visitRepo.Save(ctx, v); err != nil {
		return fmt.Errorf("failed to save visit: %w", err)
	}
	cmd.VisitID = v.ID

	h.logger.Info("created visit",
		zap.String("visit_id", v.ID),
		zap.String("institution_id", v.InstitutionID),
		zap.String("day", v.DayKey()))

	event := events.NewVisitCreated(v.ID, v.InstitutionID, v.CreatorID, v.DayKey(), time.Now())
	if err := h.eventBus.Publish(ctx, event); err != nil {
		h.logger.Warn("failed to publish visit created event",
			zap.String("visit_id", v.ID), zap.Error(err))
	}
	return nil
}

// resolveCreatorRole fills the visit's filled-by tag from the creator's
// directory record and institution assignment. The token role is only a
// fallback for creators without a directory entry.
func (h *CreateVisitHandler) resolveCreatorRole(ctx context.Context, cmd *commands.CreateVisitCommand) string {
	user, err := h.userRepo.GetByID(ctx, cmd.CreatorID)
	if err != nil {
		h.logger.Warn("creator not in users directory, keeping token role",
			zap.String("creator_id", cmd.CreatorID), zap.Error(err))
		return cmd.CreatorRole
	}
	if user.InstitutionID != "" && user.InstitutionID != cmd.InstitutionID {
		h.logger.Info("creator assigned to a different institution",
			zap.String("creator_id", cmd.CreatorID),
			zap.String("assigned_institution", user.InstitutionID),
			zap.String("visit_institution", cmd.InstitutionID))
	}
	return string(user.Role)
}
