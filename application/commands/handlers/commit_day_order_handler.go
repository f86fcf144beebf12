package handlers

import (
	"context"

	"ccivisits-backend/application/commands"
	"ccivisits-backend/application/services"
	"go.uber.org/zap"
)

// CommitDayOrderHandler persists a batch of order-key writes for one day.
type CommitDayOrderHandler struct {
	reorder *services.ReorderService
	logger  *zap.Logger
}

// NewCommitDayOrderHandler creates a new commit day order handler
func NewCommitDayOrderHandler(reorder *services.ReorderService, logger *zap.Logger) *CommitDayOrderHandler {
	return &CommitDayOrderHandler{reorder: reorder, logger: logger}
}

// Handle executes the commit day order command
func (h *CommitDayOrderHandler) Handle(ctx context.Context, cmd *commands.CommitDayOrderCommand) error {
	deferred, err := h.reorder.CommitOrders(ctx, cmd.Day, cmd.UserID, cmd.Orders)
	if err != nil {
		return err
	}
	if deferred {
		h.logger.Info("order commit deferred until reconnect",
			zap.String("day", cmd.Day),
			zap.Int("changed", len(cmd.Orders)))
	}
	return nil
}
