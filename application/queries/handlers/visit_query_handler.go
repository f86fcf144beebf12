package handlers

import (
	"context"
	"fmt"

	"ccivisits-backend/application/ports"
	"ccivisits-backend/application/queries"
	"ccivisits-backend/application/services"
	"ccivisits-backend/domain/visit"
	"go.uber.org/zap"
)

// VisitQueryHandler serves visit read queries
type VisitQueryHandler struct {
	visitRepo ports.VisitRepository
	logger    *zap.Logger
}

// NewVisitQueryHandler creates a new visit query handler
func NewVisitQueryHandler(visitRepo ports.VisitRepository, logger *zap.Logger) *VisitQueryHandler {
	return &VisitQueryHandler{visitRepo: visitRepo, logger: logger}
}

// HandleGetVisit retrieves a single visit by ID.
func (h *VisitQueryHandler) HandleGetVisit(ctx context.Context, q queries.GetVisitQuery) (*visit.Visit, error) {
	v, err := h.visitRepo.GetByID(ctx, q.VisitID)
	if err != nil {
		return nil, fmt.Errorf("failed to get visit: %w", err)
	}
	return v, nil
}

// HandleListDayVisits retrieves one day's visits in display order: the
// persisted order key ascending, creation time breaking ties.
func (h *VisitQueryHandler) HandleListDayVisits(ctx context.Context, q queries.ListDayVisitsQuery) ([]*visit.Visit, error) {
	visits, err := h.visitRepo.ListByDay(ctx, q.Day)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits for day %s: %w", q.Day, err)
	}
	services.SortByDisplayOrder(visits)
	return visits, nil
}
