package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"ccivisits-backend/application/commands"
	"ccivisits-backend/application/commands/bus"
	"ccivisits-backend/application/services"
	"ccivisits-backend/domain/ordering"
	"ccivisits-backend/pkg/auth"
	appErrors "ccivisits-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// OrderHandler exposes the reorder session and order-commit endpoints
type OrderHandler struct {
	commandBus *bus.CommandBus
	reorder    *services.ReorderService
	logger     *zap.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(
	commandBus *bus.CommandBus,
	reorder *services.ReorderService,
	logger *zap.Logger,
) *OrderHandler {
	return &OrderHandler{
		commandBus: commandBus,
		reorder:    reorder,
		logger:     logger,
	}
}

// DragRequest represents one drag step within a reorder session
type DragRequest struct {
	VisitID  string `json:"visit_id,omitempty"`
	TargetID string `json:"target_id,omitempty"`
}

// CommitOrderRequest represents a direct order commit
type CommitOrderRequest struct {
	Orders map[string]int `json:"orders"`
}

// StartSession handles POST /days/{day}/reorder
func (h *OrderHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	day, ok := h.dayParam(w, r)
	if !ok {
		return
	}
	ids, err := h.reorder.StartSession(r.Context(), day)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"day":     day,
		"ids":     ids,
		"spacing": ordering.OrderSpacing,
	})
}

// BeginDrag handles POST /days/{day}/reorder/drag
func (h *OrderHandler) BeginDrag(w http.ResponseWriter, r *http.Request) {
	day, ok := h.dayParam(w, r)
	if !ok {
		return
	}
	var req DragRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VisitID == "" {
		h.respondError(w, http.StatusBadRequest, "visit_id is required")
		return
	}
	if err := h.reorder.BeginDrag(day, req.VisitID); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"dragging": req.VisitID})
}

// DragOver handles POST /days/{day}/reorder/drag-over
func (h *OrderHandler) DragOver(w http.ResponseWriter, r *http.Request) {
	day, ok := h.dayParam(w, r)
	if !ok {
		return
	}
	var req DragRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TargetID == "" {
		h.respondError(w, http.StatusBadRequest, "target_id is required")
		return
	}
	ids, err := h.reorder.DragOver(day, req.TargetID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"ids": ids})
}

// Drop handles POST /days/{day}/reorder/drop
func (h *OrderHandler) Drop(w http.ResponseWriter, r *http.Request) {
	day, ok := h.dayParam(w, r)
	if !ok {
		return
	}
	if err := h.reorder.Drop(day); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CommitSession handles POST /days/{day}/reorder/commit, the "Done"
// action: diff the session's arrangement and persist only the changes.
func (h *OrderHandler) CommitSession(w http.ResponseWriter, r *http.Request) {
	day, ok := h.dayParam(w, r)
	if !ok {
		return
	}
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	changed, err := h.reorder.Commit(r.Context(), day, userCtx.UserID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"day":     day,
		"changed": changed,
	})
}

// DiscardSession handles DELETE /days/{day}/reorder
func (h *OrderHandler) DiscardSession(w http.ResponseWriter, r *http.Request) {
	day, ok := h.dayParam(w, r)
	if !ok {
		return
	}
	h.reorder.Discard(day)
	w.WriteHeader(http.StatusNoContent)
}

// CommitOrders handles PUT /days/{day}/order for clients that compute the
// changed order map themselves.
func (h *OrderHandler) CommitOrders(w http.ResponseWriter, r *http.Request) {
	day, ok := h.dayParam(w, r)
	if !ok {
		return
	}
	var req CommitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cmd := &commands.CommitDayOrderCommand{
		Day:    day,
		UserID: userCtx.UserID,
		Orders: req.Orders,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"day":     day,
		"written": len(req.Orders),
	})
}

func (h *OrderHandler) dayParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	day := chi.URLParam(r, "day")
	if day == "" {
		h.respondError(w, http.StatusBadRequest, "Day is required")
		return "", false
	}
	if _, err := time.Parse("2006-01-02", day); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid day format, expected YYYY-MM-DD")
		return "", false
	}
	return day, true
}

func (h *OrderHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *OrderHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    status,
	})
}

func (h *OrderHandler) respondServiceError(w http.ResponseWriter, err error) {
	if appErr := appErrors.GetAppError(err); appErr != nil {
		h.respondError(w, appErr.HTTPStatus, appErr.Message)
		return
	}
	h.logger.Error("reorder request failed", zap.Error(err))
	h.respondError(w, http.StatusInternalServerError, "Internal server error")
}
