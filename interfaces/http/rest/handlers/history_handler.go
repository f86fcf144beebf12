package handlers

import (
	"encoding/json"
	"net/http"

	"ccivisits-backend/application/queries"
	querybus "ccivisits-backend/application/queries/bus"
	appErrors "ccivisits-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// HistoryHandler serves the edit-history view for a visit
type HistoryHandler struct {
	queryBus *querybus.QueryBus
	logger   *zap.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(queryBus *querybus.QueryBus, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{queryBus: queryBus, logger: logger}
}

// GetVisitHistory handles GET /visits/{visitID}/history
func (h *HistoryHandler) GetVisitHistory(w http.ResponseWriter, r *http.Request) {
	visitID := chi.URLParam(r, "visitID")
	if visitID == "" {
		h.respondError(w, http.StatusBadRequest, "Visit ID is required")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetVisitHistoryQuery{VisitID: visitID})
	if err != nil {
		if appErr := appErrors.GetAppError(err); appErr != nil {
			h.respondError(w, appErr.HTTPStatus, appErr.Message)
			return
		}
		h.logger.Error("history request failed", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

func (h *HistoryHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *HistoryHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    status,
	})
}
