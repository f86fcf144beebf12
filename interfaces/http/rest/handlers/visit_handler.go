package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"ccivisits-backend/application/commands"
	"ccivisits-backend/application/commands/bus"
	"ccivisits-backend/application/queries"
	querybus "ccivisits-backend/application/queries/bus"
	"ccivisits-backend/domain/visit"
	"ccivisits-backend/pkg/auth"
	appErrors "ccivisits-backend/pkg/errors"
	"ccivisits-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// VisitHandler handles visit-related HTTP requests
type VisitHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewVisitHandler creates a new visit handler
func NewVisitHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
) *VisitHandler {
	return &VisitHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
}

// CreateVisitRequest represents the request body for creating a visit
type CreateVisitRequest struct {
	InstitutionID   string `json:"institution_id" validate:"required"`
	InstitutionName string `json:"institution_name,omitempty"`
	Date            string `json:"date" validate:"required"`
	Agenda          string `json:"agenda,omitempty"`
}

// UpdateVisitRequest represents the request body for updating a visit
type UpdateVisitRequest struct {
	Agenda    *string              `json:"agenda,omitempty"`
	Debrief   *string              `json:"debrief,omitempty"`
	Status    *string              `json:"status,omitempty"`
	PersonMet *string              `json:"person_met,omitempty"`
	Quality   *string              `json:"quality,omitempty"`
	Hours     *string              `json:"hours,omitempty"`
	Notes     *[]commands.NoteInput `json:"notes,omitempty"`
}

// CreateVisit handles POST /visits
func (h *VisitHandler) CreateVisit(w http.ResponseWriter, r *http.Request) {
	var req CreateVisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		// Calendar pickers send bare dates.
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid date format")
			return
		}
	}

	role := ""
	if len(userCtx.Roles) > 0 {
		role = userCtx.Roles[0]
	}
	cmd := &commands.CreateVisitCommand{
		InstitutionID:   req.InstitutionID,
		InstitutionName: req.InstitutionName,
		Date:            date,
		CreatorID:       userCtx.UserID,
		CreatorRole:     role,
		Agenda:          req.Agenda,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.respondCommandError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":  cmd.VisitID,
		"day": visit.DayKey(date),
	})
}

// GetVisit handles GET /visits/{visitID}
func (h *VisitHandler) GetVisit(w http.ResponseWriter, r *http.Request) {
	visitID := chi.URLParam(r, "visitID")
	if visitID == "" {
		h.respondError(w, http.StatusBadRequest, "Visit ID is required")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetVisitQuery{VisitID: visitID})
	if err != nil {
		h.respondCommandError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// UpdateVisit handles PUT /visits/{visitID}
func (h *VisitHandler) UpdateVisit(w http.ResponseWriter, r *http.Request) {
	visitID := chi.URLParam(r, "visitID")
	if visitID == "" {
		h.respondError(w, http.StatusBadRequest, "Visit ID is required")
		return
	}

	var req UpdateVisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cmd := &commands.UpdateVisitCommand{
		VisitID:   visitID,
		ActorID:   userCtx.UserID,
		Agenda:    req.Agenda,
		Debrief:   req.Debrief,
		Status:    req.Status,
		PersonMet: req.PersonMet,
		Quality:   req.Quality,
		Hours:     req.Hours,
	}
	if req.Notes != nil {
		cmd.HasNotes = true
		cmd.Notes = *req.Notes
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.respondCommandError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":      visitID,
		"message": "Visit updated",
	})
}

// ListDayVisits handles GET /days/{day}/visits
func (h *VisitHandler) ListDayVisits(w http.ResponseWriter, r *http.Request) {
	day := chi.URLParam(r, "day")
	if day == "" {
		h.respondError(w, http.StatusBadRequest, "Day is required")
		return
	}
	if _, err := time.Parse("2006-01-02", day); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid day format, expected YYYY-MM-DD")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListDayVisitsQuery{Day: day})
	if err != nil {
		h.respondCommandError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"day":    day,
		"visits": result,
	})
}

func (h *VisitHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *VisitHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    status,
	})
}

// respondCommandError maps application errors onto HTTP statuses.
func (h *VisitHandler) respondCommandError(w http.ResponseWriter, err error) {
	if appErr := appErrors.GetAppError(err); appErr != nil {
		h.respondError(w, appErr.HTTPStatus, appErr.Message)
		return
	}
	h.logger.Error("request failed", zap.Error(err))
	h.respondError(w, http.StatusInternalServerError, "Internal server error")
}
