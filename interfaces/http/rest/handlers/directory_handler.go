package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"ccivisits-backend/application/ports"
	"ccivisits-backend/application/queries"
	querybus "ccivisits-backend/application/queries/bus"
	"ccivisits-backend/domain/directory"
	"ccivisits-backend/domain/events"
	appErrors "ccivisits-backend/pkg/errors"
	"ccivisits-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DirectoryHandler handles the admin users and institutions endpoints
type DirectoryHandler struct {
	queryBus *querybus.QueryBus
	userRepo ports.UserRepository
	instRepo ports.InstitutionRepository
	eventBus ports.EventBus
	logger   *zap.Logger
}

// NewDirectoryHandler creates a new directory handler
func NewDirectoryHandler(
	queryBus *querybus.QueryBus,
	userRepo ports.UserRepository,
	instRepo ports.InstitutionRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *DirectoryHandler {
	return &DirectoryHandler{
		queryBus: queryBus,
		userRepo: userRepo,
		instRepo: instRepo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// UpdateRoleRequest represents the request body for a role change
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin visitor viewer"`
}

// CreateUserRequest represents the request body for a new directory user
type CreateUserRequest struct {
	Email         string `json:"email" validate:"required,email"`
	DisplayName   string `json:"display_name" validate:"required,min=1,max=200"`
	Role          string `json:"role" validate:"required,oneof=admin visitor viewer"`
	InstitutionID string `json:"institution_id,omitempty"`
}

// CreateInstitutionRequest represents the request body for a new CCI
type CreateInstitutionRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	District string `json:"district,omitempty" validate:"max=100"`
}

// ListUsers handles GET /users
func (h *DirectoryHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListUsersQuery{
		Role: r.URL.Query().Get("role"),
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"users": result})
}

// CreateUser handles POST /users
func (h *DirectoryHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	// An institution assignment must point at a real CCI.
	if req.InstitutionID != "" {
		if _, err := h.instRepo.GetByID(r.Context(), req.InstitutionID); err != nil {
			h.respondServiceError(w, err)
			return
		}
	}

	now := time.Now()
	user := &directory.User{
		ID:            uuid.New().String(),
		Email:         req.Email,
		DisplayName:   req.DisplayName,
		Role:          directory.Role(req.Role),
		InstitutionID: req.InstitutionID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.userRepo.Save(r.Context(), user); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, user)
}

// UpdateUserRole handles PUT /users/{userID}/role
func (h *DirectoryHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		h.respondError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	oldRole := string(user.Role)
	if oldRole == req.Role {
		h.respondJSON(w, http.StatusOK, map[string]interface{}{"id": userID, "role": req.Role})
		return
	}

	if err := h.userRepo.UpdateRole(r.Context(), userID, directory.Role(req.Role)); err != nil {
		h.respondServiceError(w, err)
		return
	}

	// The role-sync trigger mirrors this event into auth claims.
	event := events.NewUserRoleChanged(userID, oldRole, req.Role, time.Now())
	if err := h.eventBus.Publish(r.Context(), event); err != nil {
		h.logger.Warn("failed to publish role change event",
			zap.String("user_id", userID), zap.Error(err))
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{"id": userID, "role": req.Role})
}

// ListInstitutions handles GET /institutions
func (h *DirectoryHandler) ListInstitutions(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListInstitutionsQuery{
		ActiveOnly: r.URL.Query().Get("active") == "true",
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"institutions": result})
}

// CreateInstitution handles POST /institutions
func (h *DirectoryHandler) CreateInstitution(w http.ResponseWriter, r *http.Request) {
	var req CreateInstitutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	now := time.Now()
	inst := &directory.Institution{
		ID:        uuid.New().String(),
		Name:      req.Name,
		District:  req.District,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.instRepo.Save(r.Context(), inst); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, inst)
}

func (h *DirectoryHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *DirectoryHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    status,
	})
}

func (h *DirectoryHandler) respondServiceError(w http.ResponseWriter, err error) {
	if appErr := appErrors.GetAppError(err); appErr != nil {
		h.respondError(w, appErr.HTTPStatus, appErr.Message)
		return
	}
	h.logger.Error("directory request failed", zap.Error(err))
	h.respondError(w, http.StatusInternalServerError, "Internal server error")
}
