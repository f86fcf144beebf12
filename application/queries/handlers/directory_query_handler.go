package handlers

import (
	"context"
	"fmt"

	"ccivisits-backend/application/ports"
	"ccivisits-backend/application/queries"
	"ccivisits-backend/domain/directory"
	"go.uber.org/zap"
)

// DirectoryQueryHandler serves user and institution reads
type DirectoryQueryHandler struct {
	userRepo ports.UserRepository
	instRepo ports.InstitutionRepository
	logger   *zap.Logger
}

// NewDirectoryQueryHandler creates a new directory query handler
func NewDirectoryQueryHandler(
	userRepo ports.UserRepository,
	instRepo ports.InstitutionRepository,
	logger *zap.Logger,
) *DirectoryQueryHandler {
	return &DirectoryQueryHandler{userRepo: userRepo, instRepo: instRepo, logger: logger}
}

// HandleListUsers lists directory users, optionally filtered by role.
func (h *DirectoryQueryHandler) HandleListUsers(ctx context.Context, q queries.ListUsersQuery) ([]*directory.User, error) {
	users, err := h.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if q.Role == "" {
		return users, nil
	}
	filtered := make([]*directory.User, 0, len(users))
	for _, u := range users {
		if string(u.Role) == q.Role {
			filtered = append(filtered, u)
		}
	}
	return filtered, nil
}

// HandleListInstitutions lists institutions, optionally active only.
func (h *DirectoryQueryHandler) HandleListInstitutions(ctx context.Context, q queries.ListInstitutionsQuery) ([]*directory.Institution, error) {
	insts, err := h.instRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list institutions: %w", err)
	}
	if !q.ActiveOnly {
		return insts, nil
	}
	filtered := make([]*directory.Institution, 0, len(insts))
	for _, inst := range insts {
		if inst.Active {
			filtered = append(filtered, inst)
		}
	}
	return filtered, nil
}
