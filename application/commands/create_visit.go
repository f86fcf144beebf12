package commands

import (
	"fmt"
	"time"
)

// CreateVisitCommand creates a new visit for an institution on a given day.
type CreateVisitCommand struct {
	InstitutionID   string    `json:"institution_id" validate:"required"`
	InstitutionName string    `json:"institution_name"`
	Date            time.Time `json:"date" validate:"required"`
	CreatorID       string    `json:"creator_id" validate:"required"`
	CreatorRole     string    `json:"creator_role"`
	Agenda          string    `json:"agenda"`

	// VisitID is populated by the handler so callers can read back the
	// identifier of the created visit.
	VisitID string `json:"-"`
}

// Validate validates the command
func (c *CreateVisitCommand) Validate() error {
	if c.InstitutionID == "" {
		return fmt.Errorf("institution ID is required")
	}
	if c.Date.IsZero() {
		return fmt.Errorf("visit date is required")
	}
	if c.CreatorID == "" {
		return fmt.Errorf("creator ID is required")
	}
	return nil
}
