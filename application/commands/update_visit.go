package commands

import "fmt"

// NoteInput is the wire form of a visit note. Notes without an ID are
// treated as new and assigned one by the handler.
type NoteInput struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// UpdateVisitCommand applies a partial update to a visit. Nil fields are
// left untouched; a non-nil Notes slice replaces the full note list.
type UpdateVisitCommand struct {
	VisitID   string       `json:"visit_id" validate:"required"`
	ActorID   string       `json:"actor_id" validate:"required"`
	Agenda    *string      `json:"agenda"`
	Debrief   *string      `json:"debrief"`
	Status    *string      `json:"status"`
	PersonMet *string      `json:"person_met"`
	Quality   *string      `json:"quality"`
	Hours     *string      `json:"hours"`
	Notes     []NoteInput  `json:"notes"`
	HasNotes  bool         `json:"-"`
}

// Validate validates the command
func (c *UpdateVisitCommand) Validate() error {
	if c.VisitID == "" {
		return fmt.Errorf("visit ID is required")
	}
	if c.ActorID == "" {
		return fmt.Errorf("actor ID is required")
	}
	return nil
}
