package commands

import "fmt"

// CommitDayOrderCommand persists the manual ordering of one day's visits.
// Orders maps visit ID to its absolute order value; only entries that
// differ from the persisted value should be included.
type CommitDayOrderCommand struct {
	Day    string         `json:"day" validate:"required"`
	UserID string         `json:"user_id" validate:"required"`
	Orders map[string]int `json:"orders" validate:"required"`
}

// Validate validates the command
func (c *CommitDayOrderCommand) Validate() error {
	if c.Day == "" {
		return fmt.Errorf("day is required")
	}
	if c.UserID == "" {
		return fmt.Errorf("user ID is required")
	}
	if len(c.Orders) == 0 {
		return fmt.Errorf("orders are required")
	}
	return nil
}
