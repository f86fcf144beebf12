package directory

import "time"

// Role is the coarse permission tag carried on a user record and mirrored
// into JWT claims by the role-sync trigger.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleVisitor Role = "visitor"
	RoleViewer  Role = "viewer"
)

// User is one entry in the users directory. The directory is the source of
// truth for display names and role claims.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"display_name"`
	Role          Role      `json:"role"`
	InstitutionID string    `json:"institution_id,omitempty"`
	Disabled      bool      `json:"disabled"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Name returns the display name with an "Unknown" fallback so a missing
// directory entry never blanks out an attribution line.
func (u *User) Name() string {
	if u == nil || u.DisplayName == "" {
		return "Unknown"
	}
	return u.DisplayName
}
