package directory

import "time"

// Institution is one Child Care Institution (CCI) record, managed by
// admins and referenced by visits.
type Institution struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	District  string    `json:"district,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
