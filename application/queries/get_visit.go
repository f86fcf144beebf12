package queries

import "errors"

// GetVisitQuery represents a query to get a single visit
type GetVisitQuery struct {
	VisitID string
}

// Validate validates the GetVisitQuery
func (q GetVisitQuery) Validate() error {
	if q.VisitID == "" {
		return errors.New("visit ID is required")
	}
	return nil
}
