package queries

// ListInstitutionsQuery represents a query for institutions, optionally
// restricted to active ones.
type ListInstitutionsQuery struct {
	ActiveOnly bool
}

// Validate validates the ListInstitutionsQuery
func (q ListInstitutionsQuery) Validate() error {
	return nil
}
