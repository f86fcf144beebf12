package queries

// ListUsersQuery represents a query for all directory users.
type ListUsersQuery struct {
	Role string
}

// Validate validates the ListUsersQuery
func (q ListUsersQuery) Validate() error {
	return nil
}
