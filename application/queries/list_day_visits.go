package queries

import "errors"

// ListDayVisitsQuery represents a query for one calendar day's visits in
// display order.
type ListDayVisitsQuery struct {
	Day string
}

// Validate validates the ListDayVisitsQuery
func (q ListDayVisitsQuery) Validate() error {
	if q.Day == "" {
		return errors.New("day is required")
	}
	return nil
}
