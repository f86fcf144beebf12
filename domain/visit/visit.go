package visit

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingInstitution = errors.New("visit requires an institution")
	ErrMissingDate        = errors.New("visit requires a date")
)

// Visit is the central document type: one recorded institution visit.
// The wire representation in the document store is flexible; this type is
// the strict internal model, with the conversion boundary living in the
// persistence layer.
type Visit struct {
	ID              string    `json:"id"`
	Date            time.Time `json:"date"`
	InstitutionID   string    `json:"institution_id"`
	InstitutionName string    `json:"institution_name"`
	CreatorID       string    `json:"creator_id"`
	CreatorRole     string    `json:"creator_role"`

	// Rich-text-as-markup narrative fields.
	Agenda  string `json:"agenda"`
	Debrief string `json:"debrief"`

	Notes []Note `json:"notes"`

	// Order is the numeric key used to sort visits within a day.
	// Zero means "never manually ordered"; display falls back to CreatedAt.
	Order int `json:"order"`

	Status    Status    `json:"status"`
	PersonMet PersonMet `json:"person_met"`
	Quality   Quality   `json:"quality"`
	Hours     Hours     `json:"hours"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a visit for the given institution and date. The creator's
// role tag comes from the institution-assignment lookup done by the caller.
func New(date time.Time, institutionID, institutionName, creatorID, creatorRole string) (*Visit, error) {
	if institutionID == "" {
		return nil, ErrMissingInstitution
	}
	if date.IsZero() {
		return nil, ErrMissingDate
	}
	now := time.Now()
	return &Visit{
		ID:              uuid.New().String(),
		Date:            date,
		InstitutionID:   institutionID,
		InstitutionName: institutionName,
		CreatorID:       creatorID,
		CreatorRole:     creatorRole,
		Status:          StatusScheduled,
		PersonMet:       PersonMetUnknown,
		Quality:         QualityUnknown,
		Hours:           HoursUnknown,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// DayKey returns the calendar-day key the visit belongs to, used to group
// visits for same-day ordering.
func (v *Visit) DayKey() string {
	return DayKey(v.Date)
}

// DayKey formats an instant as a per-day grouping key.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Clone returns a deep copy of the visit. The history trigger needs an
// unshared "before" record to diff against after an update is applied.
func (v *Visit) Clone() *Visit {
	cp := *v
	cp.Notes = make([]Note, len(v.Notes))
	copy(cp.Notes, v.Notes)
	return &cp
}

// RewriteNotes replaces the full note list. Note mutation is always a
// rewrite of the parent's list, never an in-place edit.
func (v *Visit) RewriteNotes(notes []Note) {
	v.Notes = notes
	v.UpdatedAt = time.Now()
}

// Touch bumps the update timestamp after a field change.
func (v *Visit) Touch() {
	v.UpdatedAt = time.Now()
}
