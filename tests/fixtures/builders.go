// Package fixtures provides builders for test data.
package fixtures

import (
	"time"

	"ccivisits-backend/domain/directory"
	"ccivisits-backend/domain/visit"
	"github.com/google/uuid"
)

// VisitBuilder helps create test visits with default values
type VisitBuilder struct {
	id            string
	date          time.Time
	institutionID string
	institution   string
	creatorID     string
	agenda        string
	debrief       string
	notes         []visit.Note
	order         int
	status        visit.Status
	createdAt     time.Time
}

func NewVisitBuilder() *VisitBuilder {
	return &VisitBuilder{
		id:            uuid.New().String(),
		date:          time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		institutionID: "test-cci-123",
		institution:   "Test Children's Home",
		creatorID:     "test-user-123",
		status:        visit.StatusScheduled,
		createdAt:     time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (b *VisitBuilder) WithID(id string) *VisitBuilder {
	b.id = id
	return b
}

func (b *VisitBuilder) WithDate(date time.Time) *VisitBuilder {
	b.date = date
	return b
}

func (b *VisitBuilder) WithInstitution(id, name string) *VisitBuilder {
	b.institutionID = id
	b.institution = name
	return b
}

func (b *VisitBuilder) WithCreator(id string) *VisitBuilder {
	b.creatorID = id
	return b
}

func (b *VisitBuilder) WithAgenda(agenda string) *VisitBuilder {
	b.agenda = agenda
	return b
}

func (b *VisitBuilder) WithDebrief(debrief string) *VisitBuilder {
	b.debrief = debrief
	return b
}

func (b *VisitBuilder) WithNote(id, text string) *VisitBuilder {
	b.notes = append(b.notes, visit.Note{ID: id, Text: text, CreatedAt: b.createdAt})
	return b
}

func (b *VisitBuilder) WithOrder(order int) *VisitBuilder {
	b.order = order
	return b
}

func (b *VisitBuilder) WithStatus(status visit.Status) *VisitBuilder {
	b.status = status
	return b
}

func (b *VisitBuilder) WithCreatedAt(t time.Time) *VisitBuilder {
	b.createdAt = t
	return b
}

func (b *VisitBuilder) Build() *visit.Visit {
	return &visit.Visit{
		ID:              b.id,
		Date:            b.date,
		InstitutionID:   b.institutionID,
		InstitutionName: b.institution,
		CreatorID:       b.creatorID,
		Agenda:          b.agenda,
		Debrief:         b.debrief,
		Notes:           append([]visit.Note(nil), b.notes...),
		Order:           b.order,
		Status:          b.status,
		PersonMet:       visit.PersonMetUnknown,
		Quality:         visit.QualityUnknown,
		Hours:           visit.HoursUnknown,
		CreatedAt:       b.createdAt,
		UpdatedAt:       b.createdAt,
	}
}

// NewTestUser creates a directory user with sensible defaults.
func NewTestUser(id, name string, role directory.Role) *directory.User {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	return &directory.User{
		ID:          id,
		Email:       id + "@example.org",
		DisplayName: name,
		Role:        role,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
