package visit

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Note is a sub-record owned exclusively by its parent Visit. Notes are
// added, edited and removed by rewriting the parent's note list; identity
// is the ID field, never the position in the list.
type Note struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNote creates a note with a generated ID.
func NewNote(text string) Note {
	return Note{
		ID:        uuid.New().String(),
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// IsEmpty reports whether the note carries no content.
func (n Note) IsEmpty() bool {
	return strings.TrimSpace(n.Text) == ""
}

// NoteByID finds a note in a list by its ID.
func NoteByID(notes []Note, id string) (Note, bool) {
	for _, n := range notes {
		if n.ID == id {
			return n, true
		}
	}
	return Note{}, false
}
