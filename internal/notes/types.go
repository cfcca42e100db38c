package notes

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	// DefaultTitle is applied when a note is created without a title.
	DefaultTitle = "Untitled Note"

	// MaxTitleLen caps note title length.
	MaxTitleLen = 512

	// MaxContentLen caps note content length.
	MaxContentLen = 1 << 20
)

// Note is a user-owned note. UserID always comes from the verified
// identity, never from request input.
type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateNoteParams contains parameters for creating a note.
// Both fields are optional; defaults are applied server-side.
type CreateNoteParams struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Validate enforces field size caps.
func (p CreateNoteParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Length(0, MaxTitleLen)),
		validation.Field(&p.Content, validation.Length(0, MaxContentLen)),
	)
}

// UpdateNoteParams contains parameters for updating a note.
// The body fully replaces title and content: a field omitted from the
// request overwrites the stored value with the empty string. This mirrors
// the deployed behavior and is the documented contract; partial merge is
// deliberately not offered.
type UpdateNoteParams struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Validate enforces field size caps.
func (p UpdateNoteParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Length(0, MaxTitleLen)),
		validation.Field(&p.Content, validation.Length(0, MaxContentLen)),
	)
}
