// Package notes implements per-user note CRUD on top of the store layer.
// Every operation requires the caller's verified user ID; a note that exists
// but belongs to someone else is reported as not found so existence never
// leaks across users.
package notes

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/marginalia-app/marginalia/internal/errs"
	"github.com/marginalia-app/marginalia/internal/store"
)

// Service handles note CRUD operations scoped by owner.
type Service struct {
	db *store.DB

	// now is swappable in tests to control timestamps.
	now func() time.Time
}

// NewService creates a notes service backed by the shared store.
func NewService(db *store.DB) *Service {
	return &Service{
		db:  db,
		now: time.Now,
	}
}

// List returns all of the caller's notes, most recently updated first.
// An empty result is a valid, successful response.
func (s *Service) List(ctx context.Context, userID string) ([]Note, error) {
	if userID == "" {
		return nil, errs.New(errs.InvalidArgument, "user id is required")
	}

	recs, err := s.db.ListNotes(ctx, userID)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, "failed to list notes", err)
	}

	result := make([]Note, 0, len(recs))
	for _, rec := range recs {
		result = append(result, fromRecord(rec))
	}
	return result, nil
}

// Get returns the note matching both id and the caller's user ID.
func (s *Service) Get(ctx context.Context, userID, id string) (*Note, error) {
	if userID == "" {
		return nil, errs.New(errs.InvalidArgument, "user id is required")
	}
	if id == "" {
		return nil, errs.New(errs.InvalidArgument, "note id is required")
	}

	rec, err := s.db.GetNote(ctx, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.New(errs.NotFound, "note not found")
	}
	if err != nil {
		return nil, errs.Wrap(errs.Internal, "failed to read note", err)
	}

	note := fromRecord(rec)
	return &note, nil
}

// Create persists a new note owned by the caller. Missing title defaults to
// DefaultTitle; missing content defaults to the empty string.
func (s *Service) Create(ctx context.Context, userID string, params CreateNoteParams) (*Note, error) {
	if userID == "" {
		return nil, errs.New(errs.InvalidArgument, "user id is required")
	}
	if err := params.Validate(); err != nil {
		return nil, errs.Wrap(errs.InvalidArgument, err.Error(), err)
	}

	title := params.Title
	if title == "" {
		title = DefaultTitle
	}

	now := s.now().UTC().Truncate(time.Second)
	rec := store.NoteRecord{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Content:   params.Content,
		CreatedAt: now.Unix(),
		UpdatedAt: now.Unix(),
	}

	if err := s.db.InsertNote(ctx, rec); err != nil {
		return nil, errs.Wrap(errs.Internal, "failed to create note", err)
	}

	note := fromRecord(rec)
	return &note, nil
}

// Update replaces the note's title and content and refreshes updatedAt.
// No match on id+owner yields not found and performs no mutation.
func (s *Service) Update(ctx context.Context, userID, id string, params UpdateNoteParams) (*Note, error) {
	if userID == "" {
		return nil, errs.New(errs.InvalidArgument, "user id is required")
	}
	if id == "" {
		return nil, errs.New(errs.InvalidArgument, "note id is required")
	}
	if err := params.Validate(); err != nil {
		return nil, errs.Wrap(errs.InvalidArgument, err.Error(), err)
	}

	now := s.now().UTC().Truncate(time.Second)
	ok, err := s.db.UpdateNote(ctx, id, userID, params.Title, params.Content, now.Unix())
	if err != nil {
		return nil, errs.Wrap(errs.Internal, "failed to update note", err)
	}
	if !ok {
		return nil, errs.New(errs.NotFound, "note not found")
	}

	rec, err := s.db.GetNote(ctx, id, userID)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, "failed to read note after update", err)
	}

	note := fromRecord(rec)
	return &note, nil
}

// Delete removes the note matching id and the caller's user ID.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return errs.New(errs.InvalidArgument, "user id is required")
	}
	if id == "" {
		return errs.New(errs.InvalidArgument, "note id is required")
	}

	ok, err := s.db.DeleteNote(ctx, id, userID)
	if err != nil {
		return errs.Wrap(errs.Internal, "failed to delete note", err)
	}
	if !ok {
		return errs.New(errs.NotFound, "note not found")
	}
	return nil
}

func fromRecord(rec store.NoteRecord) Note {
	return Note{
		ID:        rec.ID,
		UserID:    rec.UserID,
		Title:     rec.Title,
		Content:   rec.Content,
		CreatedAt: time.Unix(rec.CreatedAt, 0).UTC(),
		UpdatedAt: time.Unix(rec.UpdatedAt, 0).UTC(),
	}
}
