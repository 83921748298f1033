package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quiverapp/quiver-server/internal/domain"
	domainerrors "github.com/quiverapp/quiver-server/internal/errors"
	"github.com/quiverapp/quiver-server/internal/logger"
	"github.com/quiverapp/quiver-server/internal/store"
)

// NoteService manages free-text notes attached to ski specs. Notes have
// no owner of their own, so every operation first resolves the parent
// spec under the caller's owner id; a note reached through someone
// else's spec, or through the wrong spec, is NOT_FOUND.
type NoteService struct {
	store  store.Store
	logger *logger.Logger
}

// NewNoteService creates a new note service.
func NewNoteService(st store.Store, log *logger.Logger) *NoteService {
	return &NoteService{
		store:  st,
		logger: log,
	}
}

// CreateNoteRequest contains a new note's content.
type CreateNoteRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// UpdateNoteRequest replaces a note's content.
type UpdateNoteRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// verifySpecOwnership confirms the spec exists within the owner's
// records before any note work happens.
func (s *NoteService) verifySpecOwnership(ctx context.Context, ownerID, specID string) error {
	if _, err := s.store.GetSpec(ctx, ownerID, specID); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("Ski spec not found")
		}
		return domainerrors.Database(err)
	}
	return nil
}

// ListForSpec returns a spec's notes, newest first.
func (s *NoteService) ListForSpec(ctx context.Context, ownerID, specID string) ([]*domain.Note, error) {
	if err := s.verifySpecOwnership(ctx, ownerID, specID); err != nil {
		return nil, err
	}

	notes, err := s.store.ListNotes(ctx, specID)
	if err != nil {
		return nil, domainerrors.Database(err)
	}
	return notes, nil
}

// Create attaches a new note to a spec.
func (s *NoteService) Create(ctx context.Context, ownerID, specID string, req CreateNoteRequest) (*domain.Note, error) {
	req.Content = strings.TrimSpace(req.Content)

	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if err := s.verifySpecOwnership(ctx, ownerID, specID); err != nil {
		return nil, err
	}

	now := time.Now()
	note := &domain.Note{
		ID:        uuid.NewString(),
		SkiSpecID: specID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateNote(ctx, note); err != nil {
		return nil, domainerrors.Database(err)
	}

	if s.logger != nil {
		s.logger.Info("Note created", "note_id", note.ID, "spec_id", specID)
	}

	return note, nil
}

// Get retrieves one note under a spec.
func (s *NoteService) Get(ctx context.Context, ownerID, specID, noteID string) (*domain.Note, error) {
	if err := s.verifySpecOwnership(ctx, ownerID, specID); err != nil {
		return nil, err
	}

	note, err := s.store.GetNote(ctx, specID, noteID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("Note not found")
		}
		return nil, domainerrors.Database(err)
	}
	return note, nil
}

// Update replaces a note's content.
func (s *NoteService) Update(ctx context.Context, ownerID, specID, noteID string, req UpdateNoteRequest) (*domain.Note, error) {
	req.Content = strings.TrimSpace(req.Content)

	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if err := s.verifySpecOwnership(ctx, ownerID, specID); err != nil {
		return nil, err
	}

	note, err := s.store.GetNote(ctx, specID, noteID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("Note not found")
		}
		return nil, domainerrors.Database(err)
	}

	note.Content = req.Content
	note.UpdatedAt = time.Now()

	if err := s.store.UpdateNote(ctx, note); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("Note not found")
		}
		return nil, domainerrors.Database(err)
	}

	if s.logger != nil {
		s.logger.Info("Note updated", "note_id", noteID, "spec_id", specID)
	}

	return note, nil
}

// Delete removes a note.
func (s *NoteService) Delete(ctx context.Context, ownerID, specID, noteID string) error {
	if err := s.verifySpecOwnership(ctx, ownerID, specID); err != nil {
		return err
	}

	if err := s.store.DeleteNote(ctx, specID, noteID); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("Note not found")
		}
		return domainerrors.Database(err)
	}

	if s.logger != nil {
		s.logger.Info("Note deleted", "note_id", noteID, "spec_id", specID)
	}

	return nil
}
