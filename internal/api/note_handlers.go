package api

import (
	"net/http"

	"github.com/quiverapp/quiver-server/internal/service"
)

// handleListNotes returns all notes on a spec, newest first.
func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	specID, err := uuidParam(r, "specID", "ski spec ID")
	if err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	notes, err := s.noteService.ListForSpec(ctx, getUserID(ctx), specID)
	if err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"notes": notes,
	}, s.logger)
}

// handleCreateNote adds a note to a spec.
func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	specID, err := uuidParam(r, "specID", "ski spec ID")
	if err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	var req service.CreateNoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	note, err := s.noteService.Create(ctx, getUserID(ctx), specID, req)
	if err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	respondJSON(w, http.StatusCreated, note, s.logger)
}

// handleGetNote returns a single note.
func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	specID, err := uuidParam(r, "specID", "ski spec ID")
	if err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	noteID, err := uuidParam(r, "noteID", "note ID")
	if err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	note, err := s.noteService.Get(ctx, getUserID(ctx), specID, noteID)
	if err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	respondJSON(w, http.StatusOK, note, s.logger)
}

// handleUpdateNote replaces a note's content.
func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	specID, err := uuidParam(r, "specID", "ski spec ID")
	if err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	noteID, err := uuidParam(r, "noteID", "note ID")
	if err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	var req service.UpdateNoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	note, err := s.noteService.Update(ctx, getUserID(ctx), specID, noteID, req)
	if err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	respondJSON(w, http.StatusOK, note, s.logger)
}

// handleDeleteNote deletes a note.
func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	specID, err := uuidParam(r, "specID", "ski spec ID")
	if err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	noteID, err := uuidParam(r, "noteID", "note ID")
	if err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	if err := s.noteService.Delete(ctx, getUserID(ctx), specID, noteID); err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Note deleted successfully",
	}, s.logger)
}
