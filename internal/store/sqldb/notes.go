package sqldb

import (
	"context"
	"database/sql"

	"github.com/quiverapp/quiver-server/internal/domain"
	"github.com/quiverapp/quiver-server/internal/store"
)

// noteColumns is the ordered list of columns selected in note queries.
// Must match the scan order in scanNote.
const noteColumns = `id, ski_spec_id, content, created_at, updated_at`

// scanNote scans a sql.Row (or sql.Rows via its Scan method) into a domain.Note.
func scanNote(scanner interface{ Scan(dest ...any) error }) (*domain.Note, error) {
	var n domain.Note

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&n.ID,
		&n.SkiSpecID,
		&n.Content,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	n.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &n, nil
}

// CreateNote inserts a new note under its parent spec.
func (s *Store) CreateNote(ctx context.Context, note *domain.Note) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (id, ski_spec_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		note.ID,
		note.SkiSpecID,
		note.Content,
		formatTime(note.CreatedAt),
		formatTime(note.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetNote retrieves a note by ID, scoped to its parent spec. A note under
// a different spec is reported as missing.
// Returns store.ErrNotFound if no matching note exists.
func (s *Store) GetNote(ctx context.Context, specID, id string) (*domain.Note, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = $1 AND ski_spec_id = $2`,
		id, specID)

	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

// ListNotes returns all notes for a spec, newest first.
func (s *Store) ListNotes(ctx context.Context, specID string) ([]*domain.Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+noteColumns+` FROM notes
		WHERE ski_spec_id = $1
		ORDER BY created_at DESC, id ASC`,
		specID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []*domain.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notes, nil
}

// UpdateNote replaces a note's content, scoped to its parent spec.
// Returns store.ErrNotFound if no matching note exists.
func (s *Store) UpdateNote(ctx context.Context, note *domain.Note) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notes SET content = $1, updated_at = $2
		WHERE id = $3 AND ski_spec_id = $4`,
		note.Content,
		formatTime(note.UpdatedAt),
		note.ID,
		note.SkiSpecID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteNote removes a note, scoped to its parent spec.
// Returns store.ErrNotFound if no matching note exists.
func (s *Store) DeleteNote(ctx context.Context, specID, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM notes WHERE id = $1 AND ski_spec_id = $2`,
		id, specID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
