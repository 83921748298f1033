package sqldb

import (
	"context"
	"database/sql"
	"time"

	"github.com/quiverapp/quiver-server/internal/domain"
	"github.com/quiverapp/quiver-server/internal/store"
)

// sessionColumns is the ordered list of columns selected in session queries.
// Must match the scan order in scanSession.
const sessionColumns = `id, user_id, created_at, expires_at, revoked_at`

// scanSession scans a sql.Row (or sql.Rows via its Scan method) into a domain.Session.
func scanSession(scanner interface{ Scan(dest ...any) error }) (*domain.Session, error) {
	var sess domain.Session

	var (
		createdAt string
		expiresAt string
		revokedAt sql.NullString
	)

	err := scanner.Scan(
		&sess.ID,
		&sess.UserID,
		&createdAt,
		&expiresAt,
		&revokedAt,
	)
	if err != nil {
		return nil, err
	}

	sess.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	sess.ExpiresAt, err = parseTime(expiresAt)
	if err != nil {
		return nil, err
	}
	sess.RevokedAt, err = parseNullableTime(revokedAt)
	if err != nil {
		return nil, err
	}

	return &sess, nil
}

// CreateSession inserts a new session row.
func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, created_at, expires_at, revoked_at)
		VALUES ($1, $2, $3, $4, $5)`,
		session.ID,
		session.UserID,
		formatTime(session.CreatedAt),
		formatTime(session.ExpiresAt),
		nullTimeString(session.RevokedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetSession retrieves a session by ID, revoked or not.
// Returns store.ErrNotFound if the session does not exist.
func (s *Store) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)

	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// RevokeSession marks a session revoked. Revoking an already revoked
// session is a no-op that still succeeds.
// Returns store.ErrNotFound if the session does not exist.
func (s *Store) RevokeSession(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET revoked_at = $1
		WHERE id = $2 AND revoked_at IS NULL`,
		formatTime(time.Now()),
		id,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish a missing session from an already revoked one.
		var exists int
		err := s.db.QueryRowContext(ctx,
			`SELECT 1 FROM sessions WHERE id = $1`, id).Scan(&exists)
		if err == sql.ErrNoRows {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// RevokeUserSessions revokes every active session belonging to a user,
// optionally sparing one session (pass exceptID "" to revoke all).
// Returns the number of sessions revoked.
func (s *Store) RevokeUserSessions(ctx context.Context, userID string, exceptID string) (int, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET revoked_at = $1
		WHERE user_id = $2 AND id <> $3 AND revoked_at IS NULL`,
		formatTime(time.Now()),
		userID,
		exceptID,
	)
	if err != nil {
		return 0, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// DeleteExpiredSessions removes sessions whose expiry has passed.
// Returns the number of rows deleted.
func (s *Store) DeleteExpiredSessions(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < $1`,
		formatTime(time.Now()),
	)
	if err != nil {
		return 0, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
