package sqldb

import (
	"context"
	"database/sql"
	"time"

	"github.com/quiverapp/quiver-server/internal/domain"
	"github.com/quiverapp/quiver-server/internal/store"
)

// resetColumns is the ordered list of columns selected in password reset
// queries. Must match the scan order in scanPasswordReset.
const resetColumns = `id, user_id, token_hash, created_at, expires_at, used_at`

// scanPasswordReset scans a sql.Row (or sql.Rows via its Scan method)
// into a domain.PasswordReset.
func scanPasswordReset(scanner interface{ Scan(dest ...any) error }) (*domain.PasswordReset, error) {
	var pr domain.PasswordReset

	var (
		createdAt string
		expiresAt string
		usedAt    sql.NullString
	)

	err := scanner.Scan(
		&pr.ID,
		&pr.UserID,
		&pr.TokenHash,
		&createdAt,
		&expiresAt,
		&usedAt,
	)
	if err != nil {
		return nil, err
	}

	pr.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	pr.ExpiresAt, err = parseTime(expiresAt)
	if err != nil {
		return nil, err
	}
	pr.UsedAt, err = parseNullableTime(usedAt)
	if err != nil {
		return nil, err
	}

	return &pr, nil
}

// CreatePasswordReset inserts a new password reset token row.
func (s *Store) CreatePasswordReset(ctx context.Context, reset *domain.PasswordReset) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO password_resets (id, user_id, token_hash, created_at, expires_at, used_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		reset.ID,
		reset.UserID,
		reset.TokenHash,
		formatTime(reset.CreatedAt),
		formatTime(reset.ExpiresAt),
		nullTimeString(reset.UsedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetPasswordReset retrieves a reset row by hashed token.
// Returns store.ErrNotFound if no such token exists.
func (s *Store) GetPasswordReset(ctx context.Context, tokenHash string) (*domain.PasswordReset, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+resetColumns+` FROM password_resets WHERE token_hash = $1`, tokenHash)

	pr, err := scanPasswordReset(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return pr, nil
}

// MarkPasswordResetUsed stamps a reset token as consumed. Only an unused
// token can be marked, which makes consumption single-winner under
// concurrent use.
// Returns store.ErrNotFound if the row is missing or already used.
func (s *Store) MarkPasswordResetUsed(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE password_resets SET used_at = $1
		WHERE id = $2 AND used_at IS NULL`,
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
		return store.ErrNotFound
	}
	return nil
}

// DeleteExpiredPasswordResets removes reset tokens whose expiry has passed.
// Returns the number of rows deleted.
func (s *Store) DeleteExpiredPasswordResets(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM password_resets WHERE expires_at < $1`,
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
