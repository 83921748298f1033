package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/quiverapp/quiver-server/internal/domain"
	"github.com/quiverapp/quiver-server/internal/store"
)

// specColumns is the ordered list of columns selected in ski spec queries.
// Must match the scan order in scanSpec. The correlated subquery keeps
// notes_count fresh on every read without a second round trip.
const specColumns = `s.id, s.owner_id, s.name, s.description,
	s.length_cm, s.tip_mm, s.waist_mm, s.tail_mm, s.radius_m, s.weight_g,
	s.surface_area, s.relative_weight, s.algorithm_version,
	s.created_at, s.updated_at,
	(SELECT COUNT(*) FROM notes n WHERE n.ski_spec_id = s.id) AS notes_count`

// specSortColumns maps API sort keys to SQL order expressions.
var specSortColumns = map[string]string{
	"created_at":      "s.created_at",
	"name":            "LOWER(s.name)",
	"length":          "s.length_cm",
	"surface_area":    "s.surface_area",
	"relative_weight": "s.relative_weight",
}

// scanSpec scans a sql.Row (or sql.Rows via its Scan method) into a domain.SkiSpec.
func scanSpec(scanner interface{ Scan(dest ...any) error }) (*domain.SkiSpec, error) {
	var sp domain.SkiSpec

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&sp.ID,
		&sp.OwnerID,
		&sp.Name,
		&sp.Description,
		&sp.LengthCM,
		&sp.TipMM,
		&sp.WaistMM,
		&sp.TailMM,
		&sp.RadiusM,
		&sp.WeightG,
		&sp.SurfaceArea,
		&sp.RelativeWeight,
		&sp.AlgorithmVersion,
		&createdAt,
		&updatedAt,
		&sp.NotesCount,
	)
	if err != nil {
		return nil, err
	}

	sp.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	sp.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &sp, nil
}

// specFilter builds the WHERE clause shared by the list, count, and export
// queries. Placeholders are numbered from $1 in order of appearance.
func specFilter(q store.SpecQuery) (string, []any) {
	where := `WHERE s.owner_id = $1`
	args := []any{q.OwnerID}

	if q.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(q.Search)) + "%"
		where += ` AND (LOWER(s.name) LIKE $2 ESCAPE '\' OR LOWER(s.description) LIKE $3 ESCAPE '\')`
		args = append(args, pattern, pattern)
	}

	return where, args
}

// specOrderClause returns a safe ORDER BY expression. Unknown or empty
// sort keys fall back to newest first. Ties break by id so pages are
// stable across requests.
func specOrderClause(sortBy, sortOrder string) string {
	col, ok := specSortColumns[sortBy]
	if !ok {
		col = "s.created_at"
		if sortOrder == "" {
			sortOrder = "desc"
		}
	}

	dir := "ASC"
	if strings.EqualFold(sortOrder, "desc") {
		dir = "DESC"
	}

	return col + " " + dir + ", s.id ASC"
}

// CreateSpec inserts a new ski spec.
// Returns store.ErrAlreadyExists if the owner already has a spec with the
// same name.
func (s *Store) CreateSpec(ctx context.Context, spec *domain.SkiSpec) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ski_specs (
			id, owner_id, name, description,
			length_cm, tip_mm, waist_mm, tail_mm, radius_m, weight_g,
			surface_area, relative_weight, algorithm_version,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		spec.ID,
		spec.OwnerID,
		spec.Name,
		spec.Description,
		spec.LengthCM,
		spec.TipMM,
		spec.WaistMM,
		spec.TailMM,
		spec.RadiusM,
		spec.WeightG,
		spec.SurfaceArea,
		spec.RelativeWeight,
		spec.AlgorithmVersion,
		formatTime(spec.CreatedAt),
		formatTime(spec.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetSpec retrieves a spec by ID, scoped to its owner. A spec belonging
// to another owner is reported as missing.
// Returns store.ErrNotFound if no matching spec exists.
func (s *Store) GetSpec(ctx context.Context, ownerID, id string) (*domain.SkiSpec, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+specColumns+` FROM ski_specs s WHERE s.id = $1 AND s.owner_id = $2`,
		id, ownerID)

	sp, err := scanSpec(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sp, nil
}

// GetSpecByName retrieves a spec by exact name within an owner's quiver.
// Returns store.ErrNotFound if no matching spec exists.
func (s *Store) GetSpecByName(ctx context.Context, ownerID, name string) (*domain.SkiSpec, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+specColumns+` FROM ski_specs s WHERE s.owner_id = $1 AND s.name = $2`,
		ownerID, name)

	sp, err := scanSpec(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sp, nil
}

// GetSpecsByIDs retrieves the owner's specs matching the given IDs. Specs
// that are missing or owned by someone else are silently absent from the
// result; callers decide whether a partial result is an error.
func (s *Store) GetSpecsByIDs(ctx context.Context, ownerID string, ids []string) ([]*domain.SkiSpec, error) {
	if len(ids) == 0 {
		return []*domain.SkiSpec{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)+1)
	args = append(args, ownerID)
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}

	query := `SELECT ` + specColumns + ` FROM ski_specs s
		WHERE s.owner_id = $1 AND s.id IN (` + strings.Join(placeholders, ", ") + `)`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	specs := []*domain.SkiSpec{}
	for rows.Next() {
		sp, err := scanSpec(rows)
		if err != nil {
			return nil, err
		}
		specs = append(specs, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return specs, nil
}

// ListSpecs returns one page of the owner's specs plus the total matching
// count for page math.
func (s *Store) ListSpecs(ctx context.Context, q store.SpecQuery) (*store.PaginatedResult[*domain.SkiSpec], error) {
	q.Validate()

	where, args := specFilter(q)

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ski_specs s `+where, args...).Scan(&total)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + specColumns + ` FROM ski_specs s ` + where +
		` ORDER BY ` + specOrderClause(q.SortBy, q.SortOrder) +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	specs := []*domain.SkiSpec{}
	for rows.Next() {
		sp, err := scanSpec(rows)
		if err != nil {
			return nil, err
		}
		specs = append(specs, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return store.NewPaginatedResult(specs, q.PaginationParams, total), nil
}

// ListAllSpecs returns every spec matching the query's filter and sort,
// without pagination. Used by CSV export.
func (s *Store) ListAllSpecs(ctx context.Context, q store.SpecQuery) ([]*domain.SkiSpec, error) {
	where, args := specFilter(q)

	query := `SELECT ` + specColumns + ` FROM ski_specs s ` + where +
		` ORDER BY ` + specOrderClause(q.SortBy, q.SortOrder)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	specs := []*domain.SkiSpec{}
	for rows.Next() {
		sp, err := scanSpec(rows)
		if err != nil {
			return nil, err
		}
		specs = append(specs, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return specs, nil
}

// UpdateSpec performs a full row update, scoped to the spec's owner.
// Returns store.ErrNotFound if the spec does not exist for that owner and
// store.ErrAlreadyExists if the new name collides with another spec.
func (s *Store) UpdateSpec(ctx context.Context, spec *domain.SkiSpec) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE ski_specs SET
			name = $1,
			description = $2,
			length_cm = $3,
			tip_mm = $4,
			waist_mm = $5,
			tail_mm = $6,
			radius_m = $7,
			weight_g = $8,
			surface_area = $9,
			relative_weight = $10,
			algorithm_version = $11,
			updated_at = $12
		WHERE id = $13 AND owner_id = $14`,
		spec.Name,
		spec.Description,
		spec.LengthCM,
		spec.TipMM,
		spec.WaistMM,
		spec.TailMM,
		spec.RadiusM,
		spec.WeightG,
		spec.SurfaceArea,
		spec.RelativeWeight,
		spec.AlgorithmVersion,
		formatTime(spec.UpdatedAt),
		spec.ID,
		spec.OwnerID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
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

// DeleteSpec removes a spec and its notes in one transaction. The notes
// delete is explicit so removal never depends on per-connection foreign
// key pragma state. If the spec turns out to be missing or unowned the
// transaction rolls back, restoring any notes deleted in step one.
// Returns store.ErrNotFound if no matching spec exists.
func (s *Store) DeleteSpec(ctx context.Context, ownerID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM notes WHERE ski_spec_id = $1`, id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM ski_specs WHERE id = $1 AND owner_id = $2`, id, ownerID)
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

	return tx.Commit()
}
