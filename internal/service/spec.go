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

// SpecService manages ski spec records. Every operation takes the owner
// id as an explicit argument and passes it into the store query, so a
// record belonging to someone else is indistinguishable from a record
// that does not exist.
type SpecService struct {
	store  store.Store
	logger *logger.Logger
}

// NewSpecService creates a new ski spec service.
func NewSpecService(st store.Store, log *logger.Logger) *SpecService {
	return &SpecService{
		store:  st,
		logger: log,
	}
}

// CreateSpecRequest contains the client-writable fields of a ski spec.
// Derived metrics are computed server-side and never accepted as input.
type CreateSpecRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description string  `json:"description" validate:"max=500"`
	LengthCM    float64 `json:"length_cm" validate:"required,gt=0"`
	TipMM       float64 `json:"tip_mm" validate:"required,gt=0"`
	WaistMM     float64 `json:"waist_mm" validate:"required,gt=0"`
	TailMM      float64 `json:"tail_mm" validate:"required,gt=0"`
	RadiusM     float64 `json:"radius_m" validate:"required,gte=1,lte=50"`
	WeightG     float64 `json:"weight_g" validate:"required,gt=0"`
}

// UpdateSpecRequest is a full replacement of a spec's writable fields.
type UpdateSpecRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description string  `json:"description" validate:"max=500"`
	LengthCM    float64 `json:"length_cm" validate:"required,gt=0"`
	TipMM       float64 `json:"tip_mm" validate:"required,gt=0"`
	WaistMM     float64 `json:"waist_mm" validate:"required,gt=0"`
	TailMM      float64 `json:"tail_mm" validate:"required,gt=0"`
	RadiusM     float64 `json:"radius_m" validate:"required,gte=1,lte=50"`
	WeightG     float64 `json:"weight_g" validate:"required,gt=0"`
}

// ListSpecsRequest is the query contract for listing and exporting.
// Zero values mean "use the default": page 1, limit 20, newest first.
type ListSpecsRequest struct {
	Search    string `json:"search"`
	SortBy    string `json:"sort_by" validate:"omitempty,oneof=created_at name length surface_area relative_weight"`
	SortOrder string `json:"sort_order" validate:"omitempty,oneof=asc desc"`
	Page      int    `json:"page" validate:"omitempty,gte=1"`
	Limit     int    `json:"limit" validate:"omitempty,oneof=10 20 50 100"`
}

// CompareSpecsRequest names the specs to compare side by side.
type CompareSpecsRequest struct {
	IDs []string `json:"ids" validate:"required,min=2,max=4,unique,dive,uuid4"`
}

// Create validates and stores a new ski spec with its derived metrics.
// A sibling spec with the same name fails with CONFLICT.
func (s *SpecService) Create(ctx context.Context, ownerID string, req CreateSpecRequest) (*domain.SkiSpec, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)

	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	// Pre-check for a friendlier error than the raw constraint violation.
	// Two concurrent creates can still both pass; the unique constraint
	// is the backstop and surfaces as the same CONFLICT.
	if _, err := s.store.GetSpecByName(ctx, ownerID, req.Name); err == nil {
		return nil, domainerrors.Conflict("A ski spec with this name already exists")
	} else if !domainerrors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.Database(err)
	}

	now := time.Now()
	spec := &domain.SkiSpec{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		LengthCM:    req.LengthCM,
		TipMM:       req.TipMM,
		WaistMM:     req.WaistMM,
		TailMM:      req.TailMM,
		RadiusM:     req.RadiusM,
		WeightG:     req.WeightG,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := spec.RecalculateDerived(); err != nil {
		return nil, err
	}

	if err := s.store.CreateSpec(ctx, spec); err != nil {
		if domainerrors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("A ski spec with this name already exists")
		}
		return nil, domainerrors.Database(err)
	}

	if s.logger != nil {
		s.logger.Info("Ski spec created", "spec_id", spec.ID, "owner_id", ownerID)
	}

	return spec, nil
}

// Get retrieves one spec by id within the owner's records.
func (s *SpecService) Get(ctx context.Context, ownerID, specID string) (*domain.SkiSpec, error) {
	spec, err := s.store.GetSpec(ctx, ownerID, specID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("Ski spec not found")
		}
		return nil, domainerrors.Database(err)
	}
	return spec, nil
}

// List returns one page of the owner's specs with the total count.
func (s *SpecService) List(ctx context.Context, ownerID string, req ListSpecsRequest) (*store.PaginatedResult[*domain.SkiSpec], error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	result, err := s.store.ListSpecs(ctx, s.buildQuery(ownerID, req))
	if err != nil {
		return nil, domainerrors.Database(err)
	}
	return result, nil
}

// ListAll returns every matching spec without pagination, in the
// requested order. Used by CSV export.
func (s *SpecService) ListAll(ctx context.Context, ownerID string, req ListSpecsRequest) ([]*domain.SkiSpec, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	specs, err := s.store.ListAllSpecs(ctx, s.buildQuery(ownerID, req))
	if err != nil {
		return nil, domainerrors.Database(err)
	}
	return specs, nil
}

func (s *SpecService) buildQuery(ownerID string, req ListSpecsRequest) store.SpecQuery {
	q := store.SpecQuery{
		OwnerID:   ownerID,
		Search:    strings.TrimSpace(req.Search),
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	q.Page = req.Page
	q.Limit = req.Limit
	return q
}

// Update replaces every writable field of a spec and recomputes the
// derived metrics. Renaming onto a sibling's name fails with CONFLICT;
// keeping the current name is fine.
func (s *SpecService) Update(ctx context.Context, ownerID, specID string, req UpdateSpecRequest) (*domain.SkiSpec, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)

	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	spec, err := s.store.GetSpec(ctx, ownerID, specID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("Ski spec not found")
		}
		return nil, domainerrors.Database(err)
	}

	if existing, err := s.store.GetSpecByName(ctx, ownerID, req.Name); err == nil {
		if existing.ID != specID {
			return nil, domainerrors.Conflict("A ski spec with this name already exists")
		}
	} else if !domainerrors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.Database(err)
	}

	spec.Name = req.Name
	spec.Description = req.Description
	spec.LengthCM = req.LengthCM
	spec.TipMM = req.TipMM
	spec.WaistMM = req.WaistMM
	spec.TailMM = req.TailMM
	spec.RadiusM = req.RadiusM
	spec.WeightG = req.WeightG
	spec.UpdatedAt = time.Now()
	if err := spec.RecalculateDerived(); err != nil {
		return nil, err
	}

	if err := s.store.UpdateSpec(ctx, spec); err != nil {
		switch {
		case domainerrors.Is(err, store.ErrNotFound):
			return nil, domainerrors.NotFound("Ski spec not found")
		case domainerrors.Is(err, store.ErrAlreadyExists):
			return nil, domainerrors.Conflict("A ski spec with this name already exists")
		default:
			return nil, domainerrors.Database(err)
		}
	}

	if s.logger != nil {
		s.logger.Info("Ski spec updated", "spec_id", specID, "owner_id", ownerID)
	}

	return spec, nil
}

// Delete removes a spec and its notes in one transaction.
func (s *SpecService) Delete(ctx context.Context, ownerID, specID string) error {
	if err := s.store.DeleteSpec(ctx, ownerID, specID); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("Ski spec not found")
		}
		return domainerrors.Database(err)
	}

	if s.logger != nil {
		s.logger.Info("Ski spec deleted", "spec_id", specID, "owner_id", ownerID)
	}

	return nil
}

// Compare fetches 2 to 4 specs for side-by-side comparison, returned in
// request order. All-or-nothing: if any id is missing from the owner's
// records the whole operation fails with NOT_FOUND, with no hint of
// which ids existed.
func (s *SpecService) Compare(ctx context.Context, ownerID string, req CompareSpecsRequest) ([]*domain.SkiSpec, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	specs, err := s.store.GetSpecsByIDs(ctx, ownerID, req.IDs)
	if err != nil {
		return nil, domainerrors.Database(err)
	}
	if len(specs) != len(req.IDs) {
		return nil, domainerrors.NotFound("One or more ski specs were not found")
	}

	byID := make(map[string]*domain.SkiSpec, len(specs))
	for _, spec := range specs {
		byID[spec.ID] = spec
	}

	ordered := make([]*domain.SkiSpec, 0, len(req.IDs))
	for _, specID := range req.IDs {
		spec, ok := byID[specID]
		if !ok {
			return nil, domainerrors.NotFound("One or more ski specs were not found")
		}
		ordered = append(ordered, spec)
	}

	return ordered, nil
}
