package domain

import "time"

// SkiSpec is a user-owned record of one ski's physical dimensions plus
// the metrics derived from them. The derived fields are computed
// server-side on every create and update and are never client-writable.
type SkiSpec struct {
	ID      string `json:"id"`
	OwnerID string `json:"-"` // never serialized, never client-mutable

	Name        string `json:"name"`
	Description string `json:"description"`

	LengthCM float64 `json:"length_cm"`
	TipMM    float64 `json:"tip_mm"`
	WaistMM  float64 `json:"waist_mm"`
	TailMM   float64 `json:"tail_mm"`
	RadiusM  float64 `json:"radius_m"`
	WeightG  float64 `json:"weight_g"`

	SurfaceArea      float64 `json:"surface_area"`      // cm²
	RelativeWeight   float64 `json:"relative_weight"`   // g/cm²
	AlgorithmVersion string  `json:"algorithm_version"` // formula revision that produced the derived fields

	// NotesCount is computed from the notes table at read time, not stored.
	NotesCount int `json:"notes_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecalculateDerived recomputes the derived fields from the current
// dimensions and stamps the algorithm version that produced them.
func (s *SkiSpec) RecalculateDerived() error {
	s.SurfaceArea = CalculateSurfaceArea(s.LengthCM, s.TipMM, s.WaistMM, s.TailMM, s.RadiusM)

	relativeWeight, err := CalculateRelativeWeight(s.WeightG, s.SurfaceArea)
	if err != nil {
		return err
	}
	s.RelativeWeight = relativeWeight
	s.AlgorithmVersion = CurrentAlgorithmVersion()
	return nil
}

// Note is a free-text annotation attached to exactly one SkiSpec. Notes
// carry no owner of their own: ownership is transitive through the parent
// spec, which callers must verify before touching notes.
type Note struct {
	ID        string    `json:"id"`
	SkiSpecID string    `json:"ski_spec_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
