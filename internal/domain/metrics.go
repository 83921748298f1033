package domain

import (
	"math"

	"github.com/quiverapp/quiver-server/internal/errors"
)

// AlgorithmVersion identifies the formula revision that produced a
// record's derived fields. Stored with every record so a future formula
// change can migrate old rows instead of reinterpreting them.
const AlgorithmVersion = "1.0.0"

// CurrentAlgorithmVersion returns the formula revision new records are
// computed with.
func CurrentAlgorithmVersion() string {
	return AlgorithmVersion
}

// CalculateSurfaceArea computes a ski's running surface in cm² from its
// length and the average of its three width measurements:
//
//	avgWidth = (tip + waist + tail) / 3   [mm]
//	area     = length × avgWidth / 10     [cm²]
//
// rounded half-up to two decimals. radiusM is accepted but unused in the
// 1.0.0 formula; it is reserved for future algorithm versions. Inputs are
// pre-validated positive numbers, so the function never fails.
func CalculateSurfaceArea(lengthCM, tipMM, waistMM, tailMM, radiusM float64) float64 {
	avgWidthMM := (tipMM + waistMM + tailMM) / 3
	return round2(lengthCM * avgWidthMM / 10)
}

// CalculateRelativeWeight computes weight per surface area in g/cm²,
// rounded half-up to two decimals. Although surface area is always
// positive for validated dimensions, this function is reachable
// independently of CalculateSurfaceArea and guards the division
// explicitly: a non-positive surface area fails with an
// INVALID_SURFACE_AREA error carrying both operands.
func CalculateRelativeWeight(weightG, surfaceArea float64) (float64, error) {
	if surfaceArea <= 0 {
		return 0, errors.InvalidSurfaceArea(weightG, surfaceArea)
	}
	return round2(weightG / surfaceArea), nil
}

// round2 rounds half-up to two decimal places. math.Round rounds half
// away from zero, which is half-up for the positive values used here.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
