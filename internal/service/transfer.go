package service

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/quiverapp/quiver-server/internal/csvio"
	domainerrors "github.com/quiverapp/quiver-server/internal/errors"
	"github.com/quiverapp/quiver-server/internal/logger"
)

// exportColumns is the CSV export header, in order. Import accepts the
// same columns minus the two derived ones, which are recomputed.
var exportColumns = []string{
	"name",
	"description",
	"length_cm",
	"tip_mm",
	"waist_mm",
	"tail_mm",
	"radius_m",
	"weight_g",
	"surface_area_cm2",
	"relative_weight_g_cm2",
}

// requiredImportColumns must all be present in an uploaded file's header.
// description is optional; derived columns are ignored on import.
var requiredImportColumns = []string{
	"name",
	"length_cm",
	"tip_mm",
	"waist_mm",
	"tail_mm",
	"radius_m",
	"weight_g",
}

// TransferService moves ski specs in and out as CSV. It builds on
// SpecService so imported rows get exactly the validation, uniqueness,
// and metric computation of a regular create.
type TransferService struct {
	specs  *SpecService
	logger *logger.Logger
}

// NewTransferService creates a new CSV transfer service.
func NewTransferService(specs *SpecService, log *logger.Logger) *TransferService {
	return &TransferService{
		specs:  specs,
		logger: log,
	}
}

// ImportRowError records why one data row was skipped. Row is the
// 1-based file line, counting the header as line 1.
type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportResult summarizes an import: rows created, rows skipped, and
// the reason each skipped row failed.
type ImportResult struct {
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	Errors   []ImportRowError `json:"errors"`
}

// Export writes the owner's specs to w as CSV, honoring the same search
// and sort contract as listing but without pagination.
func (s *TransferService) Export(ctx context.Context, ownerID string, req ListSpecsRequest, w io.Writer) error {
	specs, err := s.specs.ListAll(ctx, ownerID, req)
	if err != nil {
		return err
	}

	rows := make([]map[string]string, 0, len(specs))
	for _, spec := range specs {
		rows = append(rows, map[string]string{
			"name":                  spec.Name,
			"description":           spec.Description,
			"length_cm":             formatFloat(spec.LengthCM),
			"tip_mm":                formatFloat(spec.TipMM),
			"waist_mm":              formatFloat(spec.WaistMM),
			"tail_mm":               formatFloat(spec.TailMM),
			"radius_m":              formatFloat(spec.RadiusM),
			"weight_g":              formatFloat(spec.WeightG),
			"surface_area_cm2":      formatFloat(spec.SurfaceArea),
			"relative_weight_g_cm2": formatFloat(spec.RelativeWeight),
		})
	}

	if err := csvio.Generate(w, exportColumns, rows); err != nil {
		return fmt.Errorf("generate csv: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Ski specs exported", "owner_id", ownerID, "count", len(rows))
	}

	return nil
}

// Import reads a CSV upload and creates one spec per valid row. Rows
// that fail validation or collide on name (with existing records or
// with earlier rows of the same file) are skipped and reported; valid
// rows commit regardless. Only a malformed file or a missing required
// column fails the upload as a whole.
func (s *TransferService) Import(ctx context.Context, ownerID string, r io.Reader) (*ImportResult, error) {
	records, err := csvio.Parse(r)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: []ImportRowError{}}
	if len(records) == 0 {
		return result, nil
	}

	headers := make([]string, 0, len(records[0].Values))
	for h := range records[0].Values {
		headers = append(headers, h)
	}
	if err := csvio.ValidateHeaders(headers, requiredImportColumns); err != nil {
		return nil, err
	}

	for _, rec := range records {
		req, err := buildImportRequest(rec)
		if err == nil {
			_, err = s.specs.Create(ctx, ownerID, req)
		}
		if err != nil {
			var domainErr *domainerrors.Error
			if domainerrors.As(err, &domainErr) && domainErr.Code.Public() {
				result.Skipped++
				result.Errors = append(result.Errors, ImportRowError{
					Row:    rec.Line,
					Reason: domainErr.Message,
				})
				continue
			}
			// Storage failures abort: retrying the file should not
			// silently half-apply.
			return nil, err
		}
		result.Imported++
	}

	if s.logger != nil {
		s.logger.Info("Ski specs imported",
			"owner_id", ownerID,
			"imported", result.Imported,
			"skipped", result.Skipped,
		)
	}

	return result, nil
}

// buildImportRequest converts one CSV row into a create request.
// Numeric coercion failures come back as validation errors naming the
// offending column.
func buildImportRequest(rec csvio.Record) (CreateSpecRequest, error) {
	req := CreateSpecRequest{
		Name:        rec.Values["name"],
		Description: rec.Values["description"],
	}

	fields := []struct {
		column string
		dest   *float64
	}{
		{"length_cm", &req.LengthCM},
		{"tip_mm", &req.TipMM},
		{"waist_mm", &req.WaistMM},
		{"tail_mm", &req.TailMM},
		{"radius_m", &req.RadiusM},
		{"weight_g", &req.WeightG},
	}
	for _, f := range fields {
		raw := rec.Values[f.column]
		if raw == "" {
			// Leave zero; the create validation reports it as required.
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, domainerrors.Validationf("%s must be a valid number", f.column)
		}
		*f.dest = v
	}

	return req, nil
}

// formatFloat renders a float with the fewest digits that round-trip,
// so 186 exports as "186" and 2318.8 as "2318.8".
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
