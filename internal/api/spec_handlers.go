package api

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/quiverapp/quiver-server/internal/domain"
	apperrors "github.com/quiverapp/quiver-server/internal/errors"
	"github.com/quiverapp/quiver-server/internal/service"
)

// paginationPayload is the paging block on list responses.
type paginationPayload struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// specListPayload is the list endpoint body.
type specListPayload struct {
	Specs      []*domain.SkiSpec `json:"specs"`
	Pagination paginationPayload `json:"pagination"`
}

// uuidParam extracts a path parameter that must be UUID-formatted.
// Malformed ids are rejected here so storage never sees them.
func uuidParam(r *http.Request, name, label string) (string, error) {
	id := chi.URLParam(r, name)
	if _, err := uuid.Parse(id); err != nil {
		return "", apperrors.Validation("Invalid " + label)
	}
	return id, nil
}

// intQuery parses an optional integer query parameter, zero when absent.
func intQuery(q url.Values, name string) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Validationf("%s must be an integer", name)
	}
	return n, nil
}

// listRequestFromQuery builds a list request from query parameters.
// Range and enum checks happen in the service; only type coercion lives
// here.
func listRequestFromQuery(r *http.Request) (service.ListSpecsRequest, error) {
	q := r.URL.Query()
	req := service.ListSpecsRequest{
		Search:    q.Get("search"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}

	var err error
	if req.Page, err = intQuery(q, "page"); err != nil {
		return service.ListSpecsRequest{}, err
	}
	if req.Limit, err = intQuery(q, "limit"); err != nil {
		return service.ListSpecsRequest{}, err
	}

	return req, nil
}

// handleListSpecs returns one page of the caller's ski specs.
func (s *Server) handleListSpecs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := listRequestFromQuery(r)
	if err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	result, err := s.specService.List(ctx, getUserID(ctx), req)
	if err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	respondJSON(w, http.StatusOK, specListPayload{
		Specs: result.Items,
		Pagination: paginationPayload{
			Page:       result.Page,
			Limit:      result.Limit,
			Total:      result.Total,
			TotalPages: result.TotalPages,
		},
	}, s.logger)
}

// handleCreateSpec creates a new ski spec for the caller.
func (s *Server) handleCreateSpec(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.CreateSpecRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	spec, err := s.specService.Create(ctx, getUserID(ctx), req)
	if err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	respondJSON(w, http.StatusCreated, spec, s.logger)
}

// handleGetSpec returns a single ski spec by ID.
func (s *Server) handleGetSpec(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	specID, err := uuidParam(r, "specID", "ski spec ID")
	if err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	spec, err := s.specService.Get(ctx, getUserID(ctx), specID)
	if err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	respondJSON(w, http.StatusOK, spec, s.logger)
}

// handleUpdateSpec replaces all client-mutable fields of a ski spec.
func (s *Server) handleUpdateSpec(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	specID, err := uuidParam(r, "specID", "ski spec ID")
	if err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	var req service.UpdateSpecRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	spec, err := s.specService.Update(ctx, getUserID(ctx), specID, req)
	if err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	respondJSON(w, http.StatusOK, spec, s.logger)
}

// handleDeleteSpec deletes a ski spec and its notes.
func (s *Server) handleDeleteSpec(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	specID, err := uuidParam(r, "specID", "ski spec ID")
	if err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	if err := s.specService.Delete(ctx, getUserID(ctx), specID); err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Ski spec deleted successfully",
	}, s.logger)
}

// handleCompareSpecs returns 2-4 specs side by side, in request order.
func (s *Server) handleCompareSpecs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := strings.TrimSpace(r.URL.Query().Get("ids"))
	if raw == "" {
		respondError(w, r, apperrors.Validation("ids query parameter is required"), s.logger)
		return
	}

	ids := strings.Split(raw, ",")
	for i := range ids {
		ids[i] = strings.TrimSpace(ids[i])
	}

	specs, err := s.specService.Compare(ctx, getUserID(ctx), service.CompareSpecsRequest{IDs: ids})
	if err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"specs": specs,
	}, s.logger)
}

// handleExportSpecs returns the caller's specs as a CSV download,
// honoring the same search and sort parameters as the list endpoint.
// The file is built before any byte is written so errors still produce
// a clean JSON response.
func (s *Server) handleExportSpecs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := r.URL.Query()
	req := service.ListSpecsRequest{
		Search:    q.Get("search"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}

	var buf bytes.Buffer
	if err := s.transferService.Export(ctx, getUserID(ctx), req, &buf); err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	filename := "ski-specs-export-" + time.Now().UTC().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug("Export download aborted", "error", err)
	}
}

// handleImportSpecs ingests an uploaded CSV file, creating one spec per
// valid row. Row-level failures are reported in the response; they do
// not abort the rest of the file.
func (s *Server) handleImportSpecs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, MaxImportSize)
	if err := r.ParseMultipartForm(MaxImportSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, r, apperrors.Validation("Import file exceeds the 10MB limit"), s.logger)
			return
		}
		respondError(w, r, apperrors.Validation("Request must be multipart/form-data"), s.logger)
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, apperrors.Validation("No file uploaded"), s.logger)
		return
	}
	defer file.Close()

	result, err := s.transferService.Import(ctx, getUserID(ctx), file)
	if err != nil {
		respondError(w, r, err, s.logger)
		return
	}

	respondJSON(w, http.StatusOK, result, s.logger)
}
