package api

import (
	"context"
	"encoding/json/v2"
	"errors"
	"net/http"
	"time"

	apperrors "github.com/quiverapp/quiver-server/internal/errors"
	"github.com/quiverapp/quiver-server/internal/logger"
	"github.com/quiverapp/quiver-server/internal/store"
)

// errorBody is the wire shape of every error response.
type errorBody struct {
	Error     string         `json:"error"`
	Code      apperrors.Code `json:"code"`
	Timestamp string         `json:"timestamp"`
	Details   any            `json:"details,omitempty"`
}

// respondJSON writes data as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, data any, log *logger.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.MarshalWrite(w, data); err != nil {
		// Status is already on the wire; all we can do is log.
		if log != nil {
			log.Error("Failed to write JSON response", "error", err)
		}
	}
}

// respondError maps any error to the error body contract and writes it.
// Domain errors keep their code and message; store sentinels that leaked
// past the service layer are folded into the taxonomy; everything else
// becomes a generic 500 so internal details never reach clients.
func respondError(w http.ResponseWriter, r *http.Request, err error, log *logger.Logger) {
	if err == nil {
		return
	}

	// Client went away; nothing useful to write.
	if errors.Is(err, context.Canceled) {
		return
	}

	body := errorBody{
		Error:     "Internal server error",
		Code:      apperrors.CodeInternal,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	var domainErr *apperrors.Error
	var storeErr *store.Error
	switch {
	case errors.As(err, &domainErr):
		body.Code = domainErr.Code
		if domainErr.Code.Public() {
			body.Error = domainErr.Message
			body.Details = domainErr.Details
		} else if domainErr.Code == apperrors.CodeDatabase {
			body.Error = "Database operation failed"
		}

	case errors.As(err, &storeErr):
		// Services normally translate these; this is the backstop.
		switch {
		case errors.Is(err, store.ErrNotFound):
			body.Code = apperrors.CodeNotFound
			body.Error = "Resource not found"
		case errors.Is(err, store.ErrAlreadyExists):
			body.Code = apperrors.CodeConflict
			body.Error = "Resource already exists"
		case errors.Is(err, store.ErrInvalidInput):
			body.Code = apperrors.CodeValidation
			body.Error = "Invalid input"
		default:
			body.Code = apperrors.CodeDatabase
			body.Error = "Database operation failed"
		}
	}

	status := body.Code.HTTPStatus()
	if log != nil {
		if status >= http.StatusInternalServerError {
			log.Error("Request failed",
				"error", err,
				"code", string(body.Code),
				"method", r.Method,
				"path", r.URL.Path,
			)
		} else {
			log.Debug("Request rejected",
				"error", err,
				"code", string(body.Code),
				"method", r.Method,
				"path", r.URL.Path,
			)
		}
	}

	respondJSON(w, status, body, log)
}

// decodeJSON parses a JSON request body into v, holding the body to
// MaxJSONSize. Unknown fields are rejected so client typos surface as
// errors instead of silently dropped data.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONSize)

	err := json.UnmarshalRead(r.Body, v, json.RejectUnknownMembers(true))
	if err == nil {
		return nil
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperrors.Validation("Request body exceeds the maximum allowed size")
	}

	// Well-formed JSON that does not fit the target shape is a
	// validation problem; anything else was never JSON to begin with.
	var semErr *json.SemanticError
	if errors.As(err, &semErr) {
		if errors.Is(err, json.ErrUnknownName) {
			return apperrors.Validation("Request body contains an unknown field")
		}
		return apperrors.Validation("Request body has an invalid shape")
	}

	return apperrors.InvalidJSON("Invalid JSON in request body")
}
