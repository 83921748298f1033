package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeInvalidJSON, http.StatusBadRequest},
		{CodeRegistrationFailed, http.StatusBadRequest},
		{CodeAuthentication, http.StatusUnauthorized},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeInvalidSurfaceArea, http.StatusUnprocessableEntity},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeDatabase, http.StatusInternalServerError},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_UNKNOWN"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestErrorIsMatchesByCode(t *testing.T) {
	err := Conflict("A ski spec with this name already exists")
	assert.True(t, Is(err, ErrConflict))
	assert.False(t, Is(err, ErrNotFound))
}

func TestErrorWrappingPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Database(cause)

	require.ErrorIs(t, err, ErrDatabase)
	assert.Equal(t, cause, Unwrap(err))
	assert.Contains(t, err.Error(), "connection refused")
	// The client-facing message stays generic regardless of cause.
	assert.Equal(t, "Database operation failed", err.Message)
}

func TestInvalidSurfaceAreaCarriesContext(t *testing.T) {
	err := InvalidSurfaceArea(1800, 0)

	require.ErrorIs(t, err, ErrInvalidSurfaceArea)
	details, ok := err.Details.(map[string]float64)
	require.True(t, ok)
	assert.Equal(t, float64(1800), details["weight"])
	assert.Equal(t, float64(0), details["surface_area"])
}

func TestPublic(t *testing.T) {
	assert.True(t, CodeValidation.Public())
	assert.True(t, CodeNotFound.Public())
	assert.False(t, CodeDatabase.Public())
	assert.False(t, CodeInternal.Public())
}
