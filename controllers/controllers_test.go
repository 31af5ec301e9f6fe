package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"saathi_server/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallerID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/interests/sent", nil)
	_, err := CallerID(r)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	r.Header.Set("X-User-Id", "anika")
	userID, err := CallerID(r)
	require.NoError(t, err)
	assert.Equal(t, "anika", userID)
}

func TestWriteError_StatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{services.ErrUnauthenticated, http.StatusUnauthorized},
		{services.ErrForbidden, http.StatusForbidden},
		{services.ErrNotFound, http.StatusNotFound},
		{services.ErrConflict, http.StatusConflict},
		{services.ErrInvalidTransition, http.StatusUnprocessableEntity},
		{services.ErrValidation, http.StatusBadRequest},
		{services.ErrDependency, http.StatusBadGateway},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		WriteError(w, fmt.Errorf("wrapped: %w", tc.err))
		assert.Equal(t, tc.status, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	}

	// Untyped failures never leak their detail to the client.
	w := httptest.NewRecorder()
	WriteError(w, errors.New("dynamo endpoint 10.0.0.7 unreachable"))
	assert.NotContains(t, w.Body.String(), "10.0.0.7")
}

func TestHealthCheckHandler(t *testing.T) {
	w := httptest.NewRecorder()
	HealthCheckHandler(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}
