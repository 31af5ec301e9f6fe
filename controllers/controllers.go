package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"saathi_server/services"
)

// CallerID returns the member id the gateway resolved for this request. The
// gateway authenticates the credential and forwards only the identity; this
// service never sees the credential itself.
func CallerID(r *http.Request) (string, error) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		return "", services.ErrUnauthenticated
	}
	return userID, nil
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// WriteError maps a service failure to its HTTP status. Anything outside the
// taxonomy is a plain 500 with a generic body; the detail stays in the log.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, services.ErrForbidden):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, services.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrConflict):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, services.ErrInvalidTransition):
		status, message = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, services.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrDependency):
		status, message = http.StatusBadGateway, err.Error()
	default:
		log.Printf("Unhandled error: %v", err)
	}

	WriteJSON(w, status, map[string]string{"error": message})
}

// HealthCheckHandler reports liveness
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
