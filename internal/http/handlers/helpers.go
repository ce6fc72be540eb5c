package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"kickfleet/internal/geo"
	"kickfleet/internal/repository"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps core errors onto HTTP statuses. Anything
// unrecognized is a storage failure and stays opaque to the caller.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrDeviceNotFound):
		writeError(w, http.StatusNotFound, "device not found")
	case errors.Is(err, repository.ErrNoOpenRental):
		writeError(w, http.StatusNotFound, "no open rental")
	case errors.Is(err, repository.ErrDeviceInUse):
		writeError(w, http.StatusConflict, "device already rented")
	case errors.Is(err, geo.ErrInvalidPosition):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
