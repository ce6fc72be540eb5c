package handlers

import (
	"encoding/json"
	"net/http"

	"kickfleet/internal/geo"
	"kickfleet/internal/service"
)

type startRentalRequest struct {
	UserID         int64   `json:"user_id"`
	DeviceCode     string  `json:"device_code"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	IdempotencyKey string  `json:"idempotency_key,omitempty"`
}

type endRentalRequest struct {
	UserID     int64   `json:"user_id"`
	DeviceCode string  `json:"device_code"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

// NewStartRentalHandler returns POST /rentals/start handler.
func NewStartRentalHandler(svc *service.RentalService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startRentalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json payload")
			return
		}
		if req.UserID == 0 || req.DeviceCode == "" {
			writeError(w, http.StatusBadRequest, "user_id and device_code are required")
			return
		}

		rental, err := svc.Start(r.Context(), service.StartRentalInput{
			UserID:         req.UserID,
			DeviceCode:     req.DeviceCode,
			Position:       geo.Position{Latitude: req.Latitude, Longitude: req.Longitude},
			IdempotencyKey: req.IdempotencyKey,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"rental_id":       rental.ID,
			"device_code":     rental.DeviceCode,
			"start_time":      rental.StartTime,
			"start_latitude":  rental.StartLatitude,
			"start_longitude": rental.StartLongitude,
		})
	}
}

// NewEndRentalHandler returns POST /rentals/end handler.
func NewEndRentalHandler(svc *service.RentalService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req endRentalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json payload")
			return
		}
		if req.UserID == 0 || req.DeviceCode == "" {
			writeError(w, http.StatusBadRequest, "user_id and device_code are required")
			return
		}

		receipt, err := svc.End(r.Context(), service.EndRentalInput{
			UserID:     req.UserID,
			DeviceCode: req.DeviceCode,
			Position:   geo.Position{Latitude: req.Latitude, Longitude: req.Longitude},
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, receipt)
	}
}
