package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"kickfleet/internal/geo"
	"kickfleet/internal/service"
)

type telemetryRequest struct {
	DeviceCode string    `json:"device_code"`
	UserID     int64     `json:"user_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	CapturedAt time.Time `json:"captured_at,omitempty"`
}

// NewTelemetryHandler returns POST /telemetry handler.
func NewTelemetryHandler(svc *service.TelemetryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req telemetryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json payload")
			return
		}
		if req.DeviceCode == "" {
			writeError(w, http.StatusBadRequest, "device_code is required")
			return
		}

		sample, err := svc.Record(r.Context(), service.RecordInput{
			DeviceCode: req.DeviceCode,
			UserID:     req.UserID,
			Position:   geo.Position{Latitude: req.Latitude, Longitude: req.Longitude},
			CapturedAt: req.CapturedAt,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"sample_id":   sample.ID,
			"captured_at": sample.CapturedAt,
		})
	}
}
