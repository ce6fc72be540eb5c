package handlers

import (
	"net/http"

	"kickfleet/internal/service"
)

// NewDevicesHandler returns GET /devices handler.
func NewDevicesHandler(svc *service.FleetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		devices, err := svc.ListDevices(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"devices": devices,
		})
	}
}

// NewDeviceStatusHandler returns GET /devices/status?code= handler.
func NewDeviceStatusHandler(svc *service.FleetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			writeError(w, http.StatusBadRequest, "code query parameter is required")
			return
		}

		status, err := svc.DeviceStatus(r.Context(), code)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, status)
	}
}

// NewFleetStatsHandler returns GET /fleet/stats handler.
func NewFleetStatsHandler(svc *service.FleetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := svc.Snapshot(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snapshot)
	}
}
