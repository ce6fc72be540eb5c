package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"kickfleet/internal/geo"
	"kickfleet/internal/service"
)

type reportMatchRequest struct {
	ReporterUserID int64     `json:"reporter_user_id"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	ReportTime     time.Time `json:"report_time,omitempty"`
}

// NewReportMatchHandler returns POST /reports/match handler. A report
// with no plausible rider nearby comes back with matched=false; the
// report-filing collaborator records it unattributed.
func NewReportMatchHandler(svc *service.MatcherService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reportMatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json payload")
			return
		}
		if req.ReporterUserID == 0 {
			writeError(w, http.StatusBadRequest, "reporter_user_id is required")
			return
		}
		reportTime := req.ReportTime
		if reportTime.IsZero() {
			reportTime = time.Now().UTC()
		}

		match, err := svc.FindClosestRider(r.Context(), req.ReporterUserID,
			geo.Position{Latitude: req.Latitude, Longitude: req.Longitude}, reportTime)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, match)
	}
}
