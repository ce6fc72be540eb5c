package handlers

import (
	"net/http"
	"strconv"

	"kickfleet/internal/service"
)

const userIDHeader = "X-User-ID"

// NewRentalHistoryHandler returns GET /rentals/me handler.
func NewRentalHistoryHandler(svc *service.RentalService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userIDStr := r.Header.Get(userIDHeader)
		if userIDStr == "" {
			writeError(w, http.StatusUnauthorized, "missing user id header")
			return
		}
		userID, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user id")
			return
		}

		rentals, err := svc.History(r.Context(), userID, 50)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"rentals": rentals,
		})
	}
}
