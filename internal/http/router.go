package httpserver

import "net/http"

// Routes groups handlers.
type Routes struct {
	RentalStart   http.HandlerFunc
	RentalEnd     http.HandlerFunc
	RentalHistory http.HandlerFunc
	Telemetry     http.HandlerFunc
	ReportMatch   http.HandlerFunc
	Devices       http.HandlerFunc
	DeviceStatus  http.HandlerFunc
	FleetStats    http.HandlerFunc
	FleetFeed     http.HandlerFunc
	Health        http.HandlerFunc
}

// NewRouter registers endpoints.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	if routes.RentalStart != nil {
		mux.Handle("/rentals/start", method(http.MethodPost, routes.RentalStart))
	}
	if routes.RentalEnd != nil {
		mux.Handle("/rentals/end", method(http.MethodPost, routes.RentalEnd))
	}
	if routes.RentalHistory != nil {
		mux.Handle("/rentals/me", method(http.MethodGet, routes.RentalHistory))
	}
	if routes.Telemetry != nil {
		mux.Handle("/telemetry", method(http.MethodPost, routes.Telemetry))
	}
	if routes.ReportMatch != nil {
		mux.Handle("/reports/match", method(http.MethodPost, routes.ReportMatch))
	}
	if routes.Devices != nil {
		mux.Handle("/devices", method(http.MethodGet, routes.Devices))
	}
	if routes.DeviceStatus != nil {
		mux.Handle("/devices/status", method(http.MethodGet, routes.DeviceStatus))
	}
	if routes.FleetStats != nil {
		mux.Handle("/fleet/stats", method(http.MethodGet, routes.FleetStats))
	}
	if routes.FleetFeed != nil {
		mux.Handle("/ws/fleet", method(http.MethodGet, routes.FleetFeed))
	}
	if routes.Health != nil {
		mux.Handle("/health", method(http.MethodGet, routes.Health))
	}
	return mux
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
