package simulation

import (
	"math"
	"testing"

	"kickfleet/internal/geo"
)

func TestNextPositionStepSize(t *testing.T) {
	from := geo.Position{Latitude: 37.5, Longitude: 127.0}
	const step = 0.0005

	for _, bearing := range []float64{0, math.Pi / 3, math.Pi, 3 * math.Pi / 2} {
		next := NextPosition(from, bearing, step)
		if err := next.Validate(); err != nil {
			t.Fatalf("NextPosition produced invalid position: %v", err)
		}
		dLat := next.Latitude - from.Latitude
		dLon := next.Longitude - from.Longitude
		moved := math.Hypot(dLat, dLon)
		if math.Abs(moved-step) > 1e-9 {
			t.Errorf("bearing %v moved %v degrees, want %v", bearing, moved, step)
		}
	}
}

func TestNextPositionZeroStepStaysPut(t *testing.T) {
	from := geo.Position{Latitude: 37.5, Longitude: 127.0}
	next := NextPosition(from, 1.0, 0)
	if next != from {
		t.Errorf("NextPosition with zero step = %v, want %v", next, from)
	}
}
