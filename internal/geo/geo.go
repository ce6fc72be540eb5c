// Package geo provides the coordinate type and great-circle math used by
// the fleet core. Positions are always (latitude, longitude) in degrees;
// every boundary that accepts coordinates validates them here before any
// state is touched.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadiusKm is the mean earth radius used for haversine distances.
const EarthRadiusKm = 6371.0

// ErrInvalidPosition marks coordinates outside the valid lat/lon ranges
// or non-finite values.
var ErrInvalidPosition = errors.New("invalid position")

// Position is a point on the earth surface in degrees.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate rejects NaN/Inf and out-of-range coordinates.
func (p Position) Validate() error {
	if math.IsNaN(p.Latitude) || math.IsInf(p.Latitude, 0) ||
		math.IsNaN(p.Longitude) || math.IsInf(p.Longitude, 0) {
		return fmt.Errorf("%w: coordinates must be finite", ErrInvalidPosition)
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("%w: latitude %.6f out of range [-90, 90]", ErrInvalidPosition, p.Latitude)
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("%w: longitude %.6f out of range [-180, 180]", ErrInvalidPosition, p.Longitude)
	}
	return nil
}

// Distance returns the great-circle distance between two points in
// kilometers via the haversine formula. Invalid input is an error, never a
// silent zero.
func Distance(from, to Position) (float64, error) {
	if err := from.Validate(); err != nil {
		return 0, err
	}
	if err := to.Validate(); err != nil {
		return 0, err
	}

	lat1 := radians(from.Latitude)
	lat2 := radians(to.Latitude)
	dLat := radians(to.Latitude - from.Latitude)
	dLon := radians(to.Longitude - from.Longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Asin(math.Min(1, math.Sqrt(a)))

	return EarthRadiusKm * c, nil
}

// DistanceMeters returns the haversine distance rounded down to whole
// meters, the unit rentals are settled in.
func DistanceMeters(from, to Position) (int64, error) {
	km, err := Distance(from, to)
	if err != nil {
		return 0, err
	}
	return int64(km * 1000), nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
