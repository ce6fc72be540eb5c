package models

import (
	"time"

	"kickfleet/internal/geo"
)

// Rental represents one user's exclusive use of one device. Fee and
// distance stay nil while the rental is open and are written exactly once
// at close.
type Rental struct {
	ID             int64      `db:"id" json:"id"`
	UserID         int64      `db:"user_id" json:"user_id"`
	DeviceCode     string     `db:"device_code" json:"device_code"`
	IdempotencyKey string     `db:"idempotency_key" json:"idempotency_key"`
	StartLatitude  float64    `db:"start_latitude" json:"start_latitude"`
	StartLongitude float64    `db:"start_longitude" json:"start_longitude"`
	EndLatitude    *float64   `db:"end_latitude" json:"end_latitude,omitempty"`
	EndLongitude   *float64   `db:"end_longitude" json:"end_longitude,omitempty"`
	StartTime      time.Time  `db:"start_time" json:"start_time"`
	EndTime        *time.Time `db:"end_time" json:"end_time,omitempty"`
	Fee            *int64     `db:"fee" json:"fee,omitempty"`
	DistanceMeters *int64     `db:"distance_meters" json:"distance_meters,omitempty"`
}

// Open reports whether the rental has not been closed yet.
func (r Rental) Open() bool {
	return r.EndTime == nil
}

// StartPosition returns the canonical start point of the ride.
func (r Rental) StartPosition() geo.Position {
	return geo.Position{Latitude: r.StartLatitude, Longitude: r.StartLongitude}
}

// RentalSummary is the compact form embedded in device status responses.
type RentalSummary struct {
	RentalID  int64     `json:"rental_id"`
	UserID    int64     `json:"user_id"`
	StartTime time.Time `json:"start_time"`
}

// RideReceipt is returned to the caller when a rental closes.
type RideReceipt struct {
	RentalID        int64 `json:"rental_id"`
	Fee             int64 `json:"fee"`
	DurationSeconds int64 `json:"duration_seconds"`
	DistanceMeters  int64 `json:"distance_meters"`
}
