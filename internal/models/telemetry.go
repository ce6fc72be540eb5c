package models

import (
	"time"

	"kickfleet/internal/geo"
)

// TelemetrySample is one timestamped position report for a device during
// an active rental. Samples are append-only and ordered by CapturedAt per
// device.
type TelemetrySample struct {
	ID         int64     `db:"id" json:"id"`
	DeviceCode string    `db:"device_code" json:"device_code"`
	UserID     int64     `db:"user_id" json:"user_id"`
	Latitude   float64   `db:"latitude" json:"latitude"`
	Longitude  float64   `db:"longitude" json:"longitude"`
	CapturedAt time.Time `db:"captured_at" json:"captured_at"`
}

// Position returns the sample's coordinates.
func (s TelemetrySample) Position() geo.Position {
	return geo.Position{Latitude: s.Latitude, Longitude: s.Longitude}
}

// ViolationMatch is the result of attributing a crowd-sourced report to
// the most plausible nearby rider. A zero Matched value means the report
// stays unattributed.
type ViolationMatch struct {
	Matched    bool    `json:"matched"`
	UserID     int64   `json:"user_id,omitempty"`
	DeviceCode string  `json:"device_code,omitempty"`
	Score      float64 `json:"score,omitempty"`
}
