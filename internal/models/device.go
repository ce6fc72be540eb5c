package models

import (
	"time"

	"kickfleet/internal/geo"
)

// Device represents a kickboard in the fleet. Devices are provisioned
// externally; the core only mutates usage, position and battery.
type Device struct {
	ID           int64     `db:"id" json:"id"`
	DeviceCode   string    `db:"device_code" json:"device_code"`
	Latitude     float64   `db:"latitude" json:"latitude"`
	Longitude    float64   `db:"longitude" json:"longitude"`
	BatteryLevel float64   `db:"battery_level" json:"battery_level"`
	IsUsed       bool      `db:"is_used" json:"is_used"`
	LastUpdated  time.Time `db:"last_updated" json:"last_updated"`
}

// Position returns the device's last known position.
func (d Device) Position() geo.Position {
	return geo.Position{Latitude: d.Latitude, Longitude: d.Longitude}
}

// DeviceStatus is the read model served to callers asking about one device.
type DeviceStatus struct {
	DeviceCode   string        `json:"device_code"`
	IsUsed       bool          `json:"is_used"`
	BatteryLevel float64       `json:"battery_level"`
	Latitude     float64       `json:"latitude"`
	Longitude    float64       `json:"longitude"`
	LastUpdated  time.Time     `json:"last_updated"`
	ActiveRental *RentalSummary `json:"active_rental,omitempty"`
}

// FleetSnapshot aggregates fleet-wide availability counts.
type FleetSnapshot struct {
	TotalDevices      int `json:"total_devices"`
	AvailableDevices  int `json:"available_devices"`
	InUseDevices      int `json:"in_use_devices"`
	LowBatteryDevices int `json:"low_battery_devices"`
}
