package service

import (
	"context"
	"time"

	"kickfleet/internal/models"
	"kickfleet/internal/repository"
)

// DeviceStore is the device-table surface the services consume.
type DeviceStore interface {
	DeviceByCode(ctx context.Context, deviceCode string) (*models.Device, error)
	ListDevices(ctx context.Context) ([]models.Device, error)
	ListAvailable(ctx context.Context, limit int) ([]models.Device, error)
	Snapshot(ctx context.Context, lowBatteryBelow float64) (*models.FleetSnapshot, error)
}

// RentalStore is the rental-table surface. CreateRental and CloseRental
// are transactional in the implementation; they either fully apply or
// fully fail.
type RentalStore interface {
	CreateRental(ctx context.Context, arg repository.CreateRentalParams) (*models.Rental, error)
	CloseRental(ctx context.Context, arg repository.CloseRentalParams) error
	OpenRental(ctx context.Context, userID int64, deviceCode string) (*models.Rental, error)
	OpenRentalByDevice(ctx context.Context, deviceCode string) (*models.Rental, error)
	RentalByIdempotencyKey(ctx context.Context, key string) (*models.Rental, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]models.Rental, error)
}

// TelemetryStore is the sample-table surface. RecordSample couples the
// sample insert with the device position/battery update transactionally.
type TelemetryStore interface {
	RecordSample(ctx context.Context, arg repository.RecordSampleParams) (*models.TelemetrySample, error)
	LastSample(ctx context.Context, deviceCode string) (*models.TelemetrySample, error)
	SamplesInWindow(ctx context.Context, from, to time.Time, excludeUserID int64) ([]models.TelemetrySample, error)
}

// StatusCache fronts device status reads. Cache failures never fail an
// operation; callers log and move on.
type StatusCache interface {
	Save(ctx context.Context, status models.DeviceStatus) error
	Get(ctx context.Context, deviceCode string) (*models.DeviceStatus, error)
	Delete(ctx context.Context, deviceCode string) error
}

// FleetFeed receives accepted telemetry samples for live subscribers.
type FleetFeed interface {
	Broadcast(sample models.TelemetrySample)
}
