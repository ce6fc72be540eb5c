package service

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"kickfleet/internal/models"
	"kickfleet/internal/repository"
)

// lowBatteryThreshold marks devices the fleet snapshot counts as needing
// a swap.
const lowBatteryThreshold = 20.0

// FleetService serves the aggregate view of the fleet: per-device status
// (cache-fronted) and fleet-wide counts.
type FleetService struct {
	devices DeviceStore
	rentals RentalStore
	status  StatusCache
	logger  *zap.Logger
}

// NewFleetService builds service.
func NewFleetService(devices DeviceStore, rentals RentalStore, status StatusCache, logger *zap.Logger) *FleetService {
	return &FleetService{
		devices: devices,
		rentals: rentals,
		status:  status,
		logger:  logger,
	}
}

// DeviceStatus returns the read model for one device, including the open
// rental summary when rented. Reads go through the redis cache; a cache
// failure degrades to the store, never to an error.
func (s *FleetService) DeviceStatus(ctx context.Context, deviceCode string) (*models.DeviceStatus, error) {
	if s.status != nil {
		cached, err := s.status.Get(ctx, deviceCode)
		if err == nil {
			return cached, nil
		}
		if err != redis.Nil {
			s.logger.Warn("device status cache read failed",
				zap.String("device_code", deviceCode),
				zap.Error(err),
			)
		}
	}

	device, err := s.devices.DeviceByCode(ctx, deviceCode)
	if err != nil {
		return nil, err
	}

	status := &models.DeviceStatus{
		DeviceCode:   device.DeviceCode,
		IsUsed:       device.IsUsed,
		BatteryLevel: device.BatteryLevel,
		Latitude:     device.Latitude,
		Longitude:    device.Longitude,
		LastUpdated:  device.LastUpdated,
	}

	if device.IsUsed {
		open, err := s.rentals.OpenRentalByDevice(ctx, deviceCode)
		switch {
		case err == nil:
			status.ActiveRental = &models.RentalSummary{
				RentalID:  open.ID,
				UserID:    open.UserID,
				StartTime: open.StartTime,
			}
		case errors.Is(err, repository.ErrNoOpenRental):
			// Flag and rental row disagree; report the flag as stored.
		default:
			return nil, err
		}
	}

	if s.status != nil {
		if err := s.status.Save(ctx, *status); err != nil {
			s.logger.Warn("device status cache write failed",
				zap.String("device_code", deviceCode),
				zap.Error(err),
			)
		}
	}
	return status, nil
}

// ListDevices returns the whole fleet.
func (s *FleetService) ListDevices(ctx context.Context) ([]models.Device, error) {
	return s.devices.ListDevices(ctx)
}

// AvailableDevices returns up to limit devices open for rental.
func (s *FleetService) AvailableDevices(ctx context.Context, limit int) ([]models.Device, error) {
	return s.devices.ListAvailable(ctx, limit)
}

// Snapshot returns fleet-wide availability and battery counts.
func (s *FleetService) Snapshot(ctx context.Context) (*models.FleetSnapshot, error) {
	return s.devices.Snapshot(ctx, lowBatteryThreshold)
}
