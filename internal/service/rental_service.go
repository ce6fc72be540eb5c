package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"kickfleet/internal/fee"
	"kickfleet/internal/geo"
	"kickfleet/internal/models"
	"kickfleet/internal/repository"
)

// RentalService owns the rental lifecycle: the sole AVAILABLE→RENTED and
// RENTED→AVAILABLE transitions and the settlement computed at close.
type RentalService struct {
	devices   DeviceStore
	rentals   RentalStore
	telemetry TelemetryStore
	status    StatusCache
	logger    *zap.Logger
	now       func() time.Time
}

// NewRentalService builds service.
func NewRentalService(
	devices DeviceStore,
	rentals RentalStore,
	telemetry TelemetryStore,
	status StatusCache,
	logger *zap.Logger,
) *RentalService {
	return &RentalService{
		devices:   devices,
		rentals:   rentals,
		telemetry: telemetry,
		status:    status,
		logger:    logger,
		now:       time.Now,
	}
}

// StartRentalInput is the start request from the HTTP layer or simulator.
type StartRentalInput struct {
	UserID         int64
	DeviceCode     string
	Position       geo.Position
	IdempotencyKey string
}

// EndRentalInput is the end request.
type EndRentalInput struct {
	UserID     int64
	DeviceCode string
	Position   geo.Position
}

// Start opens a rental. The caller-supplied position is validated but the
// canonical start point is the device's stored last-known position; device
// telemetry is trusted over client GPS. The device claim and the rental
// insert happen in one transaction, so concurrent starts on the same
// device resolve to exactly one winner.
func (s *RentalService) Start(ctx context.Context, input StartRentalInput) (*models.Rental, error) {
	if err := input.Position.Validate(); err != nil {
		return nil, err
	}

	if input.IdempotencyKey != "" {
		existing, err := s.rentals.RentalByIdempotencyKey(ctx, input.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	if _, err := s.devices.DeviceByCode(ctx, input.DeviceCode); err != nil {
		return nil, err
	}

	rental, err := s.rentals.CreateRental(ctx, repository.CreateRentalParams{
		UserID:         input.UserID,
		DeviceCode:     input.DeviceCode,
		IdempotencyKey: input.IdempotencyKey,
		StartTime:      s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.invalidateStatus(ctx, input.DeviceCode)

	s.logger.Info("rental started",
		zap.Int64("rental_id", rental.ID),
		zap.Int64("user_id", rental.UserID),
		zap.String("device_code", rental.DeviceCode),
	)
	return rental, nil
}

// End closes the open rental for the user/device pair and settles it. The
// canonical end position is the most recent telemetry sample, falling back
// to the caller-supplied position when the ride produced no samples. Fee
// and distance are written exactly once; the device flips back to
// available at the canonical end position.
func (s *RentalService) End(ctx context.Context, input EndRentalInput) (*models.RideReceipt, error) {
	if err := input.Position.Validate(); err != nil {
		return nil, err
	}

	open, err := s.rentals.OpenRental(ctx, input.UserID, input.DeviceCode)
	if err != nil {
		return nil, err
	}

	endPos := input.Position
	last, err := s.telemetry.LastSample(ctx, input.DeviceCode)
	switch {
	case err == nil:
		endPos = last.Position()
	case err == repository.ErrNoSamples:
		// No telemetry during the ride; the caller position stands.
	default:
		return nil, err
	}

	endTime := s.now().UTC()
	if endTime.Before(open.StartTime) {
		endTime = open.StartTime
	}
	durationSeconds := int64(endTime.Sub(open.StartTime).Seconds())

	distanceMeters, err := geo.DistanceMeters(open.StartPosition(), endPos)
	if err != nil {
		return nil, err
	}
	billed := fee.Compute(durationSeconds)

	if err := s.rentals.CloseRental(ctx, repository.CloseRentalParams{
		RentalID:       open.ID,
		DeviceCode:     open.DeviceCode,
		EndTime:        endTime,
		EndLatitude:    endPos.Latitude,
		EndLongitude:   endPos.Longitude,
		Fee:            billed,
		DistanceMeters: distanceMeters,
	}); err != nil {
		return nil, err
	}

	s.invalidateStatus(ctx, input.DeviceCode)

	s.logger.Info("rental ended",
		zap.Int64("rental_id", open.ID),
		zap.Int64("user_id", open.UserID),
		zap.String("device_code", open.DeviceCode),
		zap.Int64("fee", billed),
		zap.Int64("duration_seconds", durationSeconds),
		zap.Int64("distance_meters", distanceMeters),
	)

	return &models.RideReceipt{
		RentalID:        open.ID,
		Fee:             billed,
		DurationSeconds: durationSeconds,
		DistanceMeters:  distanceMeters,
	}, nil
}

// History returns the user's past rentals.
func (s *RentalService) History(ctx context.Context, userID int64, limit int) ([]models.Rental, error) {
	return s.rentals.ListByUser(ctx, userID, limit)
}

func (s *RentalService) invalidateStatus(ctx context.Context, deviceCode string) {
	if s.status == nil {
		return
	}
	if err := s.status.Delete(ctx, deviceCode); err != nil && err != redis.Nil {
		s.logger.Warn("failed to invalidate device status cache",
			zap.String("device_code", deviceCode),
			zap.Error(err),
		)
	}
}
