package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"kickfleet/internal/battery"
	"kickfleet/internal/geo"
	"kickfleet/internal/models"
	"kickfleet/internal/repository"
)

// TelemetryService ingests position samples and drives battery drain.
type TelemetryService struct {
	telemetry TelemetryStore
	status    StatusCache
	feed      FleetFeed
	logger    *zap.Logger
	now       func() time.Time
}

// NewTelemetryService builds service.
func NewTelemetryService(telemetry TelemetryStore, status StatusCache, feed FleetFeed, logger *zap.Logger) *TelemetryService {
	return &TelemetryService{
		telemetry: telemetry,
		status:    status,
		feed:      feed,
		logger:    logger,
		now:       time.Now,
	}
}

// RecordInput is one position report for a device.
type RecordInput struct {
	DeviceCode string
	UserID     int64
	Position   geo.Position
	CapturedAt time.Time
}

// Record appends a sample and updates the device's last known position
// and battery. Drain is computed from the gap since the previous sample
// and skipped entirely when the gap is implausible, so clock skew or
// missed samples cannot distort the battery trajectory. Out-of-order
// timestamps are accepted; their negative gap simply fails the guard.
func (s *TelemetryService) Record(ctx context.Context, input RecordInput) (*models.TelemetrySample, error) {
	if err := input.Position.Validate(); err != nil {
		return nil, err
	}
	capturedAt := input.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = s.now()
	}
	capturedAt = capturedAt.UTC()

	var drain float64
	prev, err := s.telemetry.LastSample(ctx, input.DeviceCode)
	switch {
	case err == nil:
		gap := capturedAt.Sub(prev.CapturedAt)
		if battery.PlausibleGap(gap) {
			drain = battery.Drain(gap)
		}
	case err == repository.ErrNoSamples:
		// First sample for this device; nothing to drain against.
	default:
		return nil, err
	}

	sample, err := s.telemetry.RecordSample(ctx, repository.RecordSampleParams{
		DeviceCode:   input.DeviceCode,
		UserID:       input.UserID,
		Latitude:     input.Position.Latitude,
		Longitude:    input.Position.Longitude,
		CapturedAt:   capturedAt,
		BatteryDrain: drain,
	})
	if err != nil {
		return nil, err
	}

	if s.feed != nil {
		s.feed.Broadcast(*sample)
	}
	if s.status != nil {
		if err := s.status.Delete(ctx, input.DeviceCode); err != nil && err != redis.Nil {
			s.logger.Warn("failed to invalidate device status cache",
				zap.String("device_code", input.DeviceCode),
				zap.Error(err),
			)
		}
	}

	s.logger.Debug("telemetry recorded",
		zap.String("device_code", sample.DeviceCode),
		zap.Int64("user_id", sample.UserID),
		zap.Float64("battery_drain", drain),
	)
	return sample, nil
}
