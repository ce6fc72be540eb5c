// Package simulation fabricates realistic GPS movement for demo fleets.
// It drives the same rental and telemetry operations the HTTP layer
// exposes, synchronously, one tick at a time.
package simulation

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kickfleet/internal/geo"
	"kickfleet/internal/service"
)

// Options tune the simulated fleet.
type Options struct {
	Riders      int
	Tick        time.Duration
	MinRide     time.Duration
	MaxRide     time.Duration
	StepDegrees float64
	MinUserID   int64
	MaxUserID   int64
}

func (o *Options) defaults() {
	if o.Riders <= 0 {
		o.Riders = 3
	}
	if o.Tick <= 0 {
		o.Tick = 5 * time.Second
	}
	if o.MinRide <= 0 {
		o.MinRide = time.Minute
	}
	if o.MaxRide < o.MinRide {
		o.MaxRide = o.MinRide + 2*time.Minute
	}
	if o.StepDegrees <= 0 {
		o.StepDegrees = 0.0005
	}
	if o.MinUserID <= 0 {
		o.MinUserID = 1
	}
	if o.MaxUserID < o.MinUserID {
		o.MaxUserID = o.MinUserID + 99
	}
}

type ride struct {
	rideTag    string
	userID     int64
	deviceCode string
	position   geo.Position
	bearing    float64
	endsAt     time.Time
}

// Simulator keeps a small set of concurrent fake rides alive.
type Simulator struct {
	rentals   *service.RentalService
	telemetry *service.TelemetryService
	fleet     *service.FleetService
	logger    *zap.Logger
	opts      Options
	rng       *rand.Rand

	rides map[string]*ride
}

// New builds a simulator over the given services.
func New(
	rentals *service.RentalService,
	telemetry *service.TelemetryService,
	fleet *service.FleetService,
	opts Options,
	logger *zap.Logger,
) *Simulator {
	opts.defaults()
	return &Simulator{
		rentals:   rentals,
		telemetry: telemetry,
		fleet:     fleet,
		logger:    logger,
		opts:      opts,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		rides:     make(map[string]*ride),
	}
}

// Run ticks until the context ends. Every tick tops the rider pool up,
// moves each active ride one step and records its telemetry, then closes
// rides that reached their planned length.
func (s *Simulator) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.endAll(context.WithoutCancel(ctx))
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Simulator) tick(ctx context.Context) {
	s.topUp(ctx)

	now := time.Now().UTC()
	for code, r := range s.rides {
		s.move(r)
		if _, err := s.telemetry.Record(ctx, service.RecordInput{
			DeviceCode: r.deviceCode,
			UserID:     r.userID,
			Position:   r.position,
			CapturedAt: now,
		}); err != nil {
			s.logger.Warn("simulated telemetry rejected",
				zap.String("device_code", r.deviceCode),
				zap.Error(err),
			)
		}

		if now.After(r.endsAt) {
			s.endRide(ctx, r)
			delete(s.rides, code)
		}
	}
}

func (s *Simulator) topUp(ctx context.Context) {
	missing := s.opts.Riders - len(s.rides)
	if missing <= 0 {
		return
	}

	available, err := s.fleet.AvailableDevices(ctx, missing)
	if err != nil {
		s.logger.Warn("failed to list available devices", zap.Error(err))
		return
	}

	for _, device := range available {
		if _, taken := s.rides[device.DeviceCode]; taken {
			continue
		}
		userID := s.opts.MinUserID + s.rng.Int63n(s.opts.MaxUserID-s.opts.MinUserID+1)
		rideTag := uuid.NewString()

		rental, err := s.rentals.Start(ctx, service.StartRentalInput{
			UserID:         userID,
			DeviceCode:     device.DeviceCode,
			Position:       device.Position(),
			IdempotencyKey: rideTag,
		})
		if err != nil {
			s.logger.Warn("simulated rental rejected",
				zap.String("device_code", device.DeviceCode),
				zap.Error(err),
			)
			continue
		}

		length := s.opts.MinRide + time.Duration(s.rng.Int63n(int64(s.opts.MaxRide-s.opts.MinRide)+1))
		s.rides[device.DeviceCode] = &ride{
			rideTag:    rideTag,
			userID:     userID,
			deviceCode: device.DeviceCode,
			position:   rental.StartPosition(),
			bearing:    s.rng.Float64() * 2 * math.Pi,
			endsAt:     time.Now().UTC().Add(length),
		}
		s.logger.Info("simulated ride started",
			zap.String("ride_tag", rideTag),
			zap.String("device_code", device.DeviceCode),
			zap.Int64("user_id", userID),
			zap.Duration("planned_length", length),
		)
	}
}

func (s *Simulator) move(r *ride) {
	// Mostly keep heading, sometimes drift, like a rider following
	// streets rather than teleporting.
	r.bearing += (s.rng.Float64() - 0.5) * math.Pi / 4
	next := NextPosition(r.position, r.bearing, s.opts.StepDegrees)
	if next.Validate() == nil {
		r.position = next
	}
}

func (s *Simulator) endRide(ctx context.Context, r *ride) {
	receipt, err := s.rentals.End(ctx, service.EndRentalInput{
		UserID:     r.userID,
		DeviceCode: r.deviceCode,
		Position:   r.position,
	})
	if err != nil {
		s.logger.Warn("simulated ride failed to end",
			zap.String("device_code", r.deviceCode),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("simulated ride ended",
		zap.String("ride_tag", r.rideTag),
		zap.String("device_code", r.deviceCode),
		zap.Int64("fee", receipt.Fee),
		zap.Int64("duration_seconds", receipt.DurationSeconds),
		zap.Int64("distance_meters", receipt.DistanceMeters),
	)
}

func (s *Simulator) endAll(ctx context.Context) {
	for code, r := range s.rides {
		s.endRide(ctx, r)
		delete(s.rides, code)
	}
}

// NextPosition advances one step along a bearing in degree space.
func NextPosition(from geo.Position, bearing, stepDegrees float64) geo.Position {
	return geo.Position{
		Latitude:  from.Latitude + stepDegrees*math.Cos(bearing),
		Longitude: from.Longitude + stepDegrees*math.Sin(bearing),
	}
}
