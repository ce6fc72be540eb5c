package service

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"kickfleet/internal/models"
	"kickfleet/internal/repository"
)

// fakeStore backs the service tests with in-memory tables that mirror the
// repository semantics: conditional device claim, conditional close,
// append-only samples.
type fakeStore struct {
	mu           sync.Mutex
	devices      map[string]*models.Device
	rentals      []*models.Rental
	samples      []models.TelemetrySample
	nextRentalID int64
	nextSampleID int64
}

func newFakeStore(devices ...models.Device) *fakeStore {
	s := &fakeStore{devices: make(map[string]*models.Device)}
	for i := range devices {
		d := devices[i]
		s.devices[d.DeviceCode] = &d
	}
	return s
}

func (s *fakeStore) DeviceByCode(_ context.Context, deviceCode string) (*models.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[deviceCode]
	if !ok {
		return nil, repository.ErrDeviceNotFound
	}
	copied := *d
	return &copied, nil
}

func (s *fakeStore) ListDevices(context.Context) ([]models.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Device
	for _, d := range s.devices {
		out = append(out, *d)
	}
	return out, nil
}

func (s *fakeStore) ListAvailable(_ context.Context, limit int) ([]models.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Device
	for _, d := range s.devices {
		if !d.IsUsed && len(out) < limit {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s *fakeStore) Snapshot(_ context.Context, lowBatteryBelow float64) (*models.FleetSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := &models.FleetSnapshot{}
	for _, d := range s.devices {
		snap.TotalDevices++
		if d.IsUsed {
			snap.InUseDevices++
		} else {
			snap.AvailableDevices++
		}
		if d.BatteryLevel < lowBatteryBelow {
			snap.LowBatteryDevices++
		}
	}
	return snap, nil
}

func (s *fakeStore) CreateRental(_ context.Context, arg repository.CreateRentalParams) (*models.Rental, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[arg.DeviceCode]
	if !ok {
		return nil, repository.ErrDeviceNotFound
	}
	if d.IsUsed {
		return nil, repository.ErrDeviceInUse
	}
	d.IsUsed = true
	s.nextRentalID++
	rental := &models.Rental{
		ID:             s.nextRentalID,
		UserID:         arg.UserID,
		DeviceCode:     arg.DeviceCode,
		IdempotencyKey: arg.IdempotencyKey,
		StartLatitude:  d.Latitude,
		StartLongitude: d.Longitude,
		StartTime:      arg.StartTime,
	}
	s.rentals = append(s.rentals, rental)
	return rental, nil
}

func (s *fakeStore) CloseRental(_ context.Context, arg repository.CloseRentalParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rentals {
		if r.ID == arg.RentalID && r.EndTime == nil {
			end := arg.EndTime
			r.EndTime = &end
			r.EndLatitude = &arg.EndLatitude
			r.EndLongitude = &arg.EndLongitude
			r.Fee = &arg.Fee
			r.DistanceMeters = &arg.DistanceMeters
			if d, ok := s.devices[arg.DeviceCode]; ok {
				d.IsUsed = false
				d.Latitude = arg.EndLatitude
				d.Longitude = arg.EndLongitude
				d.LastUpdated = arg.EndTime
			}
			return nil
		}
	}
	return repository.ErrNoOpenRental
}

func (s *fakeStore) OpenRental(_ context.Context, userID int64, deviceCode string) (*models.Rental, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.rentals) - 1; i >= 0; i-- {
		r := s.rentals[i]
		if r.UserID == userID && r.DeviceCode == deviceCode && r.EndTime == nil {
			copied := *r
			return &copied, nil
		}
	}
	return nil, repository.ErrNoOpenRental
}

func (s *fakeStore) OpenRentalByDevice(_ context.Context, deviceCode string) (*models.Rental, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.rentals) - 1; i >= 0; i-- {
		r := s.rentals[i]
		if r.DeviceCode == deviceCode && r.EndTime == nil {
			copied := *r
			return &copied, nil
		}
	}
	return nil, repository.ErrNoOpenRental
}

func (s *fakeStore) RentalByIdempotencyKey(_ context.Context, key string) (*models.Rental, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rentals {
		if r.IdempotencyKey == key {
			copied := *r
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) ListByUser(_ context.Context, userID int64, limit int) ([]models.Rental, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Rental
	for i := len(s.rentals) - 1; i >= 0 && len(out) < limit; i-- {
		if s.rentals[i].UserID == userID {
			out = append(out, *s.rentals[i])
		}
	}
	return out, nil
}

func (s *fakeStore) RecordSample(_ context.Context, arg repository.RecordSampleParams) (*models.TelemetrySample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[arg.DeviceCode]
	if !ok {
		return nil, repository.ErrDeviceNotFound
	}
	d.Latitude = arg.Latitude
	d.Longitude = arg.Longitude
	d.LastUpdated = arg.CapturedAt
	d.BatteryLevel -= arg.BatteryDrain
	if d.BatteryLevel < 0 {
		d.BatteryLevel = 0
	}
	s.nextSampleID++
	sample := models.TelemetrySample{
		ID:         s.nextSampleID,
		DeviceCode: arg.DeviceCode,
		UserID:     arg.UserID,
		Latitude:   arg.Latitude,
		Longitude:  arg.Longitude,
		CapturedAt: arg.CapturedAt,
	}
	s.samples = append(s.samples, sample)
	return &sample, nil
}

func (s *fakeStore) LastSample(_ context.Context, deviceCode string) (*models.TelemetrySample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.samples) - 1; i >= 0; i-- {
		if s.samples[i].DeviceCode == deviceCode {
			copied := s.samples[i]
			return &copied, nil
		}
	}
	return nil, repository.ErrNoSamples
}

func (s *fakeStore) SamplesInWindow(_ context.Context, from, to time.Time, excludeUserID int64) ([]models.TelemetrySample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.TelemetrySample
	for _, sample := range s.samples {
		if sample.UserID == excludeUserID {
			continue
		}
		if sample.CapturedAt.Before(from) || sample.CapturedAt.After(to) {
			continue
		}
		out = append(out, sample)
	}
	return out, nil
}

// fakeStatusCache records cache traffic for assertions.
type fakeStatusCache struct {
	mu      sync.Mutex
	entries map[string]models.DeviceStatus
}

func newFakeStatusCache() *fakeStatusCache {
	return &fakeStatusCache{entries: make(map[string]models.DeviceStatus)}
}

func (c *fakeStatusCache) Save(_ context.Context, status models.DeviceStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[status.DeviceCode] = status
	return nil
}

func (c *fakeStatusCache) Get(_ context.Context, deviceCode string) (*models.DeviceStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	status, ok := c.entries[deviceCode]
	if !ok {
		return nil, redis.Nil
	}
	return &status, nil
}

func (c *fakeStatusCache) Delete(_ context.Context, deviceCode string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, deviceCode)
	return nil
}

// fakeFeed records broadcast samples.
type fakeFeed struct {
	mu      sync.Mutex
	samples []models.TelemetrySample
}

func (f *fakeFeed) Broadcast(sample models.TelemetrySample) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.samples = append(f.samples, sample)
}

func (f *fakeFeed) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.samples)
}
