package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"kickfleet/internal/models"
)

// DeviceStatusStore caches device status read models in redis so the
// status endpoint doesn't hit postgres for every poll. Entries are
// invalidated on every rental transition and telemetry write; the TTL is
// only a backstop.
type DeviceStatusStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDeviceStatusStore returns redis-backed store.
func NewDeviceStatusStore(client *redis.Client, ttl time.Duration) *DeviceStatusStore {
	return &DeviceStatusStore{client: client, ttl: ttl}
}

func (s *DeviceStatusStore) key(deviceCode string) string {
	return fmt.Sprintf("fleet:device:%s:status", deviceCode)
}

// Save caches a status snapshot.
func (s *DeviceStatusStore) Save(ctx context.Context, status models.DeviceStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(status.DeviceCode), data, s.ttl).Err()
}

// Get returns a cached status, redis.Nil when absent.
func (s *DeviceStatusStore) Get(ctx context.Context, deviceCode string) (*models.DeviceStatus, error) {
	result, err := s.client.Get(ctx, s.key(deviceCode)).Result()
	if err != nil {
		return nil, err
	}
	var status models.DeviceStatus
	if err := json.Unmarshal([]byte(result), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Delete drops a cached status.
func (s *DeviceStatusStore) Delete(ctx context.Context, deviceCode string) error {
	return s.client.Del(ctx, s.key(deviceCode)).Err()
}
