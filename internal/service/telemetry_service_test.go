package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"kickfleet/internal/geo"
	"kickfleet/internal/repository"
)

func TestRecordFirstSampleDoesNotDrain(t *testing.T) {
	store := newFakeStore(testDevice("KB-001", 37.5, 127.0))
	svc := NewTelemetryService(store, nil, nil, zap.NewNop())

	_, err := svc.Record(context.Background(), RecordInput{
		DeviceCode: "KB-001",
		UserID:     1,
		Position:   geo.Position{Latitude: 37.5001, Longitude: 127.0001},
		CapturedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}

	device, _ := store.DeviceByCode(context.Background(), "KB-001")
	if device.BatteryLevel != 100 {
		t.Errorf("battery = %v after first sample, want 100", device.BatteryLevel)
	}
	if device.Latitude != 37.5001 {
		t.Errorf("device latitude = %v, want 37.5001", device.Latitude)
	}
}

func TestRecordDrainsByGap(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore(testDevice("KB-001", 37.5, 127.0))
	svc := NewTelemetryService(store, nil, nil, zap.NewNop())

	gaps := []struct {
		at   time.Time
		want float64
	}{
		{base, 100},                             // first sample, no drain
		{base.Add(60 * time.Second), 88},        // 60 s gap: 12%
		{base.Add(90 * time.Second), 82},        // 30 s gap: 6%
		{base.Add(93 * time.Second), 82},        // 3 s gap: below guard, skipped
		{base.Add(20 * time.Minute), 82},        // 18+ min gap: above guard, skipped
		{base.Add(20*time.Minute + 10*time.Second), 80}, // 10 s gap: 2%
	}
	for i, step := range gaps {
		_, err := svc.Record(context.Background(), RecordInput{
			DeviceCode: "KB-001",
			UserID:     1,
			Position:   geo.Position{Latitude: 37.5, Longitude: 127.0},
			CapturedAt: step.at,
		})
		if err != nil {
			t.Fatalf("Record %d error: %v", i, err)
		}
		device, _ := store.DeviceByCode(context.Background(), "KB-001")
		if math.Abs(device.BatteryLevel-step.want) > 1e-9 {
			t.Errorf("after sample %d battery = %v, want %v", i, device.BatteryLevel, step.want)
		}
	}
}

func TestRecordOutOfOrderSampleAcceptedWithoutDrain(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore(testDevice("KB-001", 37.5, 127.0))
	svc := NewTelemetryService(store, nil, nil, zap.NewNop())

	for _, at := range []time.Time{base, base.Add(-time.Minute)} {
		if _, err := svc.Record(context.Background(), RecordInput{
			DeviceCode: "KB-001",
			UserID:     1,
			Position:   geo.Position{Latitude: 37.5, Longitude: 127.0},
			CapturedAt: at,
		}); err != nil {
			t.Fatalf("Record error: %v", err)
		}
	}

	if len(store.samples) != 2 {
		t.Fatalf("stored %d samples, want 2", len(store.samples))
	}
	device, _ := store.DeviceByCode(context.Background(), "KB-001")
	if device.BatteryLevel != 100 {
		t.Errorf("battery = %v, want 100 (negative gap skips drain)", device.BatteryLevel)
	}
}

func TestRecordUnknownDevice(t *testing.T) {
	store := newFakeStore()
	svc := NewTelemetryService(store, nil, nil, zap.NewNop())

	_, err := svc.Record(context.Background(), RecordInput{
		DeviceCode: "KB-404",
		UserID:     1,
		Position:   geo.Position{Latitude: 37.5, Longitude: 127.0},
	})
	if !errors.Is(err, repository.ErrDeviceNotFound) {
		t.Fatalf("Record unknown device = %v, want ErrDeviceNotFound", err)
	}
}

func TestRecordRejectsInvalidPosition(t *testing.T) {
	store := newFakeStore(testDevice("KB-001", 37.5, 127.0))
	svc := NewTelemetryService(store, nil, nil, zap.NewNop())

	_, err := svc.Record(context.Background(), RecordInput{
		DeviceCode: "KB-001",
		UserID:     1,
		Position:   geo.Position{Latitude: 37.5, Longitude: 200},
	})
	if !errors.Is(err, geo.ErrInvalidPosition) {
		t.Fatalf("Record bad position = %v, want ErrInvalidPosition", err)
	}
	if len(store.samples) != 0 {
		t.Error("sample persisted despite validation failure")
	}
}

func TestRecordBroadcastsToFeed(t *testing.T) {
	store := newFakeStore(testDevice("KB-001", 37.5, 127.0))
	feed := &fakeFeed{}
	svc := NewTelemetryService(store, newFakeStatusCache(), feed, zap.NewNop())

	if _, err := svc.Record(context.Background(), RecordInput{
		DeviceCode: "KB-001",
		UserID:     1,
		Position:   geo.Position{Latitude: 37.5, Longitude: 127.0},
	}); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if feed.count() != 1 {
		t.Errorf("feed received %d samples, want 1", feed.count())
	}
}
