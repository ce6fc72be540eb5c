package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"kickfleet/internal/geo"
	"kickfleet/internal/models"
	"kickfleet/internal/repository"
)

func TestDeviceStatusIncludesActiveRental(t *testing.T) {
	store := newFakeStore(testDevice("KB-001", 37.5, 127.0))
	rentalSvc := newRentalService(store, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	if _, err := rentalSvc.Start(context.Background(), StartRentalInput{
		UserID:     7,
		DeviceCode: "KB-001",
		Position:   geo.Position{Latitude: 37.5, Longitude: 127.0},
	}); err != nil {
		t.Fatalf("Start error: %v", err)
	}

	svc := NewFleetService(store, store, newFakeStatusCache(), zap.NewNop())
	status, err := svc.DeviceStatus(context.Background(), "KB-001")
	if err != nil {
		t.Fatalf("DeviceStatus error: %v", err)
	}
	if !status.IsUsed {
		t.Error("status.IsUsed = false, want true")
	}
	if status.ActiveRental == nil {
		t.Fatal("status.ActiveRental = nil, want summary")
	}
	if status.ActiveRental.UserID != 7 {
		t.Errorf("active rental user = %d, want 7", status.ActiveRental.UserID)
	}
}

func TestDeviceStatusUnknownDevice(t *testing.T) {
	svc := NewFleetService(newFakeStore(), newFakeStore(), nil, zap.NewNop())
	_, err := svc.DeviceStatus(context.Background(), "KB-404")
	if !errors.Is(err, repository.ErrDeviceNotFound) {
		t.Fatalf("DeviceStatus unknown = %v, want ErrDeviceNotFound", err)
	}
}

func TestDeviceStatusServedFromCache(t *testing.T) {
	cache := newFakeStatusCache()
	cached := models.DeviceStatus{DeviceCode: "KB-001", BatteryLevel: 42}
	if err := cache.Save(context.Background(), cached); err != nil {
		t.Fatalf("cache seed error: %v", err)
	}

	// Empty store: a hit below proves the store was never consulted.
	svc := NewFleetService(newFakeStore(), newFakeStore(), cache, zap.NewNop())
	status, err := svc.DeviceStatus(context.Background(), "KB-001")
	if err != nil {
		t.Fatalf("DeviceStatus error: %v", err)
	}
	if status.BatteryLevel != 42 {
		t.Errorf("battery = %v, want cached 42", status.BatteryLevel)
	}
}

func TestSnapshotCounts(t *testing.T) {
	rented := testDevice("KB-002", 37.5, 127.0)
	rented.IsUsed = true
	low := testDevice("KB-003", 37.5, 127.0)
	low.BatteryLevel = 12

	store := newFakeStore(testDevice("KB-001", 37.5, 127.0), rented, low)
	svc := NewFleetService(store, store, nil, zap.NewNop())

	snap, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	if snap.TotalDevices != 3 || snap.AvailableDevices != 2 || snap.InUseDevices != 1 || snap.LowBatteryDevices != 1 {
		t.Errorf("snapshot = %+v, want 3 total, 2 available, 1 in use, 1 low battery", snap)
	}
}
