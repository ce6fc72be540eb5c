package repository

import (
	"context"
	"database/sql"
	"errors"

	"kickfleet/internal/models"
)

// ErrDeviceNotFound indicates an unknown device code.
var ErrDeviceNotFound = errors.New("device not found")

// DeviceRepository handles persistence of fleet devices.
type DeviceRepository struct {
	db *sql.DB
}

// NewDeviceRepository returns repository.
func NewDeviceRepository(db *sql.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// DeviceByCode returns a single device.
func (r *DeviceRepository) DeviceByCode(ctx context.Context, deviceCode string) (*models.Device, error) {
	const query = `
		SELECT id, device_code, latitude, longitude, battery_level, is_used, last_updated
		FROM devices
		WHERE device_code = $1
	`
	var d models.Device
	err := r.db.QueryRowContext(ctx, query, deviceCode).Scan(
		&d.ID,
		&d.DeviceCode,
		&d.Latitude,
		&d.Longitude,
		&d.BatteryLevel,
		&d.IsUsed,
		&d.LastUpdated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDeviceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDevices returns the whole fleet ordered by device code.
func (r *DeviceRepository) ListDevices(ctx context.Context) ([]models.Device, error) {
	const query = `
		SELECT id, device_code, latitude, longitude, battery_level, is_used, last_updated
		FROM devices
		ORDER BY device_code
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDevices(rows)
}

// ListAvailable returns up to limit devices that are not rented, the pool
// the simulator picks rides from.
func (r *DeviceRepository) ListAvailable(ctx context.Context, limit int) ([]models.Device, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT id, device_code, latitude, longitude, battery_level, is_used, last_updated
		FROM devices
		WHERE NOT is_used
		ORDER BY random()
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDevices(rows)
}

// Snapshot aggregates fleet-wide availability counts in one pass.
func (r *DeviceRepository) Snapshot(ctx context.Context, lowBatteryBelow float64) (*models.FleetSnapshot, error) {
	const query = `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE NOT is_used),
			COUNT(*) FILTER (WHERE is_used),
			COUNT(*) FILTER (WHERE battery_level < $1)
		FROM devices
	`
	var snap models.FleetSnapshot
	err := r.db.QueryRowContext(ctx, query, lowBatteryBelow).Scan(
		&snap.TotalDevices,
		&snap.AvailableDevices,
		&snap.InUseDevices,
		&snap.LowBatteryDevices,
	)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func scanDevices(rows *sql.Rows) ([]models.Device, error) {
	var devices []models.Device
	for rows.Next() {
		var d models.Device
		if err := rows.Scan(
			&d.ID,
			&d.DeviceCode,
			&d.Latitude,
			&d.Longitude,
			&d.BatteryLevel,
			&d.IsUsed,
			&d.LastUpdated,
		); err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return devices, nil
}
