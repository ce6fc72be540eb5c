package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"kickfleet/internal/models"
)

// ErrNoSamples indicates a device has no telemetry recorded yet.
var ErrNoSamples = errors.New("no telemetry samples")

// TelemetryRepository persists position samples.
type TelemetryRepository struct {
	db *sql.DB
}

// NewTelemetryRepository returns repository.
func NewTelemetryRepository(db *sql.DB) *TelemetryRepository {
	return &TelemetryRepository{db: db}
}

// RecordSampleParams carries one position report plus the battery drain
// already computed for the gap since the previous sample (zero when the
// gap failed the plausibility guard or no previous sample exists).
type RecordSampleParams struct {
	DeviceCode   string
	UserID       int64
	Latitude     float64
	Longitude    float64
	CapturedAt   time.Time
	BatteryDrain float64
}

// RecordSample appends a sample and moves the device's last known
// position and battery in one transaction; either both land or neither
// does. Unknown devices fail with ErrDeviceNotFound before any write
// sticks.
func (r *TelemetryRepository) RecordSample(ctx context.Context, arg RecordSampleParams) (*models.TelemetrySample, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	const touch = `
		UPDATE devices
		SET latitude = $2,
		    longitude = $3,
		    battery_level = GREATEST(battery_level - $4, 0),
		    last_updated = $5
		WHERE device_code = $1
	`
	result, err := tx.ExecContext(ctx, touch,
		arg.DeviceCode,
		arg.Latitude,
		arg.Longitude,
		arg.BatteryDrain,
		arg.CapturedAt,
	)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrDeviceNotFound
	}

	const insert = `
		INSERT INTO telemetry_samples (device_code, user_id, latitude, longitude, captured_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	sample := &models.TelemetrySample{
		DeviceCode: arg.DeviceCode,
		UserID:     arg.UserID,
		Latitude:   arg.Latitude,
		Longitude:  arg.Longitude,
		CapturedAt: arg.CapturedAt,
	}
	if err := tx.QueryRowContext(ctx, insert,
		arg.DeviceCode,
		arg.UserID,
		arg.Latitude,
		arg.Longitude,
		arg.CapturedAt,
	).Scan(&sample.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return sample, nil
}

// LastSample returns the most recent sample for a device.
func (r *TelemetryRepository) LastSample(ctx context.Context, deviceCode string) (*models.TelemetrySample, error) {
	const query = `
		SELECT id, device_code, user_id, latitude, longitude, captured_at
		FROM telemetry_samples
		WHERE device_code = $1
		ORDER BY captured_at DESC
		LIMIT 1
	`
	var s models.TelemetrySample
	err := r.db.QueryRowContext(ctx, query, deviceCode).Scan(
		&s.ID,
		&s.DeviceCode,
		&s.UserID,
		&s.Latitude,
		&s.Longitude,
		&s.CapturedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSamples
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SamplesInWindow returns samples captured inside [from, to], excluding
// one user's own rows, oldest first. The violation matcher feeds on this.
func (r *TelemetryRepository) SamplesInWindow(ctx context.Context, from, to time.Time, excludeUserID int64) ([]models.TelemetrySample, error) {
	const query = `
		SELECT id, device_code, user_id, latitude, longitude, captured_at
		FROM telemetry_samples
		WHERE captured_at BETWEEN $1 AND $2
		  AND user_id <> $3
		ORDER BY captured_at
	`
	rows, err := r.db.QueryContext(ctx, query, from, to, excludeUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []models.TelemetrySample
	for rows.Next() {
		var s models.TelemetrySample
		if err := rows.Scan(
			&s.ID,
			&s.DeviceCode,
			&s.UserID,
			&s.Latitude,
			&s.Longitude,
			&s.CapturedAt,
		); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}
