package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"kickfleet/internal/models"
)

var (
	// ErrDeviceInUse indicates the device already has an open rental.
	ErrDeviceInUse = errors.New("device already rented")
	// ErrNoOpenRental indicates there is no open rental to close or inspect.
	ErrNoOpenRental = errors.New("no open rental")
)

// RentalRepository handles persistence of rental sessions.
type RentalRepository struct {
	db *sql.DB
}

// NewRentalRepository returns repository.
func NewRentalRepository(db *sql.DB) *RentalRepository {
	return &RentalRepository{db: db}
}

// CreateRentalParams carries everything needed to open a rental.
type CreateRentalParams struct {
	UserID         int64
	DeviceCode     string
	IdempotencyKey string
	StartTime      time.Time
}

// CreateRental claims the device and opens a rental in one transaction.
// The claim is a conditional update on is_used, so two concurrent starts
// on the same device cannot both succeed. The rental's start position is
// read from the device row inside the same transaction; the device's
// stored location is the canonical start point.
func (r *RentalRepository) CreateRental(ctx context.Context, arg CreateRentalParams) (*models.Rental, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	const claim = `
		UPDATE devices
		SET is_used = TRUE
		WHERE device_code = $1 AND NOT is_used
	`
	result, err := tx.ExecContext(ctx, claim, arg.DeviceCode)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrDeviceInUse
	}

	const insert = `
		INSERT INTO rentals (user_id, device_code, idempotency_key, start_latitude, start_longitude, start_time)
		SELECT $1, d.device_code, $3, d.latitude, d.longitude, $4
		FROM devices d
		WHERE d.device_code = $2
		RETURNING id, start_latitude, start_longitude
	`
	rental := &models.Rental{
		UserID:         arg.UserID,
		DeviceCode:     arg.DeviceCode,
		IdempotencyKey: arg.IdempotencyKey,
		StartTime:      arg.StartTime,
	}
	err = tx.QueryRowContext(ctx, insert,
		arg.UserID,
		arg.DeviceCode,
		nullString(arg.IdempotencyKey),
		arg.StartTime,
	).Scan(&rental.ID, &rental.StartLatitude, &rental.StartLongitude)
	if err != nil {
		return nil, fmt.Errorf("create rental: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return rental, nil
}

// CloseRentalParams carries the settlement computed for a finished ride.
type CloseRentalParams struct {
	RentalID       int64
	DeviceCode     string
	EndTime        time.Time
	EndLatitude    float64
	EndLongitude   float64
	Fee            int64
	DistanceMeters int64
}

// CloseRental finalizes a rental and releases its device in one
// transaction. The update targets the open row only; a second concurrent
// close sees zero rows affected and fails with ErrNoOpenRental, leaving
// fee and distance untouched after the first close.
func (r *RentalRepository) CloseRental(ctx context.Context, arg CloseRentalParams) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const settle = `
		UPDATE rentals
		SET end_time = $2,
		    end_latitude = $3,
		    end_longitude = $4,
		    fee = $5,
		    distance_meters = $6
		WHERE id = $1 AND end_time IS NULL
	`
	result, err := tx.ExecContext(ctx, settle,
		arg.RentalID,
		arg.EndTime,
		arg.EndLatitude,
		arg.EndLongitude,
		arg.Fee,
		arg.DistanceMeters,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNoOpenRental
	}

	const release = `
		UPDATE devices
		SET is_used = FALSE,
		    latitude = $2,
		    longitude = $3,
		    last_updated = $4
		WHERE device_code = $1
	`
	if _, err := tx.ExecContext(ctx, release,
		arg.DeviceCode,
		arg.EndLatitude,
		arg.EndLongitude,
		arg.EndTime,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// OpenRental returns the open rental for a user/device pair.
func (r *RentalRepository) OpenRental(ctx context.Context, userID int64, deviceCode string) (*models.Rental, error) {
	const query = `
		SELECT id, user_id, device_code, COALESCE(idempotency_key, ''), start_latitude, start_longitude, start_time
		FROM rentals
		WHERE user_id = $1 AND device_code = $2 AND end_time IS NULL
		ORDER BY start_time DESC
		LIMIT 1
	`
	return r.scanOpen(r.db.QueryRowContext(ctx, query, userID, deviceCode))
}

// OpenRentalByDevice returns the open rental on a device regardless of
// rider, used for device status responses.
func (r *RentalRepository) OpenRentalByDevice(ctx context.Context, deviceCode string) (*models.Rental, error) {
	const query = `
		SELECT id, user_id, device_code, COALESCE(idempotency_key, ''), start_latitude, start_longitude, start_time
		FROM rentals
		WHERE device_code = $1 AND end_time IS NULL
		ORDER BY start_time DESC
		LIMIT 1
	`
	return r.scanOpen(r.db.QueryRowContext(ctx, query, deviceCode))
}

// RentalByIdempotencyKey returns the rental opened under the given key,
// or nil when the key has never been used.
func (r *RentalRepository) RentalByIdempotencyKey(ctx context.Context, key string) (*models.Rental, error) {
	const query = `
		SELECT id, user_id, device_code, COALESCE(idempotency_key, ''), start_latitude, start_longitude, start_time
		FROM rentals
		WHERE idempotency_key = $1
		LIMIT 1
	`
	rental, err := r.scanOpen(r.db.QueryRowContext(ctx, query, key))
	if errors.Is(err, ErrNoOpenRental) {
		return nil, nil
	}
	return rental, err
}

// ListByUser returns the user's last rentals, newest first.
func (r *RentalRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]models.Rental, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT id, user_id, device_code, COALESCE(idempotency_key, ''), start_latitude, start_longitude,
		       end_latitude, end_longitude, start_time, end_time, fee, distance_meters
		FROM rentals
		WHERE user_id = $1
		ORDER BY start_time DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rentals []models.Rental
	for rows.Next() {
		var rental models.Rental
		if err := rows.Scan(
			&rental.ID,
			&rental.UserID,
			&rental.DeviceCode,
			&rental.IdempotencyKey,
			&rental.StartLatitude,
			&rental.StartLongitude,
			&rental.EndLatitude,
			&rental.EndLongitude,
			&rental.StartTime,
			&rental.EndTime,
			&rental.Fee,
			&rental.DistanceMeters,
		); err != nil {
			return nil, err
		}
		rentals = append(rentals, rental)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rentals, nil
}

func (r *RentalRepository) scanOpen(row *sql.Row) (*models.Rental, error) {
	var rental models.Rental
	err := row.Scan(
		&rental.ID,
		&rental.UserID,
		&rental.DeviceCode,
		&rental.IdempotencyKey,
		&rental.StartLatitude,
		&rental.StartLongitude,
		&rental.StartTime,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoOpenRental
	}
	if err != nil {
		return nil, err
	}
	return &rental, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
