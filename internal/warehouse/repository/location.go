package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const locationColumns = `id, zone, rack, slot, location_type, capacity, current_occupancy,
	min_temp, max_temp, latest_temperature, last_temp_update, created_at, updated_at`

type locationRepository struct {
	db sqlx.ExtContext
}

func (r *locationRepository) InsertLocation(ctx context.Context, l *domain.StorageLocation) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}

	query := `
		INSERT INTO storage_locations (
			id, zone, rack, slot, location_type, capacity, current_occupancy, min_temp, max_temp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRowxContext(ctx, query,
		l.ID, l.Zone, l.Rack, l.Slot, l.LocationType, l.Capacity, l.CurrentOccupancy,
		l.MinTemp, l.MaxTemp,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
}

func (r *locationRepository) GetLocation(ctx context.Context, id string) (*domain.StorageLocation, error) {
	var l domain.StorageLocation
	query := `SELECT ` + locationColumns + ` FROM storage_locations WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.db, &l, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("location")
		}
		return nil, err
	}
	return &l, nil
}

func (r *locationRepository) ListLocations(ctx context.Context, category domain.StorageCategory) ([]*domain.StorageLocation, error) {
	locations := []*domain.StorageLocation{}
	query := `SELECT ` + locationColumns + ` FROM storage_locations`
	args := []interface{}{}
	if category != "" {
		query += ` WHERE location_type = $1`
		args = append(args, category)
	}
	query += ` ORDER BY zone, rack, slot`

	if err := sqlx.SelectContext(ctx, r.db, &locations, query, args...); err != nil {
		return nil, err
	}
	return locations, nil
}

// FindLocationCandidates does not lock. The winner is claimed later through
// AdjustOccupancy, which rechecks capacity in the same statement.
func (r *locationRepository) FindLocationCandidates(ctx context.Context, category domain.StorageCategory, minFree int) ([]*domain.StorageLocation, error) {
	locations := []*domain.StorageLocation{}
	query := `
		SELECT ` + locationColumns + `
		FROM storage_locations
		WHERE location_type = $1 AND capacity - current_occupancy >= $2
		ORDER BY capacity - current_occupancy DESC, id
	`
	if err := sqlx.SelectContext(ctx, r.db, &locations, query, category, minFree); err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *locationRepository) AdjustOccupancy(ctx context.Context, locationID string, delta int) (bool, error) {
	query := `
		UPDATE storage_locations
		SET current_occupancy = current_occupancy + $2, updated_at = NOW()
		WHERE id = $1
		  AND current_occupancy + $2 >= 0
		  AND current_occupancy + $2 <= capacity
	`
	res, err := r.db.ExecContext(ctx, query, locationID, delta)
	if err != nil {
		return false, err
	}
	return affectedOne(res)
}

func (r *locationRepository) UpdateLatestTemperature(ctx context.Context, locationID string, reading decimal.Decimal, at time.Time) (bool, error) {
	query := `
		UPDATE storage_locations
		SET latest_temperature = $2, last_temp_update = $3, updated_at = NOW()
		WHERE id = $1
		  AND (last_temp_update IS NULL OR last_temp_update <= $3)
	`
	res, err := r.db.ExecContext(ctx, query, locationID, reading, at)
	if err != nil {
		return false, err
	}
	return affectedOne(res)
}

func (r *locationRepository) InsertTemperatureLog(ctx context.Context, log *domain.TemperatureLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}

	query := `
		INSERT INTO temperature_logs (id, location_id, temperature, recorded_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	return r.db.QueryRowxContext(ctx, query, log.ID, log.LocationID, log.Temperature, log.RecordedAt).
		Scan(&log.CreatedAt)
}

func (r *locationRepository) ListTemperatureLogs(ctx context.Context, locationID string, limit int) ([]*domain.TemperatureLog, error) {
	logs := []*domain.TemperatureLog{}
	query := `
		SELECT id, location_id, temperature, recorded_at, created_at
		FROM temperature_logs
		WHERE location_id = $1
		ORDER BY recorded_at DESC, created_at DESC
		LIMIT $2
	`
	if err := sqlx.SelectContext(ctx, r.db, &logs, query, locationID, limit); err != nil {
		return nil, err
	}
	return logs, nil
}
