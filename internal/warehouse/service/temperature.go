package service

import (
	"context"
	"time"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	defaultTemperatureLogLimit = 100
	maxTemperatureLogLimit     = 1000
)

// temperatureBound is the exclusive magnitude limit of a NUMERIC(5,2) reading
var temperatureBound = decimal.NewFromInt(1000)

// LogTemperatureInput is one sensor reading. A nil RecordedAt means now.
type LogTemperatureInput struct {
	LocationID  string
	Temperature decimal.Decimal
	RecordedAt  *time.Time
}

// LogTemperature appends a reading to a cold storage location's history and
// refreshes its cached latest reading. A reading older than the cached one is
// kept in the history only.
func (s *WarehouseService) LogTemperature(ctx context.Context, in LogTemperatureInput) (*domain.TemperatureLog, error) {
	if in.LocationID == "" {
		return nil, errors.Validation(map[string]string{"location_id": "this field is required"})
	}

	if in.Temperature.Round(2).Abs().GreaterThanOrEqual(temperatureBound) {
		return nil, errors.Validation(map[string]string{"temperature": "must be between -999.99 and 999.99"})
	}

	entry := &domain.TemperatureLog{
		LocationID:  in.LocationID,
		Temperature: in.Temperature.Round(2),
		RecordedAt:  s.now(),
	}
	if in.RecordedAt != nil {
		entry.RecordedAt = in.RecordedAt.UTC()
	}

	var (
		loc     *domain.StorageLocation
		current bool
	)
	err := s.store.Transact(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		loc, err = tx.GetLocation(ctx, in.LocationID)
		if err != nil {
			return err
		}
		if loc.LocationType != domain.CategoryColdStorage {
			return errors.BadRequest("temperature readings are only accepted for cold storage locations")
		}

		if err := tx.InsertTemperatureLog(ctx, entry); err != nil {
			return err
		}

		current, err = tx.UpdateLatestTemperature(ctx, loc.ID, entry.Temperature, entry.RecordedAt)
		if err != nil || !current {
			return err
		}
		loc.LatestTemperature = decimal.NewNullDecimal(entry.Temperature)
		at := entry.RecordedAt
		loc.LastTempUpdate = &at
		return nil
	})
	if err != nil {
		return nil, err
	}

	inRange := loc.InRange(entry.Temperature)
	if !inRange {
		s.logger.Warn().
			Str("location_id", loc.ID).
			Str("temperature", entry.Temperature.String()).
			Msg("temperature outside location bounds")
	}
	s.publisher.PublishTemperatureLogged(ctx, entry, inRange)
	s.feed.PublishReading(ctx, loc, entry, current)

	return entry, nil
}

// ListTemperatureLogs returns a location's readings, newest first.
// limit falls back to 100 and is capped at 1000.
func (s *WarehouseService) ListTemperatureLogs(ctx context.Context, locationID string, limit int) ([]*domain.TemperatureLog, error) {
	if limit <= 0 {
		limit = defaultTemperatureLogLimit
	}
	if limit > maxTemperatureLogLimit {
		limit = maxTemperatureLogLimit
	}

	var logs []*domain.TemperatureLog
	err := s.read(ctx, func(ctx context.Context, tx domain.Tx) error {
		if _, err := tx.GetLocation(ctx, locationID); err != nil {
			return err
		}
		var err error
		logs, err = tx.ListTemperatureLogs(ctx, locationID, limit)
		return err
	})
	return logs, err
}
