package service

import (
	"context"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/internal/warehouse/engine"
)

func (s *WarehouseService) allBatches(ctx context.Context) ([]*domain.Batch, error) {
	var batches []*domain.Batch
	err := s.read(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		batches, err = tx.ListBatches(ctx)
		return err
	})
	return batches, err
}

// ExpiryAlerts lists expired and soon-to-expire stock
func (s *WarehouseService) ExpiryAlerts(ctx context.Context) (*engine.ExpiryAlerts, error) {
	batches, err := s.allBatches(ctx)
	if err != nil {
		return nil, err
	}
	alerts := engine.EvaluateExpiry(batches, s.now(), s.settings.ExpiryWindowDays)
	return &alerts, nil
}

// StockAlerts lists low and empty batches
func (s *WarehouseService) StockAlerts(ctx context.Context) (*engine.StockAlerts, error) {
	batches, err := s.allBatches(ctx)
	if err != nil {
		return nil, err
	}
	alerts := engine.EvaluateStock(batches, s.settings.LowStockThreshold)
	return &alerts, nil
}

// TemperatureAlerts lists cold storage locations that are not compliant
func (s *WarehouseService) TemperatureAlerts(ctx context.Context) ([]engine.TemperatureAlert, error) {
	var locations []*domain.StorageLocation
	err := s.read(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		locations, err = tx.ListLocations(ctx, domain.CategoryColdStorage)
		return err
	})
	if err != nil {
		return nil, err
	}
	return engine.EvaluateTemperature(locations, s.now(), s.settings.StaleReadingAfter), nil
}
