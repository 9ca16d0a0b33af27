package service

import (
	"context"
	"time"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/internal/warehouse/engine"
	"github.com/frostvault/frostvault-backend/internal/warehouse/events"
	"github.com/frostvault/frostvault-backend/pkg/config"
	"github.com/frostvault/frostvault-backend/pkg/logger"
)

// Settings holds the warehouse policy knobs
type Settings struct {
	Allocation        engine.AllocationPolicy
	ExpiryWindowDays  int
	LowStockThreshold int
	StaleReadingAfter time.Duration
}

// DefaultSettings mirrors the configuration defaults
func DefaultSettings() Settings {
	return Settings{
		Allocation:        engine.DefaultAllocationPolicy(),
		ExpiryWindowDays:  30,
		LowStockThreshold: 10,
		StaleReadingAfter: time.Hour,
	}
}

// SettingsFromConfig converts the loaded warehouse configuration
func SettingsFromConfig(cfg config.WarehouseConfig) Settings {
	return Settings{
		Allocation:        engine.AllocationPolicy{AcceptUnreadColdStorage: cfg.AcceptUnreadColdStorage},
		ExpiryWindowDays:  cfg.ExpiryWindowDays,
		LowStockThreshold: cfg.LowStockThreshold,
		StaleReadingAfter: cfg.StaleReadingAfter,
	}
}

// WarehouseService runs intake, fulfillment and alerting against a Store.
// Every mutating operation is one unit of work; events go out after commit.
type WarehouseService struct {
	store     domain.Store
	publisher *events.WarehouseEventPublisher
	feed      *events.LiveFeed
	settings  Settings
	logger    *logger.Logger
	now       func() time.Time
}

// NewWarehouseService creates a new warehouse service. publisher and feed may be nil.
func NewWarehouseService(
	store domain.Store,
	publisher *events.WarehouseEventPublisher,
	feed *events.LiveFeed,
	settings Settings,
	log *logger.Logger,
) *WarehouseService {
	return &WarehouseService{
		store:     store,
		publisher: publisher,
		feed:      feed,
		settings:  settings,
		logger:    log.WithComponent("warehouse-service"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the service clock
func (s *WarehouseService) SetClock(now func() time.Time) {
	s.now = now
}

// read runs fn in a unit of work that makes no writes
func (s *WarehouseService) read(ctx context.Context, fn func(ctx context.Context, tx domain.Tx) error) error {
	return s.store.Transact(ctx, fn)
}
