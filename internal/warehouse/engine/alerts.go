package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
)

// ExpiryAlerts groups available stock by expiry state
type ExpiryAlerts struct {
	Expired      []*domain.Batch `json:"expired"`
	ExpiringSoon []*domain.Batch `json:"expiring_soon"`
}

// EvaluateExpiry reports available batches with stock that expired before
// today, and those expiring within windowDays of today. Both lists are
// ordered by ascending expiry.
func EvaluateExpiry(batches []*domain.Batch, now time.Time, windowDays int) ExpiryAlerts {
	today := domain.Day(now)
	horizon := today.AddDate(0, 0, windowDays)

	alerts := ExpiryAlerts{
		Expired:      []*domain.Batch{},
		ExpiringSoon: []*domain.Batch{},
	}
	for _, b := range batches {
		if b.Status != domain.BatchAvailable || b.Quantity <= 0 {
			continue
		}
		expiry := domain.Day(b.ExpiryDate)
		switch {
		case expiry.Before(today):
			alerts.Expired = append(alerts.Expired, b)
		case !expiry.After(horizon):
			alerts.ExpiringSoon = append(alerts.ExpiringSoon, b)
		}
	}

	SortFEFO(alerts.Expired)
	SortFEFO(alerts.ExpiringSoon)
	return alerts
}

// StockAlerts groups available batches by stock level
type StockAlerts struct {
	LowStock   []*domain.Batch `json:"low_stock"`
	OutOfStock []*domain.Batch `json:"out_of_stock"`
}

// EvaluateStock reports available batches holding between 1 and threshold
// units (ascending by quantity) and those holding none.
func EvaluateStock(batches []*domain.Batch, threshold int) StockAlerts {
	alerts := StockAlerts{
		LowStock:   []*domain.Batch{},
		OutOfStock: []*domain.Batch{},
	}
	for _, b := range batches {
		if b.Status != domain.BatchAvailable {
			continue
		}
		switch {
		case b.Quantity <= 0:
			alerts.OutOfStock = append(alerts.OutOfStock, b)
		case b.Quantity <= threshold:
			alerts.LowStock = append(alerts.LowStock, b)
		}
	}

	sort.SliceStable(alerts.LowStock, func(i, j int) bool {
		return alerts.LowStock[i].Quantity < alerts.LowStock[j].Quantity
	})
	return alerts
}

// TemperatureCondition classifies a cold storage location's readings
type TemperatureCondition string

const (
	ConditionNoReadings      TemperatureCondition = "no_readings"
	ConditionLowTemperature  TemperatureCondition = "low_temperature"
	ConditionHighTemperature TemperatureCondition = "high_temperature"
	ConditionStaleReading    TemperatureCondition = "stale_reading"
)

// TemperatureAlert reports one non-compliant cold storage location
type TemperatureAlert struct {
	Location  *domain.StorageLocation `json:"location"`
	Condition TemperatureCondition    `json:"condition"`
	Message   string                  `json:"message"`
}

// ClassifyTemperature returns the highest-priority condition for a cold
// storage location, or "" when it is compliant. Priority is no readings, then
// low, then high, then stale.
func ClassifyTemperature(loc *domain.StorageLocation, now time.Time, staleAfter time.Duration) TemperatureCondition {
	if !loc.LatestTemperature.Valid || loc.LastTempUpdate == nil {
		return ConditionNoReadings
	}
	reading := loc.LatestTemperature.Decimal
	if loc.MinTemp.Valid && reading.LessThan(loc.MinTemp.Decimal) {
		return ConditionLowTemperature
	}
	if loc.MaxTemp.Valid && reading.GreaterThan(loc.MaxTemp.Decimal) {
		return ConditionHighTemperature
	}
	if now.Sub(*loc.LastTempUpdate) > staleAfter {
		return ConditionStaleReading
	}
	return ""
}

// EvaluateTemperature classifies every cold storage location and reports the
// non-compliant ones. Ambient locations are ignored.
func EvaluateTemperature(locations []*domain.StorageLocation, now time.Time, staleAfter time.Duration) []TemperatureAlert {
	alerts := []TemperatureAlert{}
	for _, loc := range locations {
		if loc.LocationType != domain.CategoryColdStorage {
			continue
		}
		cond := ClassifyTemperature(loc, now, staleAfter)
		if cond == "" {
			continue
		}
		alerts = append(alerts, TemperatureAlert{
			Location:  loc,
			Condition: cond,
			Message:   temperatureMessage(loc, cond),
		})
	}
	return alerts
}

func temperatureMessage(loc *domain.StorageLocation, cond TemperatureCondition) string {
	name := fmt.Sprintf("%s-%s-%s", loc.Zone, loc.Rack, loc.Slot)
	switch cond {
	case ConditionNoReadings:
		return fmt.Sprintf("No temperature readings for %s.", name)
	case ConditionLowTemperature:
		return fmt.Sprintf("Temperature at %s is %s, below minimum %s.",
			name, loc.LatestTemperature.Decimal.String(), loc.MinTemp.Decimal.String())
	case ConditionHighTemperature:
		return fmt.Sprintf("Temperature at %s is %s, above maximum %s.",
			name, loc.LatestTemperature.Decimal.String(), loc.MaxTemp.Decimal.String())
	default:
		return fmt.Sprintf("Last temperature reading at %s is stale.", name)
	}
}
