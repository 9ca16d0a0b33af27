// Package engine contains the side-effect free warehouse rules: location
// selection, FEFO depletion planning, alert derivation and barcode checks.
package engine

import (
	"sort"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/pkg/errors"
)

// AllocationPolicy tunes location selection
type AllocationPolicy struct {
	// AcceptUnreadColdStorage lets a cold location that has never reported a
	// temperature receive stock.
	AcceptUnreadColdStorage bool
}

// DefaultAllocationPolicy accepts unread cold storage
func DefaultAllocationPolicy() AllocationPolicy {
	return AllocationPolicy{AcceptUnreadColdStorage: true}
}

// EligibleLocations returns, best first, every candidate that may receive
// quantity units of a product in category.
//
// Candidates of another type or without enough free capacity are dropped. The
// rest are ordered by free capacity, largest first, with ties kept in input
// order. For cold storage a candidate also needs its latest reading inside
// [min_temp, max_temp], or no reading at all when the policy allows it.
func EligibleLocations(candidates []*domain.StorageLocation, category domain.StorageCategory, quantity int, policy AllocationPolicy) []*domain.StorageLocation {
	fits := make([]*domain.StorageLocation, 0, len(candidates))
	for _, loc := range candidates {
		if loc.LocationType != category || loc.FreeCapacity() < quantity {
			continue
		}
		fits = append(fits, loc)
	}

	sort.SliceStable(fits, func(i, j int) bool {
		return fits[i].FreeCapacity() > fits[j].FreeCapacity()
	})

	if category != domain.CategoryColdStorage {
		return fits
	}

	eligible := fits[:0]
	for _, loc := range fits {
		if acceptsColdStock(loc, policy) {
			eligible = append(eligible, loc)
		}
	}
	return eligible
}

func acceptsColdStock(loc *domain.StorageLocation, policy AllocationPolicy) bool {
	if !loc.LatestTemperature.Valid {
		return policy.AcceptUnreadColdStorage
	}
	return loc.InRange(loc.LatestTemperature.Decimal)
}

// Allocate picks the single best location, or a NoSuitableLocation error
func Allocate(candidates []*domain.StorageLocation, category domain.StorageCategory, quantity int, policy AllocationPolicy) (*domain.StorageLocation, error) {
	eligible := EligibleLocations(candidates, category, quantity, policy)
	if len(eligible) == 0 {
		return nil, errors.NoSuitableLocation(string(category), quantity)
	}
	return eligible[0], nil
}
