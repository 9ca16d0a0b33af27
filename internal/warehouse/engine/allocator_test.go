package engine_test

import (
	"testing"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/internal/warehouse/engine"
	"github.com/frostvault/frostvault-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(locs []*domain.StorageLocation) []string {
	out := make([]string, len(locs))
	for i, l := range locs {
		out[i] = l.ID
	}
	return out
}

func TestAllocate_AmbientPicksMostFree(t *testing.T) {
	candidates := []*domain.StorageLocation{
		ambient("small", 50, 40),
		ambient("large", 100, 10),
		ambient("medium", 60, 10),
	}

	loc, err := engine.Allocate(candidates, domain.CategoryAmbient, 5, engine.DefaultAllocationPolicy())
	require.NoError(t, err)
	assert.Equal(t, "large", loc.ID)
}

func TestEligibleLocations_FiltersTypeAndCapacity(t *testing.T) {
	candidates := []*domain.StorageLocation{
		ambient("tight", 20, 15),
		cold("cold", 100, 0, nil),
		ambient("roomy", 30, 0),
		ambient("exact", 20, 10),
	}

	got := engine.EligibleLocations(candidates, domain.CategoryAmbient, 10, engine.DefaultAllocationPolicy())
	assert.Equal(t, []string{"roomy", "exact"}, ids(got))
}

func TestEligibleLocations_TiesKeepInputOrder(t *testing.T) {
	candidates := []*domain.StorageLocation{
		ambient("first", 10, 0),
		ambient("second", 10, 0),
	}

	got := engine.EligibleLocations(candidates, domain.CategoryAmbient, 1, engine.DefaultAllocationPolicy())
	assert.Equal(t, []string{"first", "second"}, ids(got))
}

func TestAllocate_ColdStorageGating(t *testing.T) {
	tests := []struct {
		name       string
		candidates []*domain.StorageLocation
		policy     engine.AllocationPolicy
		want       string
		wantErr    bool
	}{
		{
			name: "skips out-of-range location with more space",
			candidates: []*domain.StorageLocation{
				cold("warm", 100, 0, temp(12.5)),
				cold("ok", 50, 0, temp(4)),
			},
			policy: engine.DefaultAllocationPolicy(),
			want:   "ok",
		},
		{
			name: "skips below-range location",
			candidates: []*domain.StorageLocation{
				cold("frozen", 100, 0, temp(-3)),
				cold("ok", 50, 0, temp(2)),
			},
			policy: engine.DefaultAllocationPolicy(),
			want:   "ok",
		},
		{
			name: "unread location accepted by default",
			candidates: []*domain.StorageLocation{
				cold("warm", 100, 0, temp(9)),
				cold("unread", 40, 0, nil),
			},
			policy: engine.DefaultAllocationPolicy(),
			want:   "unread",
		},
		{
			name: "unread location refused when policy is strict",
			candidates: []*domain.StorageLocation{
				cold("unread", 100, 0, nil),
				cold("ok", 40, 0, temp(8)),
			},
			policy: engine.AllocationPolicy{AcceptUnreadColdStorage: false},
			want:   "ok",
		},
		{
			name: "all out of range",
			candidates: []*domain.StorageLocation{
				cold("warm", 100, 0, temp(9)),
				cold("cold", 100, 0, temp(1.9)),
			},
			policy:  engine.DefaultAllocationPolicy(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := engine.Allocate(tt.candidates, domain.CategoryColdStorage, 10, tt.policy)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrNoSuitableLocation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, loc.ID)
		})
	}
}

func TestAllocate_NoCandidates(t *testing.T) {
	_, err := engine.Allocate(nil, domain.CategoryAmbient, 1, engine.DefaultAllocationPolicy())
	require.Error(t, err)
	assert.Equal(t, "NO_SUITABLE_LOCATION", errors.Code(err))
}

func TestAllocate_NeverExceedsCapacity(t *testing.T) {
	candidates := []*domain.StorageLocation{ambient("almost-full", 100, 95)}

	_, err := engine.Allocate(candidates, domain.CategoryAmbient, 6, engine.DefaultAllocationPolicy())
	assert.True(t, errors.Is(err, errors.ErrNoSuitableLocation))

	loc, err := engine.Allocate(candidates, domain.CategoryAmbient, 5, engine.DefaultAllocationPolicy())
	require.NoError(t, err)
	assert.LessOrEqual(t, loc.CurrentOccupancy+5, loc.Capacity)
}
