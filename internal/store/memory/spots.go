package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"parking-system/internal/parking"
)

// SpotStore keeps the spot pool in memory, ordered by spot number.
type SpotStore struct {
	mu    sync.RWMutex
	spots []parking.ParkingSpot
}

func NewSpotStore(spots []parking.ParkingSpot) *SpotStore {
	pool := make([]parking.ParkingSpot, len(spots))
	copy(pool, spots)

	sort.Slice(pool, func(i, j int) bool {
		return pool[i].Number < pool[j].Number
	})

	return &SpotStore{spots: pool}
}

func (s *SpotStore) NextAvailable(_ context.Context, category parking.VehicleCategory) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, spot := range s.spots {
		if spot.Available && spot.Category == category {
			return spot.Number, nil
		}
	}
	return 0, parking.ErrNoSpotAvailable
}

func (s *SpotStore) UpdateSpot(_ context.Context, spot parking.ParkingSpot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.spots {
		if s.spots[i].Number == spot.Number {
			s.spots[i].Available = spot.Available
			return nil
		}
	}
	return fmt.Errorf("%w: %d", parking.ErrSpotNotFound, spot.Number)
}

func (s *SpotStore) ListSpots(_ context.Context) ([]parking.ParkingSpot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	spots := make([]parking.ParkingSpot, len(s.spots))
	copy(spots, s.spots)
	return spots, nil
}
