package parking

import (
	"context"
	"errors"
	"fmt"
)

// SpotAllocator picks the spot a newly arrived vehicle should use. It only
// looks; marking the spot as taken is left to the caller.
type SpotAllocator struct {
	spots SpotRepository
}

func NewSpotAllocator(spots SpotRepository) *SpotAllocator {
	return &SpotAllocator{spots: spots}
}

// FindAvailableSpot returns the lowest-numbered free spot of category. ok is
// false when nothing is free or the category is not supported; err is only set
// when the repository fails.
func (a *SpotAllocator) FindAvailableSpot(ctx context.Context, category VehicleCategory) (spot ParkingSpot, ok bool, err error) {
	if !category.Valid() {
		return ParkingSpot{}, false, nil
	}

	number, err := a.spots.NextAvailable(ctx, category)
	if errors.Is(err, ErrNoSpotAvailable) {
		return ParkingSpot{}, false, nil
	}
	if err != nil {
		return ParkingSpot{}, false, fmt.Errorf("%w: next available %s spot: %w", ErrPersistence, category, err)
	}
	if number <= 0 {
		return ParkingSpot{}, false, nil
	}

	return NewParkingSpot(number, category), true, nil
}
