package parking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFindAvailableSpot(t *testing.T) {
	repo := &mockSpotRepository{}
	repo.On("NextAvailable", mock.Anything, CategoryCar).Return(1, nil)

	spot, ok, err := NewSpotAllocator(repo).FindAvailableSpot(context.Background(), CategoryCar)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, 1, spot.Number)
	assert.Equal(t, CategoryCar, spot.Category)
	assert.True(t, spot.Available, "allocator must not mark the spot as taken")
	repo.AssertNotCalled(t, "UpdateSpot", mock.Anything, mock.Anything)
}

func TestFindAvailableSpotNone(t *testing.T) {
	tests := []struct {
		name   string
		number int
		err    error
	}{
		{"no spot error", 0, ErrNoSpotAvailable},
		{"zero number", 0, nil},
		{"negative number", -1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockSpotRepository{}
			repo.On("NextAvailable", mock.Anything, CategoryBike).Return(tt.number, tt.err)

			_, ok, err := NewSpotAllocator(repo).FindAvailableSpot(context.Background(), CategoryBike)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestFindAvailableSpotUnknownCategory(t *testing.T) {
	repo := &mockSpotRepository{}

	_, ok, err := NewSpotAllocator(repo).FindAvailableSpot(context.Background(), VehicleCategory(0))
	require.NoError(t, err)
	assert.False(t, ok)
	repo.AssertNotCalled(t, "NextAvailable", mock.Anything, mock.Anything)
}

func TestFindAvailableSpotRepositoryFailure(t *testing.T) {
	repo := &mockSpotRepository{}
	repo.On("NextAvailable", mock.Anything, CategoryCar).Return(0, errBoom)

	_, ok, err := NewSpotAllocator(repo).FindAvailableSpot(context.Background(), CategoryCar)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, errBoom)
}
