package parking

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRateTable(t *testing.T) {
	rates := DefaultRateTable()

	car, err := rates.Rate(CategoryCar)
	require.NoError(t, err)
	assert.True(t, car.Equal(decimal.RequireFromString("1.5")))

	bike, err := rates.Rate(CategoryBike)
	require.NoError(t, err)
	assert.True(t, bike.Equal(decimal.NewFromInt(1)))

	_, err = rates.Rate(VehicleCategory(0))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNewRateTableValidation(t *testing.T) {
	_, err := NewRateTable(map[VehicleCategory]decimal.Decimal{
		CategoryCar: decimal.NewFromInt(2),
	})
	assert.ErrorIs(t, err, ErrInvalidArgument, "missing bike rate")

	_, err = NewRateTable(map[VehicleCategory]decimal.Decimal{
		CategoryCar:  decimal.NewFromInt(-1),
		CategoryBike: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, ErrInvalidArgument, "negative rate")

	_, err = NewRateTable(map[VehicleCategory]decimal.Decimal{
		CategoryCar:        decimal.NewFromInt(1),
		CategoryBike:       decimal.NewFromInt(1),
		VehicleCategory(3): decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, ErrInvalidArgument, "unknown category")
}

func TestRateTableIsCopied(t *testing.T) {
	source := map[VehicleCategory]decimal.Decimal{
		CategoryCar:  decimal.NewFromInt(2),
		CategoryBike: decimal.NewFromInt(1),
	}
	rates, err := NewRateTable(source)
	require.NoError(t, err)

	source[CategoryCar] = decimal.NewFromInt(100)

	car, err := rates.Rate(CategoryCar)
	require.NoError(t, err)
	assert.True(t, car.Equal(decimal.NewFromInt(2)))
}
