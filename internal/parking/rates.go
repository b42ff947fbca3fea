package parking

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	CarRatePerHour  = decimal.RequireFromString("1.5")
	BikeRatePerHour = decimal.RequireFromString("1.0")
)

// RateTable maps each category to its hourly rate. It is built once and never
// mutated afterwards.
type RateTable struct {
	rates map[VehicleCategory]decimal.Decimal
}

func DefaultRateTable() RateTable {
	rt, _ := NewRateTable(map[VehicleCategory]decimal.Decimal{
		CategoryCar:  CarRatePerHour,
		CategoryBike: BikeRatePerHour,
	})
	return rt
}

// NewRateTable copies rates and checks that every supported category has a
// non-negative rate.
func NewRateTable(rates map[VehicleCategory]decimal.Decimal) (RateTable, error) {
	copied := make(map[VehicleCategory]decimal.Decimal, len(rates))
	for category, rate := range rates {
		if !category.Valid() {
			return RateTable{}, fmt.Errorf("%w: rate for unknown category %s", ErrInvalidArgument, category)
		}
		if rate.IsNegative() {
			return RateTable{}, fmt.Errorf("%w: negative rate %s for %s", ErrInvalidArgument, rate, category)
		}
		copied[category] = rate
	}

	for _, category := range Categories() {
		if _, ok := copied[category]; !ok {
			return RateTable{}, fmt.Errorf("%w: missing rate for %s", ErrInvalidArgument, category)
		}
	}

	return RateTable{rates: copied}, nil
}

func (rt RateTable) Rate(category VehicleCategory) (decimal.Decimal, error) {
	rate, ok := rt.rates[category]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: unknown parking type %s", ErrInvalidArgument, category)
	}
	return rate, nil
}
