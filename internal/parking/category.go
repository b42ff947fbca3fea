package parking

import (
	"fmt"
	"strconv"
	"strings"
)

// VehicleCategory is the closed set of vehicle types the facility accepts.
// The numeric values match the console selection menu.
type VehicleCategory int

const (
	CategoryCar  VehicleCategory = 1
	CategoryBike VehicleCategory = 2
)

// Categories returns every supported category in menu order.
func Categories() []VehicleCategory {
	return []VehicleCategory{CategoryCar, CategoryBike}
}

func (c VehicleCategory) Valid() bool {
	switch c {
	case CategoryCar, CategoryBike:
		return true
	}
	return false
}

func (c VehicleCategory) String() string {
	switch c {
	case CategoryCar:
		return "CAR"
	case CategoryBike:
		return "BIKE"
	}
	return fmt.Sprintf("VehicleCategory(%d)", int(c))
}

// ParseCategory accepts a category name (case-insensitive) or its menu number.
func ParseCategory(s string) (VehicleCategory, error) {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case "CAR":
		return CategoryCar, nil
	case "BIKE":
		return CategoryBike, nil
	}

	if n, err := strconv.Atoi(s); err == nil {
		if c := VehicleCategory(n); c.Valid() {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown vehicle category %q", ErrInvalidArgument, s)
}

func (c VehicleCategory) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidArgument, c)
	}
	return []byte(c.String()), nil
}

func (c *VehicleCategory) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
