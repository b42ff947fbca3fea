package parking

// ParkingSpot is one physical place in the facility. Spots are provisioned once
// and afterwards only toggle between available and taken.
type ParkingSpot struct {
	Number    int
	Category  VehicleCategory
	Available bool
}

func NewParkingSpot(number int, category VehicleCategory) ParkingSpot {
	return ParkingSpot{
		Number:    number,
		Category:  category,
		Available: true,
	}
}

func (s *ParkingSpot) Occupy() {
	s.Available = false
}

func (s *ParkingSpot) Release() {
	s.Available = true
}

// NewSpotPool lays out the facility: car spots first, numbered from 1, then
// bike spots continuing the same numbering.
func NewSpotPool(carSpots, bikeSpots int) []ParkingSpot {
	spots := make([]ParkingSpot, 0, carSpots+bikeSpots)
	number := 1
	for i := 0; i < carSpots; i++ {
		spots = append(spots, NewParkingSpot(number, CategoryCar))
		number++
	}
	for i := 0; i < bikeSpots; i++ {
		spots = append(spots, NewParkingSpot(number, CategoryBike))
		number++
	}
	return spots
}
