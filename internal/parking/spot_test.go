package parking

import "testing"

func TestNewParkingSpot(t *testing.T) {
	spot := NewParkingSpot(4, CategoryBike)

	if spot.Number != 4 {
		t.Errorf("Expected spot number 4, got %d", spot.Number)
	}

	if spot.Category != CategoryBike {
		t.Errorf("Expected category BIKE, got %s", spot.Category)
	}

	if !spot.Available {
		t.Error("Expected new spot to be available")
	}
}

func TestSpotOccupyAndRelease(t *testing.T) {
	spot := NewParkingSpot(1, CategoryCar)

	spot.Occupy()
	if spot.Available {
		t.Error("Expected spot to be unavailable after occupying")
	}

	spot.Release()
	if !spot.Available {
		t.Error("Expected spot to be available after release")
	}
}

func TestNewSpotPool(t *testing.T) {
	spots := NewSpotPool(3, 2)

	if len(spots) != 5 {
		t.Fatalf("Expected 5 spots, got %d", len(spots))
	}

	expected := []VehicleCategory{CategoryCar, CategoryCar, CategoryCar, CategoryBike, CategoryBike}
	for i, spot := range spots {
		if spot.Number != i+1 {
			t.Errorf("Expected spot number %d, got %d", i+1, spot.Number)
		}
		if spot.Category != expected[i] {
			t.Errorf("Expected spot %d to be %s, got %s", spot.Number, expected[i], spot.Category)
		}
		if !spot.Available {
			t.Errorf("Expected spot %d to be available", spot.Number)
		}
	}
}
