package parking

import (
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/guregu/null.v4"
)

// Ticket records one visit of a vehicle. A ticket without an out time is
// active: the vehicle is still parked on Spot.
type Ticket struct {
	ID           int64
	Spot         ParkingSpot
	Registration string
	Price        decimal.Decimal
	InTime       time.Time
	OutTime      null.Time
}

func NewTicket(spot ParkingSpot, registration string, inTime time.Time) *Ticket {
	return &Ticket{
		Spot:         spot,
		Registration: registration,
		Price:        RoundPrice(decimal.Zero),
		InTime:       inTime,
	}
}

func (t *Ticket) IsActive() bool {
	return !t.OutTime.Valid
}

func (t *Ticket) Close(outTime time.Time) {
	t.OutTime = null.TimeFrom(outTime)
}

// SetPrice stores p rounded half-down to cents.
func (t *Ticket) SetPrice(p decimal.Decimal) {
	t.Price = RoundPrice(p)
}

// Duration reports how long the vehicle stayed. It is false while the ticket
// is still active.
func (t *Ticket) Duration() (time.Duration, bool) {
	if !t.OutTime.Valid {
		return 0, false
	}
	return t.OutTime.Time.Sub(t.InTime), true
}
