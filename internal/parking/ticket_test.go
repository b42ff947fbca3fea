package parking

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewTicketIsActive(t *testing.T) {
	in := time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC)
	ticket := NewTicket(NewParkingSpot(2, CategoryCar), "ABCDEF", in)

	assert.True(t, ticket.IsActive())
	assert.Equal(t, "0.00", ticket.Price.StringFixed(PriceScale))
	assert.Equal(t, in, ticket.InTime)

	_, ok := ticket.Duration()
	assert.False(t, ok)
}

func TestTicketClose(t *testing.T) {
	in := time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC)
	ticket := NewTicket(NewParkingSpot(2, CategoryCar), "ABCDEF", in)

	ticket.Close(in.Add(90 * time.Minute))

	assert.False(t, ticket.IsActive())
	d, ok := ticket.Duration()
	assert.True(t, ok)
	assert.Equal(t, 90*time.Minute, d)
}

func TestTicketSetPriceRounds(t *testing.T) {
	ticket := NewTicket(NewParkingSpot(2, CategoryCar), "ABCDEF", time.Now())

	ticket.SetPrice(decimal.RequireFromString("1.425"))

	assert.Equal(t, "1.42", ticket.Price.StringFixed(PriceScale))
}
