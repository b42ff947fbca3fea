package parking

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// Stays of up to half an hour are free.
	FreeThresholdHours = decimal.RequireFromString("0.5")
	// LoyaltyDiscountRate is taken off the fare of returning vehicles.
	LoyaltyDiscountRate = decimal.RequireFromString("0.05")

	millisPerHour = decimal.NewFromInt(int64(time.Hour / time.Millisecond))
)

// FareCalculator prices closed tickets. It knows nothing about loyalty
// policy; the caller decides when to apply the discount.
type FareCalculator struct {
	rates RateTable
}

func NewFareCalculator(rates RateTable) *FareCalculator {
	return &FareCalculator{rates: rates}
}

// CalculateFare returns the price of ticket, rounded half-down to cents.
func (fc *FareCalculator) CalculateFare(ticket *Ticket) (decimal.Decimal, error) {
	if ticket == nil {
		return decimal.Decimal{}, fmt.Errorf("%w: ticket is nil", ErrInvalidArgument)
	}
	if !ticket.OutTime.Valid {
		return decimal.Decimal{}, fmt.Errorf("%w: out time is not set", ErrInvalidArgument)
	}
	if ticket.OutTime.Time.Before(ticket.InTime) {
		return decimal.Decimal{}, fmt.Errorf("%w: out time provided is incorrect: %s is before %s",
			ErrInvalidArgument, ticket.OutTime.Time.Format(time.RFC3339), ticket.InTime.Format(time.RFC3339))
	}

	rate, err := fc.rates.Rate(ticket.Spot.Category)
	if err != nil {
		return decimal.Decimal{}, err
	}

	if DurationInHours(ticket.InTime, ticket.OutTime.Time).LessThanOrEqual(FreeThresholdHours) {
		return RoundPrice(decimal.Zero), nil
	}

	// Multiply before dividing so exact half-cent fares stay exact.
	millis := decimal.NewFromInt(ticket.OutTime.Time.Sub(ticket.InTime).Milliseconds())
	return RoundPrice(millis.Mul(rate).Div(millisPerHour)), nil
}

// ApplyLoyaltyDiscount takes LoyaltyDiscountRate off price and rounds again.
func (fc *FareCalculator) ApplyLoyaltyDiscount(price decimal.Decimal) decimal.Decimal {
	return RoundPrice(price.Sub(price.Mul(LoyaltyDiscountRate)))
}

// DurationInHours converts the span between in and out to fractional hours
// at millisecond resolution.
func DurationInHours(in, out time.Time) decimal.Decimal {
	millis := out.Sub(in).Milliseconds()
	return decimal.NewFromInt(millis).Div(millisPerHour)
}
