package parking

import "github.com/shopspring/decimal"

// PriceScale is the number of decimal places kept on every stored price.
const PriceScale = 2

// RoundHalfDown rounds d to places decimals. Exact halves go toward zero, so
// 1.425 becomes 1.42 while 1.4251 becomes 1.43.
func RoundHalfDown(d decimal.Decimal, places int32) decimal.Decimal {
	truncated := d.Truncate(places)
	remainder := d.Sub(truncated).Abs()
	half := decimal.New(5, -(places + 1))

	if remainder.GreaterThan(half) {
		step := decimal.New(1, -places)
		if d.Sign() < 0 {
			truncated = truncated.Sub(step)
		} else {
			truncated = truncated.Add(step)
		}
	}
	return truncated.Round(places)
}

func RoundPrice(d decimal.Decimal) decimal.Decimal {
	return RoundHalfDown(d, PriceScale)
}
