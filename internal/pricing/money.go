package pricing

import "github.com/shopspring/decimal"

// roundCents rounds a decimal intermediate to whole cents, half away from
// zero. All floating math in the engine funnels through here so every code
// path rounds identically.
func roundCents(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

// mulRate multiplies an integer cent amount by a rate expressed in basis
// points and rounds to cents.
func mulRate(amountCents int64, rateBps int64) int64 {
	return roundCents(decimal.NewFromInt(amountCents).
		Mul(decimal.NewFromInt(rateBps)).
		Div(decimal.NewFromInt(10000)))
}

// mulPercent multiplies an integer cent amount by a percentage (0-100) and
// rounds to cents.
func mulPercent(amountCents int64, percent float64) int64 {
	return roundCents(decimal.NewFromInt(amountCents).
		Mul(decimal.NewFromFloat(percent)).
		Div(decimal.NewFromInt(100)))
}

// mulMiles multiplies fractional miles by a per-mile cent rate and rounds
// to cents.
func mulMiles(miles float64, perMileCents int64) int64 {
	return roundCents(decimal.NewFromFloat(miles).
		Mul(decimal.NewFromInt(perMileCents)))
}

// scale applies a float multiplier to a cent amount and rounds. Multipliers
// at or below zero are treated as 1.
func scale(amountCents int64, multiplier float64) int64 {
	if multiplier <= 0 || multiplier == 1 {
		return amountCents
	}
	return roundCents(decimal.NewFromInt(amountCents).
		Mul(decimal.NewFromFloat(multiplier)))
}
