package salaryengine

import "github.com/shopspring/decimal"

var (
	hundred     = decimal.NewFromInt(100)
	twelve      = decimal.NewFromInt(12)
	moneyPlaces = int32(2)

	// ValuePlaces is the scale mapping values are stored with. Values with
	// more places are invalid so a saved template reallocates exactly as it
	// was computed.
	ValuePlaces = int32(4)

	// Tolerance is the largest difference between the allocated total and
	// the CTC that still counts as reconciled.
	Tolerance = decimal.New(1, -2)
)

// RoundMoney rounds half-up to two decimal places. Ties go away from zero,
// so -0.005 rounds to -0.01.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

// FitsValueScale reports whether d has at most ValuePlaces decimal places.
func FitsValueScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(ValuePlaces))
}

func percentOf(percent, base decimal.Decimal) decimal.Decimal {
	return RoundMoney(base.Mul(percent).Div(hundred))
}

func annualFromMonthly(monthly decimal.Decimal) decimal.Decimal {
	return RoundMoney(monthly.Mul(twelve))
}

func monthlyFromAnnual(annual decimal.Decimal) decimal.Decimal {
	return RoundMoney(annual.Div(twelve))
}
