// Package formulas holds the pure financial formulas used by the analysis engine.
package formulas

import (
	"github.com/shopspring/decimal"
)

// Precision is the number of decimal places kept by intermediate division
// and exponentiation. Final values are rounded separately by the caller.
const Precision int32 = 28

var (
	one     = decimal.NewFromInt(1)
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// MonthlyMortgagePayment calculates the fixed monthly payment of a fully
// amortizing loan.
//
// Formula:
//
//	r = annualRate / 12
//	n = termYears × 12
//	payment = P × r × (1+r)^n / ((1+r)^n − 1)
//
// Returns nil when principal, rate or term is not positive (cash purchase,
// zero-rate loan), since no payment is computable.
func MonthlyMortgagePayment(principal, annualRate decimal.Decimal, termYears int) *decimal.Decimal {
	if !principal.IsPositive() || !annualRate.IsPositive() || termYears <= 0 {
		return nil
	}

	monthlyRate := annualRate.DivRound(twelve, Precision)
	factor := CompoundFactor(monthlyRate, termYears*12)

	payment := principal.Mul(monthlyRate.Mul(factor)).DivRound(factor.Sub(one), Precision)
	return &payment
}

// CompoundFactor returns (1+rate)^periods by repeated squaring, rounding
// every product to Precision places. Non-positive periods yield one.
func CompoundFactor(rate decimal.Decimal, periods int) decimal.Decimal {
	base := one.Add(rate)
	result := one
	for periods > 0 {
		if periods&1 == 1 {
			result = result.Mul(base).Round(Precision)
		}
		periods >>= 1
		if periods > 0 {
			base = base.Mul(base).Round(Precision)
		}
	}
	return result
}

// Percent returns numerator / denominator × 100, or zero when the
// denominator is not positive.
func Percent(numerator, denominator decimal.Decimal) decimal.Decimal {
	if !denominator.IsPositive() {
		return decimal.Zero
	}
	return numerator.DivRound(denominator, Precision).Mul(hundred)
}

// Monthly converts an annual amount to a monthly one
func Monthly(annual decimal.Decimal) decimal.Decimal {
	return annual.DivRound(twelve, Precision)
}

// Annual converts a monthly amount to an annual one
func Annual(monthly decimal.Decimal) decimal.Decimal {
	return monthly.Mul(twelve)
}
