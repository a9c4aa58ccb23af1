package analysis

import (
	"github.com/aristath/yieldwise/pkg/formulas"
	"github.com/shopspring/decimal"
)

var (
	// PaybackNever is reported when annual net income is not positive
	PaybackNever = decimal.NewFromInt(999)

	// Rent estimation: region average rent is quoted for an 80 m² unit,
	// and without a region the monthly rent is taken as 0.4% of price.
	referenceSize  = decimal.NewFromInt(80)
	rentYieldProxy = decimal.RequireFromString("0.004")

	fiveYears = decimal.NewFromInt(5)
)

// Calculate derives all metrics for a property priced at price.
// It is pure: the same inputs always produce the same Result.
// Intermediate values keep full precision and each output is rounded
// half-to-even once at the end.
func Calculate(price decimal.Decimal, p Params) Result {
	annualGrossRent := formulas.Annual(p.MonthlyRent)
	annualGrossIncome := annualGrossRent.Mul(p.OccupancyRate)

	breakdown := ExpenseBreakdown{
		PropertyTax:   price.Mul(p.PropertyTaxRate),
		Insurance:     price.Mul(p.InsuranceRate),
		Maintenance:   price.Mul(p.MaintenanceRate),
		ManagementFee: annualGrossRent.Mul(p.ManagementFeeRate), // on gross rent, not income
	}
	annualExpenses := breakdown.PropertyTax.
		Add(breakdown.Insurance).
		Add(breakdown.Maintenance).
		Add(breakdown.ManagementFee)
	annualNetIncome := annualGrossIncome.Sub(annualExpenses)

	grossYield := formulas.Percent(annualGrossIncome, price)
	netYield := formulas.Percent(annualNetIncome, price)

	downPayment := price.Mul(p.DownPaymentPercent)
	loanAmount := price.Sub(downPayment)
	mortgage := formulas.MonthlyMortgagePayment(loanAmount, p.MortgageRate, p.MortgageTermYears)

	monthlyMortgage := decimal.Zero
	if mortgage != nil {
		monthlyMortgage = *mortgage
	}
	monthlyCashFlow := formulas.Monthly(annualNetIncome).Sub(monthlyMortgage)
	annualCashFlow := annualNetIncome.Sub(formulas.Annual(monthlyMortgage))

	cashOnCash := formulas.Percent(annualCashFlow, downPayment)
	totalROI := formulas.Percent(annualNetIncome.Mul(fiveYears), downPayment)

	payback := PaybackNever
	if annualNetIncome.IsPositive() {
		payback = price.DivRound(annualNetIncome, formulas.Precision)
	}

	result := Result{
		GrossYield:        round2(grossYield),
		NetYield:          round2(netYield),
		AnnualGrossIncome: round2(annualGrossIncome),
		AnnualExpenses:    round2(annualExpenses),
		AnnualNetIncome:   round2(annualNetIncome),
		MonthlyCashFlow:   round2(monthlyCashFlow),
		CashOnCashReturn:  round2(cashOnCash),
		TotalROI:          round2(totalROI),
		PaybackYears:      payback.RoundBank(1),
		ExpenseBreakdown: ExpenseBreakdown{
			PropertyTax:   round2(breakdown.PropertyTax),
			Insurance:     round2(breakdown.Insurance),
			Maintenance:   round2(breakdown.Maintenance),
			ManagementFee: round2(breakdown.ManagementFee),
		},
	}
	if mortgage != nil {
		payment := round2(*mortgage)
		result.MonthlyMortgagePayment = &payment
	}

	return result
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

// EstimateParams returns default assumptions with the monthly rent
// estimated from the property: the region average rent scaled by size,
// or a flat share of price when no region average exists.
func EstimateParams(prop Property) Params {
	p := DefaultParams()

	if avgRent, ok := prop.RegionAverageRent(); ok && !avgRent.IsZero() {
		sizeFactor := prop.PropertySize().DivRound(referenceSize, formulas.Precision)
		p.MonthlyRent = avgRent.Mul(sizeFactor)
	} else {
		p.MonthlyRent = prop.PropertyPrice().Mul(rentYieldProxy)
	}

	return p
}
