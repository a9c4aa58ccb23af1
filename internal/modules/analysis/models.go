// Package analysis derives investment metrics for a property and caches the
// results behind a derived key.
package analysis

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Property is the read model the engine consumes. It is never mutated.
type Property interface {
	PropertyID() int64
	PropertyPrice() decimal.Decimal
	PropertySize() decimal.Decimal
	// RegionAverageRent returns the average monthly rent of the property's
	// region, or false when the property has no region or the region has
	// no figure.
	RegionAverageRent() (decimal.Decimal, bool)
}

// Params holds the financial assumptions of one analysis.
// It is a value type: copies never share state.
type Params struct {
	MonthlyRent        decimal.Decimal
	OccupancyRate      decimal.Decimal
	PropertyTaxRate    decimal.Decimal // annual, on price
	InsuranceRate      decimal.Decimal // annual, on price
	MaintenanceRate    decimal.Decimal // annual, on price
	ManagementFeeRate  decimal.Decimal // on annual gross rent
	DownPaymentPercent decimal.Decimal
	MortgageRate       decimal.Decimal // annual nominal
	MortgageTermYears  int
	Strategy           string // informational only
}

// ExpenseBreakdown splits annual expenses into their components
type ExpenseBreakdown struct {
	PropertyTax   decimal.Decimal
	Insurance     decimal.Decimal
	Maintenance   decimal.Decimal
	ManagementFee decimal.Decimal
}

// Result holds the metrics of one analysis, already rounded.
// Currency and ratio fields have 2 decimal places, PaybackYears has 1.
type Result struct {
	GrossYield        decimal.Decimal
	NetYield          decimal.Decimal
	AnnualGrossIncome decimal.Decimal
	AnnualExpenses    decimal.Decimal
	AnnualNetIncome   decimal.Decimal
	MonthlyCashFlow   decimal.Decimal
	CashOnCashReturn  decimal.Decimal
	TotalROI          decimal.Decimal
	PaybackYears      decimal.Decimal
	ExpenseBreakdown  ExpenseBreakdown
	// MonthlyMortgagePayment is nil when no loan payment is computable
	MonthlyMortgagePayment *decimal.Decimal
}

type expenseBreakdownJSON struct {
	PropertyTax   float64 `json:"property_tax"`
	Insurance     float64 `json:"insurance"`
	Maintenance   float64 `json:"maintenance"`
	ManagementFee float64 `json:"management_fee"`
}

type resultJSON struct {
	GrossYield             float64              `json:"gross_yield"`
	NetYield               float64              `json:"net_yield"`
	AnnualGrossIncome      float64              `json:"annual_gross_income"`
	AnnualExpenses         float64              `json:"annual_expenses"`
	AnnualNetIncome        float64              `json:"annual_net_income"`
	MonthlyCashFlow        float64              `json:"monthly_cash_flow"`
	CashOnCashReturn       float64              `json:"cash_on_cash_return"`
	TotalROI               float64              `json:"total_roi"`
	PaybackYears           float64              `json:"payback_years"`
	ExpenseBreakdown       expenseBreakdownJSON `json:"expense_breakdown"`
	MonthlyMortgagePayment *float64             `json:"monthly_mortgage_payment"`
}

// MarshalJSON serializes the result as a flat object of JSON numbers.
// A payment that rounds to zero is reported as null.
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		GrossYield:        r.GrossYield.InexactFloat64(),
		NetYield:          r.NetYield.InexactFloat64(),
		AnnualGrossIncome: r.AnnualGrossIncome.InexactFloat64(),
		AnnualExpenses:    r.AnnualExpenses.InexactFloat64(),
		AnnualNetIncome:   r.AnnualNetIncome.InexactFloat64(),
		MonthlyCashFlow:   r.MonthlyCashFlow.InexactFloat64(),
		CashOnCashReturn:  r.CashOnCashReturn.InexactFloat64(),
		TotalROI:          r.TotalROI.InexactFloat64(),
		PaybackYears:      r.PaybackYears.InexactFloat64(),
		ExpenseBreakdown: expenseBreakdownJSON{
			PropertyTax:   r.ExpenseBreakdown.PropertyTax.InexactFloat64(),
			Insurance:     r.ExpenseBreakdown.Insurance.InexactFloat64(),
			Maintenance:   r.ExpenseBreakdown.Maintenance.InexactFloat64(),
			ManagementFee: r.ExpenseBreakdown.ManagementFee.InexactFloat64(),
		},
	}
	if r.MonthlyMortgagePayment != nil && !r.MonthlyMortgagePayment.IsZero() {
		payment := r.MonthlyMortgagePayment.InexactFloat64()
		out.MonthlyMortgagePayment = &payment
	}

	return json.Marshal(out)
}

// Equal reports whether two results hold numerically equal metrics
func (r Result) Equal(other Result) bool {
	pairs := [][2]decimal.Decimal{
		{r.GrossYield, other.GrossYield},
		{r.NetYield, other.NetYield},
		{r.AnnualGrossIncome, other.AnnualGrossIncome},
		{r.AnnualExpenses, other.AnnualExpenses},
		{r.AnnualNetIncome, other.AnnualNetIncome},
		{r.MonthlyCashFlow, other.MonthlyCashFlow},
		{r.CashOnCashReturn, other.CashOnCashReturn},
		{r.TotalROI, other.TotalROI},
		{r.PaybackYears, other.PaybackYears},
		{r.ExpenseBreakdown.PropertyTax, other.ExpenseBreakdown.PropertyTax},
		{r.ExpenseBreakdown.Insurance, other.ExpenseBreakdown.Insurance},
		{r.ExpenseBreakdown.Maintenance, other.ExpenseBreakdown.Maintenance},
		{r.ExpenseBreakdown.ManagementFee, other.ExpenseBreakdown.ManagementFee},
	}
	for _, p := range pairs {
		if !p[0].Equal(p[1]) {
			return false
		}
	}

	a, b := r.MonthlyMortgagePayment, other.MonthlyMortgagePayment
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
