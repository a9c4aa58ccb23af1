package analysis

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"
)

// codecVersion is bumped whenever the cached layout changes, so stale
// entries read as misses instead of garbage.
const codecVersion = 1

// cachedResult is the msgpack layout of a Result. Decimals are kept as
// strings so a cached result decodes to exactly the value that was stored.
type cachedResult struct {
	Version           int     `msgpack:"v"`
	GrossYield        string  `msgpack:"gross_yield"`
	NetYield          string  `msgpack:"net_yield"`
	AnnualGrossIncome string  `msgpack:"annual_gross_income"`
	AnnualExpenses    string  `msgpack:"annual_expenses"`
	AnnualNetIncome   string  `msgpack:"annual_net_income"`
	MonthlyCashFlow   string  `msgpack:"monthly_cash_flow"`
	CashOnCashReturn  string  `msgpack:"cash_on_cash_return"`
	TotalROI          string  `msgpack:"total_roi"`
	PaybackYears      string  `msgpack:"payback_years"`
	PropertyTax       string  `msgpack:"property_tax"`
	Insurance         string  `msgpack:"insurance"`
	Maintenance       string  `msgpack:"maintenance"`
	ManagementFee     string  `msgpack:"management_fee"`
	MortgagePayment   *string `msgpack:"monthly_mortgage_payment"`
}

func encodeResult(r Result) ([]byte, error) {
	record := cachedResult{
		Version:           codecVersion,
		GrossYield:        r.GrossYield.String(),
		NetYield:          r.NetYield.String(),
		AnnualGrossIncome: r.AnnualGrossIncome.String(),
		AnnualExpenses:    r.AnnualExpenses.String(),
		AnnualNetIncome:   r.AnnualNetIncome.String(),
		MonthlyCashFlow:   r.MonthlyCashFlow.String(),
		CashOnCashReturn:  r.CashOnCashReturn.String(),
		TotalROI:          r.TotalROI.String(),
		PaybackYears:      r.PaybackYears.String(),
		PropertyTax:       r.ExpenseBreakdown.PropertyTax.String(),
		Insurance:         r.ExpenseBreakdown.Insurance.String(),
		Maintenance:       r.ExpenseBreakdown.Maintenance.String(),
		ManagementFee:     r.ExpenseBreakdown.ManagementFee.String(),
	}
	if r.MonthlyMortgagePayment != nil {
		payment := r.MonthlyMortgagePayment.String()
		record.MortgagePayment = &payment
	}

	data, err := msgpack.Marshal(&record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis result: %w", err)
	}
	return data, nil
}

func decodeResult(data []byte) (Result, error) {
	var record cachedResult
	if err := msgpack.Unmarshal(data, &record); err != nil {
		return Result{}, fmt.Errorf("failed to decode analysis result: %w", err)
	}
	if record.Version != codecVersion {
		return Result{}, fmt.Errorf("unsupported cached result version %d", record.Version)
	}

	var (
		result Result
		err    error
	)
	parse := func(s string) decimal.Decimal {
		if err != nil {
			return decimal.Zero
		}
		var d decimal.Decimal
		d, err = decimal.NewFromString(s)
		return d
	}

	result.GrossYield = parse(record.GrossYield)
	result.NetYield = parse(record.NetYield)
	result.AnnualGrossIncome = parse(record.AnnualGrossIncome)
	result.AnnualExpenses = parse(record.AnnualExpenses)
	result.AnnualNetIncome = parse(record.AnnualNetIncome)
	result.MonthlyCashFlow = parse(record.MonthlyCashFlow)
	result.CashOnCashReturn = parse(record.CashOnCashReturn)
	result.TotalROI = parse(record.TotalROI)
	result.PaybackYears = parse(record.PaybackYears)
	result.ExpenseBreakdown = ExpenseBreakdown{
		PropertyTax:   parse(record.PropertyTax),
		Insurance:     parse(record.Insurance),
		Maintenance:   parse(record.Maintenance),
		ManagementFee: parse(record.ManagementFee),
	}
	if record.MortgagePayment != nil {
		payment := parse(*record.MortgagePayment)
		result.MonthlyMortgagePayment = &payment
	}

	if err != nil {
		return Result{}, fmt.Errorf("failed to decode analysis result: %w", err)
	}
	return result, nil
}
