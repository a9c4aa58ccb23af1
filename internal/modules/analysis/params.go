package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidParameter is wrapped by every override conversion failure
var ErrInvalidParameter = errors.New("invalid analysis parameter")

// Parameter names accepted by ParseParams
const (
	FieldMonthlyRent        = "monthly_rent"
	FieldOccupancyRate      = "occupancy_rate"
	FieldPropertyTaxRate    = "property_tax_rate"
	FieldInsuranceRate      = "insurance_rate"
	FieldMaintenanceRate    = "maintenance_rate"
	FieldManagementFeeRate  = "management_fee_rate"
	FieldDownPaymentPercent = "down_payment_percent"
	FieldMortgageRate       = "mortgage_rate"
	FieldMortgageTermYears  = "mortgage_term_years"
	FieldStrategy           = "strategy"
)

// DefaultStrategy is the strategy tag used when none is given
const DefaultStrategy = "rental"

// Bounds on accepted parameters. Terms and decimal magnitudes beyond these
// make the amortization arithmetic grow without limit.
const (
	MaxMortgageTermYears = 100
	maxDecimalDigits     = 40
	maxDecimalExponent   = 20
	minDecimalExponent   = -40
)

// DefaultParams returns the default assumptions
func DefaultParams() Params {
	return Params{
		MonthlyRent:        decimal.Zero,
		OccupancyRate:      decimal.RequireFromString("0.95"),
		PropertyTaxRate:    decimal.RequireFromString("0.003"),
		InsuranceRate:      decimal.RequireFromString("0.002"),
		MaintenanceRate:    decimal.RequireFromString("0.01"),
		ManagementFeeRate:  decimal.RequireFromString("0.08"),
		DownPaymentPercent: decimal.RequireFromString("0.20"),
		MortgageRate:       decimal.RequireFromString("0.035"),
		MortgageTermYears:  30,
		Strategy:           DefaultStrategy,
	}
}

// decimalFields maps every decimal-typed parameter to its slot
func decimalFields(p *Params) []struct {
	name string
	dst  *decimal.Decimal
} {
	return []struct {
		name string
		dst  *decimal.Decimal
	}{
		{FieldMonthlyRent, &p.MonthlyRent},
		{FieldOccupancyRate, &p.OccupancyRate},
		{FieldPropertyTaxRate, &p.PropertyTaxRate},
		{FieldInsuranceRate, &p.InsuranceRate},
		{FieldMaintenanceRate, &p.MaintenanceRate},
		{FieldManagementFeeRate, &p.ManagementFeeRate},
		{FieldDownPaymentPercent, &p.DownPaymentPercent},
		{FieldMortgageRate, &p.MortgageRate},
	}
}

// ParseParams builds Params from loosely typed overrides such as a decoded
// JSON body. Known fields are converted, absent fields keep their defaults
// and unknown keys are ignored. A known field whose value cannot be
// converted fails the whole parse with an error wrapping ErrInvalidParameter.
func ParseParams(raw map[string]interface{}) (Params, error) {
	p := DefaultParams()

	for _, f := range decimalFields(&p) {
		v, ok := raw[f.name]
		if !ok {
			continue
		}
		d, err := toDecimal(v)
		if err != nil {
			return Params{}, fmt.Errorf("%w: %s: %v", ErrInvalidParameter, f.name, err)
		}
		*f.dst = d
	}

	if v, ok := raw[FieldMortgageTermYears]; ok {
		n, err := toInt(v)
		if err != nil {
			return Params{}, fmt.Errorf("%w: %s: %v", ErrInvalidParameter, FieldMortgageTermYears, err)
		}
		p.MortgageTermYears = n
	}

	if v, ok := raw[FieldStrategy]; ok {
		s, isString := v.(string)
		if !isString {
			return Params{}, fmt.Errorf("%w: %s: expected string, got %T", ErrInvalidParameter, FieldStrategy, v)
		}
		p.Strategy = s
	}

	if err := p.Validate(); err != nil {
		return Params{}, err
	}

	return p, nil
}

// Validate checks that the term and every decimal stay within the ranges
// the engine can compute in bounded time.
func (p Params) Validate() error {
	if p.MortgageTermYears > MaxMortgageTermYears {
		return fmt.Errorf("%w: %s: %d exceeds %d years",
			ErrInvalidParameter, FieldMortgageTermYears, p.MortgageTermYears, MaxMortgageTermYears)
	}

	for _, f := range decimalFields(&p) {
		d := *f.dst
		if d.IsZero() {
			continue
		}
		if d.NumDigits() > maxDecimalDigits || d.Exponent() > maxDecimalExponent || d.Exponent() < minDecimalExponent {
			return fmt.Errorf("%w: %s: %s is out of range", ErrInvalidParameter, f.name, d.String())
		}
	}

	return nil
}

func toDecimal(v interface{}) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(n))
	case json.Number:
		return decimal.NewFromString(n.String())
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Decimal{}, fmt.Errorf("non-finite number %v", n)
		}
		return decimal.NewFromFloat(n), nil
	case float32:
		if math.IsNaN(float64(n)) || math.IsInf(float64(n), 0) {
			return decimal.Decimal{}, fmt.Errorf("non-finite number %v", n)
		}
		return decimal.NewFromFloat32(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int8:
		return decimal.NewFromInt(int64(n)), nil
	case int16:
		return decimal.NewFromInt(int64(n)), nil
	case int32:
		return decimal.NewFromInt32(n), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case uint:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(n)), 0), nil
	case uint8:
		return decimal.NewFromInt(int64(n)), nil
	case uint16:
		return decimal.NewFromInt(int64(n)), nil
	case uint32:
		return decimal.NewFromInt(int64(n)), nil
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0), nil
	case nil:
		return decimal.Decimal{}, errors.New("value is null")
	default:
		return decimal.Decimal{}, fmt.Errorf("cannot convert %T to decimal", v)
	}
}

// toInt truncates fractional numbers toward zero, but rejects strings that
// are not plain integers.
func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case uint:
		if n > math.MaxInt32 {
			return 0, fmt.Errorf("%d out of range", n)
		}
		return int(n), nil
	case uint64:
		if n > math.MaxInt32 {
			return 0, fmt.Errorf("%d out of range", n)
		}
		return int(n), nil
	case float64:
		return truncate(n)
	case float32:
		return truncate(float64(n))
	case decimal.Decimal:
		return int(n.IntPart()), nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, err
		}
		return truncate(f)
	case string:
		return strconv.Atoi(strings.TrimSpace(n))
	case nil:
		return 0, errors.New("value is null")
	default:
		return 0, fmt.Errorf("cannot convert %T to integer", v)
	}
}

func truncate(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite number %v", f)
	}
	if math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%v out of range", f)
	}
	return int(f), nil
}

// ParamOption overrides a single assumption
type ParamOption func(*Params)

// With returns a copy of p with the options applied
func (p Params) With(opts ...ParamOption) Params {
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// WithMonthlyRent sets the expected monthly rent
func WithMonthlyRent(rent decimal.Decimal) ParamOption {
	return func(p *Params) { p.MonthlyRent = rent }
}

// WithOccupancyRate sets the expected occupancy fraction
func WithOccupancyRate(rate decimal.Decimal) ParamOption {
	return func(p *Params) { p.OccupancyRate = rate }
}

// WithDownPaymentPercent sets the down payment fraction of price
func WithDownPaymentPercent(percent decimal.Decimal) ParamOption {
	return func(p *Params) { p.DownPaymentPercent = percent }
}

// WithMortgage sets the annual rate and term of the loan
func WithMortgage(rate decimal.Decimal, termYears int) ParamOption {
	return func(p *Params) {
		p.MortgageRate = rate
		p.MortgageTermYears = termYears
	}
}

// WithExpenseRates sets the four expense ratios
func WithExpenseRates(propertyTax, insurance, maintenance, managementFee decimal.Decimal) ParamOption {
	return func(p *Params) {
		p.PropertyTaxRate = propertyTax
		p.InsuranceRate = insurance
		p.MaintenanceRate = maintenance
		p.ManagementFeeRate = managementFee
	}
}

// WithStrategy sets the informational strategy tag
func WithStrategy(strategy string) ParamOption {
	return func(p *Params) { p.Strategy = strategy }
}
