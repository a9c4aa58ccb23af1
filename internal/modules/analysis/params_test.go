package analysis

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()

	assert.True(t, p.MonthlyRent.IsZero())
	assert.True(t, p.OccupancyRate.Equal(dec("0.95")))
	assert.True(t, p.PropertyTaxRate.Equal(dec("0.003")))
	assert.True(t, p.InsuranceRate.Equal(dec("0.002")))
	assert.True(t, p.MaintenanceRate.Equal(dec("0.01")))
	assert.True(t, p.ManagementFeeRate.Equal(dec("0.08")))
	assert.True(t, p.DownPaymentPercent.Equal(dec("0.2")))
	assert.True(t, p.MortgageRate.Equal(dec("0.035")))
	assert.Equal(t, 30, p.MortgageTermYears)
	assert.Equal(t, "rental", p.Strategy)
}

func TestParseParams_Empty(t *testing.T) {
	p, err := ParseParams(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultParams(), p)
}

func TestParseParams_AllFields(t *testing.T) {
	p, err := ParseParams(map[string]interface{}{
		"monthly_rent":         "1200",
		"occupancy_rate":       0.9,
		"property_tax_rate":    json.Number("0.004"),
		"insurance_rate":       decimal.RequireFromString("0.001"),
		"maintenance_rate":     0.015,
		"management_fee_rate":  "0.1",
		"down_payment_percent": 0.25,
		"mortgage_rate":        "0.04",
		"mortgage_term_years":  "25",
		"strategy":             "flip",
	})
	require.NoError(t, err)

	assert.True(t, p.MonthlyRent.Equal(dec("1200")))
	assert.True(t, p.OccupancyRate.Equal(dec("0.9")))
	assert.True(t, p.PropertyTaxRate.Equal(dec("0.004")))
	assert.True(t, p.InsuranceRate.Equal(dec("0.001")))
	assert.True(t, p.MaintenanceRate.Equal(dec("0.015")))
	assert.True(t, p.ManagementFeeRate.Equal(dec("0.1")))
	assert.True(t, p.DownPaymentPercent.Equal(dec("0.25")))
	assert.True(t, p.MortgageRate.Equal(dec("0.04")))
	assert.Equal(t, 25, p.MortgageTermYears)
	assert.Equal(t, "flip", p.Strategy)
}

func TestParseParams_PartialKeepsDefaults(t *testing.T) {
	p, err := ParseParams(map[string]interface{}{"monthly_rent": 1500})
	require.NoError(t, err)

	expected := DefaultParams()
	expected.MonthlyRent = dec("1500")
	assert.True(t, p.MonthlyRent.Equal(expected.MonthlyRent))
	assert.True(t, p.OccupancyRate.Equal(expected.OccupancyRate))
	assert.Equal(t, expected.MortgageTermYears, p.MortgageTermYears)
}

func TestParseParams_UnknownKeysIgnored(t *testing.T) {
	p, err := ParseParams(map[string]interface{}{
		"monthly_rent":   "1000",
		"vacancy_buffer": "not even a number",
		"MonthlyRent":    "5000",
	})
	require.NoError(t, err)
	assert.True(t, p.MonthlyRent.Equal(dec("1000")))
}

func TestParseParams_Term(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected int
	}{
		{"int", 20, 20},
		{"int64", int64(15), 15},
		{"float truncates", 25.9, 25},
		{"json integer", json.Number("10"), 10},
		{"json fraction truncates", json.Number("12.7"), 12},
		{"string", " 30 ", 30},
		{"decimal truncates", dec("7.99"), 7},
		{"zero is allowed", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseParams(map[string]interface{}{"mortgage_term_years": tt.value})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p.MortgageTermYears)
		})
	}
}

func TestParseParams_ConversionErrors(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]interface{}
	}{
		{"rent not a number", map[string]interface{}{"monthly_rent": "twelve hundred"}},
		{"rent null", map[string]interface{}{"monthly_rent": nil}},
		{"rent bool", map[string]interface{}{"monthly_rent": true}},
		{"rate empty string", map[string]interface{}{"mortgage_rate": ""}},
		{"rate NaN", map[string]interface{}{"occupancy_rate": math.NaN()}},
		{"rate inf", map[string]interface{}{"insurance_rate": math.Inf(1)}},
		{"rate slice", map[string]interface{}{"maintenance_rate": []int{1}}},
		{"term fractional string", map[string]interface{}{"mortgage_term_years": "30.5"}},
		{"term word", map[string]interface{}{"mortgage_term_years": "thirty"}},
		{"term null", map[string]interface{}{"mortgage_term_years": nil}},
		{"term NaN", map[string]interface{}{"mortgage_term_years": math.NaN()}},
		{"strategy number", map[string]interface{}{"strategy": 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseParams(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestParseParams_Bounds(t *testing.T) {
	t.Run("longest term accepted", func(t *testing.T) {
		p, err := ParseParams(map[string]interface{}{"mortgage_term_years": MaxMortgageTermYears})
		require.NoError(t, err)
		assert.Equal(t, MaxMortgageTermYears, p.MortgageTermYears)
	})

	tests := []struct {
		name  string
		input map[string]interface{}
	}{
		{"term over limit", map[string]interface{}{"mortgage_term_years": MaxMortgageTermYears + 1}},
		{"term from huge float", map[string]interface{}{"mortgage_term_years": 2e9}},
		{"term from huge json number", map[string]interface{}{"mortgage_term_years": json.Number("2000000000")}},
		{"rent huge exponent", map[string]interface{}{"monthly_rent": "1e100000"}},
		{"rate tiny exponent", map[string]interface{}{"mortgage_rate": "1e-100000"}},
		{"rent too many digits", map[string]interface{}{"monthly_rent": "123456789012345678901234567890123456789012345"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseParams(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestParams_Validate(t *testing.T) {
	assert.NoError(t, DefaultParams().Validate())
	assert.NoError(t, DefaultParams().With(WithMortgage(dec("0.035"), 0)).Validate())

	err := DefaultParams().With(WithMortgage(dec("0.035"), 2000000000)).Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	assert.Contains(t, err.Error(), "mortgage_term_years")
}

func TestParseParams_ErrorNamesField(t *testing.T) {
	_, err := ParseParams(map[string]interface{}{"down_payment_percent": "lots"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "down_payment_percent")
}

func TestParseParams_FromJSONBody(t *testing.T) {
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"monthly_rent": 1200, "mortgage_term_years": 20, "strategy": "rental"}`), &raw))

	p, err := ParseParams(raw)
	require.NoError(t, err)
	assert.True(t, p.MonthlyRent.Equal(dec("1200")))
	assert.Equal(t, 20, p.MortgageTermYears)
}

func TestParams_With(t *testing.T) {
	base := DefaultParams()
	p := base.With(
		WithMonthlyRent(dec("1200")),
		WithOccupancyRate(dec("0.9")),
		WithDownPaymentPercent(dec("1")),
		WithMortgage(dec("0.05"), 15),
		WithExpenseRates(dec("0.001"), dec("0.001"), dec("0.001"), dec("0.05")),
		WithStrategy("airbnb"),
	)

	assert.True(t, p.MonthlyRent.Equal(dec("1200")))
	assert.True(t, p.OccupancyRate.Equal(dec("0.9")))
	assert.True(t, p.DownPaymentPercent.Equal(dec("1")))
	assert.True(t, p.MortgageRate.Equal(dec("0.05")))
	assert.Equal(t, 15, p.MortgageTermYears)
	assert.True(t, p.ManagementFeeRate.Equal(dec("0.05")))
	assert.Equal(t, "airbnb", p.Strategy)

	// The receiver is untouched
	assert.True(t, base.MonthlyRent.IsZero())
	assert.Equal(t, "rental", base.Strategy)
}
