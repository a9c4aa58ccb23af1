package formulas

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyMortgagePayment(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      string
		years     int
		expected  string
	}{
		{"30 year at 3.5%", "240000", "0.035", 30, "1077.71"},
		{"15 year at 6%", "100000", "0.06", 15, "843.86"},
		{"1 year at 12%", "12000", "0.12", 1, "1066.19"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payment := MonthlyMortgagePayment(
				decimal.RequireFromString(tt.principal),
				decimal.RequireFromString(tt.rate),
				tt.years,
			)
			require.NotNil(t, payment)
			assert.Equal(t, tt.expected, payment.RoundBank(2).StringFixed(2))
		})
	}
}

func TestMonthlyMortgagePayment_NonPositiveInputs(t *testing.T) {
	tests := []struct {
		name      string
		principal decimal.Decimal
		rate      decimal.Decimal
		years     int
	}{
		{"zero principal", decimal.Zero, decimal.RequireFromString("0.035"), 30},
		{"negative principal", decimal.NewFromInt(-1), decimal.RequireFromString("0.035"), 30},
		{"zero rate", decimal.NewFromInt(240000), decimal.Zero, 30},
		{"zero term", decimal.NewFromInt(240000), decimal.RequireFromString("0.035"), 0},
		{"negative term", decimal.NewFromInt(240000), decimal.RequireFromString("0.035"), -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, MonthlyMortgagePayment(tt.principal, tt.rate, tt.years))
		})
	}
}

func TestCompoundFactor(t *testing.T) {
	rate := decimal.RequireFromString("0.1")
	assert.True(t, CompoundFactor(rate, 0).Equal(decimal.NewFromInt(1)))
	assert.True(t, CompoundFactor(rate, -3).Equal(decimal.NewFromInt(1)))
	assert.True(t, CompoundFactor(rate, 1).Equal(decimal.RequireFromString("1.1")))
	assert.True(t, CompoundFactor(rate, 2).Equal(decimal.RequireFromString("1.21")))
	assert.True(t, CompoundFactor(rate, 5).Equal(decimal.RequireFromString("1.61051")))
	assert.True(t, CompoundFactor(decimal.NewFromInt(1), 10).Equal(decimal.NewFromInt(1024)))
}

func TestCompoundFactor_MatchesStepwiseProduct(t *testing.T) {
	rate := decimal.RequireFromString("0.035").DivRound(twelve, Precision)
	base := one.Add(rate)

	stepwise := one
	for i := 0; i < 360; i++ {
		stepwise = stepwise.Mul(base).Round(Precision)
	}

	diff := CompoundFactor(rate, 360).Sub(stepwise).Abs()
	assert.True(t, diff.LessThan(decimal.New(1, -20)), "difference %s", diff)
}

func TestMonthlyMortgagePayment_LongTermIsFast(t *testing.T) {
	start := time.Now()
	payment := MonthlyMortgagePayment(
		decimal.NewFromInt(240000),
		decimal.RequireFromString("0.035"),
		1000,
	)
	elapsed := time.Since(start)

	require.NotNil(t, payment)
	// Over a very long term the payment approaches the interest-only amount
	assert.Equal(t, "700.00", payment.RoundBank(2).StringFixed(2))
	assert.Less(t, elapsed, time.Second)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "4.56", Percent(decimal.NewFromInt(13680), decimal.NewFromInt(300000)).RoundBank(2).StringFixed(2))
	assert.True(t, Percent(decimal.NewFromInt(100), decimal.Zero).IsZero())
	assert.True(t, Percent(decimal.NewFromInt(100), decimal.NewFromInt(-5)).IsZero())
}

func TestMonthlyAnnual(t *testing.T) {
	assert.Equal(t, "669.00", Monthly(decimal.NewFromInt(8028)).RoundBank(2).StringFixed(2))
	assert.True(t, Annual(decimal.NewFromInt(1200)).Equal(decimal.NewFromInt(14400)))
}
