package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_MarshalJSON(t *testing.T) {
	r := Calculate(dec("300000"), DefaultParams().With(WithMonthlyRent(dec("1200"))))

	data, err := json.Marshal(r)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"gross_yield": 4.56,
		"net_yield": 2.68,
		"annual_gross_income": 13680,
		"annual_expenses": 5652,
		"annual_net_income": 8028,
		"monthly_cash_flow": -408.71,
		"cash_on_cash_return": -8.17,
		"total_roi": 66.9,
		"payback_years": 37.4,
		"expense_breakdown": {
			"property_tax": 900,
			"insurance": 600,
			"maintenance": 3000,
			"management_fee": 1152
		},
		"monthly_mortgage_payment": 1077.71
	}`, string(data))
}

func TestResult_MarshalJSON_NullMortgage(t *testing.T) {
	r := Calculate(dec("300000"), DefaultParams().With(WithDownPaymentPercent(dec("1"))))

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Contains(t, out, "monthly_mortgage_payment")
	assert.Nil(t, out["monthly_mortgage_payment"])
}

func TestResult_MarshalJSON_PaymentRoundingToZeroIsNull(t *testing.T) {
	r := Calculate(dec("300000"), DefaultParams())
	zero := dec("0")
	r.MonthlyMortgagePayment = &zero

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"monthly_mortgage_payment":null`)
}

func TestResult_Equal(t *testing.T) {
	a := Calculate(dec("300000"), DefaultParams().With(WithMonthlyRent(dec("1200"))))
	b := Calculate(dec("300000"), DefaultParams().With(WithMonthlyRent(dec("1200"))))
	c := Calculate(dec("300000"), DefaultParams().With(WithMonthlyRent(dec("1300"))))
	cash := Calculate(dec("300000"), DefaultParams().With(WithMonthlyRent(dec("1200")), WithDownPaymentPercent(dec("1"))))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(cash))
}
