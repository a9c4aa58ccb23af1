package analysis

import (
	testingpkg "github.com/aristath/yieldwise/internal/testing"
	"github.com/shopspring/decimal"
)

type testProperty struct {
	id         int64
	price      decimal.Decimal
	size       decimal.Decimal
	regionRent *decimal.Decimal
}

func (p testProperty) PropertyID() int64              { return p.id }
func (p testProperty) PropertyPrice() decimal.Decimal { return p.price }
func (p testProperty) PropertySize() decimal.Decimal  { return p.size }

func (p testProperty) RegionAverageRent() (decimal.Decimal, bool) {
	if p.regionRent == nil {
		return decimal.Decimal{}, false
	}
	return *p.regionRent, true
}

func newProperty(id int64, price, size string) testProperty {
	return testProperty{
		id:    id,
		price: decimal.RequireFromString(price),
		size:  decimal.RequireFromString(size),
	}
}

func (p testProperty) withRegionRent(rent string) testProperty {
	d := decimal.RequireFromString(rent)
	p.regionRent = &d
	return p
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var errCacheDown = testingpkg.ErrCacheDown

type (
	failingStore  = testingpkg.FailingStore
	countingStore = testingpkg.CountingStore
)
