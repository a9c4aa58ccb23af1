// Package properties provides the property catalogue read model the
// analysis engine consumes, plus the price update that invalidates it.
package properties

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a property or region does not exist
var ErrNotFound = errors.New("not found")

// Region holds regional market averages
type Region struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	Code           string           `json:"code"`
	AvgPricePerSqm *decimal.Decimal `json:"avg_price_per_sqm"`
	AvgRent        *decimal.Decimal `json:"avg_rent"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// Property is a catalogue listing
type Property struct {
	ID           int64           `json:"id"`
	Address      string          `json:"address"`
	Price        decimal.Decimal `json:"price"`
	SizeSqm      decimal.Decimal `json:"size_sqm"`
	PropertyType string          `json:"property_type"`
	Region       *Region         `json:"region,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// PropertyID implements analysis.Property
func (p *Property) PropertyID() int64 { return p.ID }

// PropertyPrice implements analysis.Property
func (p *Property) PropertyPrice() decimal.Decimal { return p.Price }

// PropertySize implements analysis.Property
func (p *Property) PropertySize() decimal.Decimal { return p.SizeSqm }

// RegionAverageRent implements analysis.Property. A zero average counts as absent.
func (p *Property) RegionAverageRent() (decimal.Decimal, bool) {
	if p.Region == nil || p.Region.AvgRent == nil || p.Region.AvgRent.IsZero() {
		return decimal.Decimal{}, false
	}
	return *p.Region.AvgRent, true
}

// PricePerSqm returns price divided by size, or false when size is not positive
func (p *Property) PricePerSqm() (decimal.Decimal, bool) {
	if !p.SizeSqm.IsPositive() {
		return decimal.Decimal{}, false
	}
	return p.Price.DivRound(p.SizeSqm, 28), true
}

// RegionComparison compares a property's price per m² with its region average.
// Difference fields are only set when both figures exist.
type RegionComparison struct {
	PropertyID             int64    `json:"property_id"`
	PropertyPricePerSqm    *float64 `json:"property_price_per_sqm"`
	RegionAvgPricePerSqm   *float64 `json:"region_avg_price_per_sqm"`
	PriceDifference        *float64 `json:"price_difference,omitempty"`
	PriceDifferencePercent *float64 `json:"price_difference_percent,omitempty"`
	IsBelowAverage         *bool    `json:"is_below_average,omitempty"`
}
