package testing

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/aristath/yieldwise/internal/modules/properties"
)

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// NewRegionFixtures returns a set of test regions. Patras has no averages.
func NewRegionFixtures() []*properties.Region {
	return []*properties.Region{
		{Name: "Athens Centre", Code: "ATH", AvgPricePerSqm: decimalPtr("4500"), AvgRent: decimalPtr("1100")},
		{Name: "Thessaloniki", Code: "SKG", AvgPricePerSqm: decimalPtr("2800"), AvgRent: decimalPtr("750")},
		{Name: "Patras", Code: "GPA"},
	}
}

// NewPropertyFixtures returns test properties; region i is attached when regionIdx[i] >= 0
func NewPropertyFixtures() ([]*properties.Property, []int) {
	props := []*properties.Property{
		{Address: "12 Ermou", Price: decimal.NewFromInt(300000), SizeSqm: decimal.NewFromInt(75), PropertyType: "apartment"},
		{Address: "4 Tsimiski", Price: decimal.NewFromInt(200000), SizeSqm: decimal.NewFromInt(80), PropertyType: "apartment"},
		{Address: "9 Maizonos", Price: decimal.NewFromInt(120000), SizeSqm: decimal.NewFromInt(60), PropertyType: "house"},
		{Address: "1 Unlisted Road", Price: decimal.NewFromInt(150000), SizeSqm: decimal.NewFromInt(50), PropertyType: "apartment"},
	}
	return props, []int{0, 1, 2, -1}
}

// SeedCatalog inserts the region and property fixtures and returns the stored properties
func SeedCatalog(t *testing.T, repo *properties.Repository) []*properties.Property {
	t.Helper()
	ctx := context.Background()

	regions := NewRegionFixtures()
	for _, r := range regions {
		if err := repo.CreateRegion(ctx, r); err != nil {
			t.Fatalf("Failed to seed region %s: %v", r.Name, err)
		}
	}

	props, regionIdx := NewPropertyFixtures()
	for i, p := range props {
		if regionIdx[i] >= 0 {
			p.Region = regions[regionIdx[i]]
		}
		if err := repo.CreateProperty(ctx, p); err != nil {
			t.Fatalf("Failed to seed property %s: %v", p.Address, err)
		}
	}

	return props
}
