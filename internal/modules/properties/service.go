package properties

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ErrInvalidPrice is returned when a price update is not positive
var ErrInvalidPrice = errors.New("price must be positive")

// Invalidator drops cached analyses for a property
type Invalidator interface {
	InvalidateCache(ctx context.Context, propertyID int64) bool
}

// Service exposes catalogue reads and the price update flow
type Service struct {
	repo        *Repository
	invalidator Invalidator
	log         zerolog.Logger
}

// NewService creates a new property service. invalidator may be nil.
func NewService(repo *Repository, invalidator Invalidator, log zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		invalidator: invalidator,
		log:         log.With().Str("service", "properties").Logger(),
	}
}

// Get returns a single property
func (s *Service) Get(ctx context.Context, id int64) (*Property, error) {
	return s.repo.GetByID(ctx, id)
}

// GetMany returns properties in the order requested
func (s *Service) GetMany(ctx context.Context, ids []int64) ([]*Property, error) {
	return s.repo.GetByIDs(ctx, ids)
}

// UpdatePrice stores a new price and drops every cached analysis of the property
func (s *Service) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (*Property, error) {
	if !price.IsPositive() {
		return nil, ErrInvalidPrice
	}

	if err := s.repo.UpdatePrice(ctx, id, price); err != nil {
		return nil, err
	}

	invalidated := false
	if s.invalidator != nil {
		invalidated = s.invalidator.InvalidateCache(ctx, id)
	}

	s.log.Info().
		Int64("property_id", id).
		Str("price", price.String()).
		Bool("cache_invalidated", invalidated).
		Msg("Property price updated")

	return s.repo.GetByID(ctx, id)
}

// RegionComparison compares the property's price per m² with its region average
func (s *Service) RegionComparison(ctx context.Context, id int64) (RegionComparison, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return RegionComparison{}, fmt.Errorf("region comparison: %w", err)
	}
	return CompareToRegion(p), nil
}

// CompareToRegion builds the comparison for an already loaded property
func CompareToRegion(p *Property) RegionComparison {
	cmp := RegionComparison{PropertyID: p.ID}

	ppsqm, hasPPSqm := p.PricePerSqm()
	if hasPPSqm {
		cmp.PropertyPricePerSqm = roundedFloat(ppsqm)
	}

	var avg decimal.Decimal
	hasAvg := p.Region != nil && p.Region.AvgPricePerSqm != nil
	if hasAvg {
		avg = *p.Region.AvgPricePerSqm
		cmp.RegionAvgPricePerSqm = roundedFloat(avg)
	}

	if !hasPPSqm || !hasAvg || avg.IsZero() {
		return cmp
	}

	diff := ppsqm.Sub(avg)
	pct := diff.DivRound(avg, 28).Mul(decimal.NewFromInt(100))
	below := diff.IsNegative()

	cmp.PriceDifference = roundedFloat(diff)
	cmp.PriceDifferencePercent = roundedFloat(pct)
	cmp.IsBelowAverage = &below
	return cmp
}

func roundedFloat(d decimal.Decimal) *float64 {
	f := d.RoundBank(2).InexactFloat64()
	return &f
}
