package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/aristath/yieldwise/pkg/formulas"
	"github.com/shopspring/decimal"
)

// ErrNoProperties is returned when a comparison or portfolio has nothing to aggregate
var ErrNoProperties = errors.New("at least one property is required")

// PropertyAnalysis pairs a property with its analysis
type PropertyAnalysis struct {
	PropertyID int64   `json:"property_id"`
	Price      float64 `json:"price"`
	SizeSqm    float64 `json:"size_sqm"`
	Analysis   Result  `json:"analysis"`
}

// Comparison summarises several properties side by side
type Comparison struct {
	Properties   []PropertyAnalysis `json:"properties"`
	LowestPrice  float64            `json:"lowest_price"`
	HighestPrice float64            `json:"highest_price"`
	AveragePrice float64            `json:"avg_price"`
	AverageSize  float64            `json:"avg_size"`
	// AverageYield is the mean gross yield of properties with a non-zero
	// yield, or nil when none has one.
	AverageYield *float64 `json:"avg_yield"`
	// BestYieldIndex is the position in Properties of the highest gross
	// yield, or -1 when no property has a non-zero yield.
	BestYieldIndex int `json:"best_yield_index"`
	PropertyCount  int `json:"property_count"`
}

// PortfolioSummary aggregates the analyses of a set of holdings
type PortfolioSummary struct {
	Properties           []PropertyAnalysis `json:"properties"`
	TotalValue           float64            `json:"total_value"`
	TotalMonthlyCashFlow float64            `json:"total_monthly_cash_flow"`
	PropertyCount        int                `json:"property_count"`
	AverageYield         *float64           `json:"avg_yield"`
}

// analyzeAll runs an estimated analysis for each property through the cache
func (s *Service) analyzeAll(ctx context.Context, props []Property) ([]PropertyAnalysis, error) {
	if len(props) == 0 {
		return nil, ErrNoProperties
	}

	out := make([]PropertyAnalysis, 0, len(props))
	for _, prop := range props {
		result, err := s.Analyze(ctx, prop, nil, true)
		if err != nil {
			return nil, fmt.Errorf("failed to analyze property: %w", err)
		}
		out = append(out, PropertyAnalysis{
			PropertyID: prop.PropertyID(),
			Price:      prop.PropertyPrice().InexactFloat64(),
			SizeSqm:    prop.PropertySize().InexactFloat64(),
			Analysis:   result,
		})
	}
	return out, nil
}

// averageNonZeroYield returns the mean of the non-zero gross yields
func averageNonZeroYield(analyses []PropertyAnalysis) *float64 {
	yields := make([]float64, len(analyses))
	for i, a := range analyses {
		yields[i] = a.Analysis.GrossYield.InexactFloat64()
	}

	nonZero := formulas.NonZero(yields)
	if len(nonZero) == 0 {
		return nil
	}
	avg := formulas.Mean(nonZero)
	return &avg
}

// Compare analyzes each property and reports price, size and yield aggregates
func (s *Service) Compare(ctx context.Context, props []Property) (Comparison, error) {
	analyses, err := s.analyzeAll(ctx, props)
	if err != nil {
		return Comparison{}, err
	}

	prices := make([]float64, len(analyses))
	sizes := make([]float64, len(analyses))
	yields := make([]float64, len(analyses))
	for i, a := range analyses {
		prices[i] = a.Price
		sizes[i] = a.SizeSqm
		yields[i] = a.Analysis.GrossYield.InexactFloat64()
	}

	best := -1
	if len(formulas.NonZero(yields)) > 0 {
		best = formulas.MaxIndex(yields)
	}

	return Comparison{
		Properties:     analyses,
		LowestPrice:    formulas.Min(prices),
		HighestPrice:   formulas.Max(prices),
		AveragePrice:   formulas.Mean(prices),
		AverageSize:    formulas.Mean(sizes),
		AverageYield:   averageNonZeroYield(analyses),
		BestYieldIndex: best,
		PropertyCount:  len(analyses),
	}, nil
}

// Portfolio analyzes each holding and totals value and monthly cash flow
func (s *Service) Portfolio(ctx context.Context, props []Property) (PortfolioSummary, error) {
	analyses, err := s.analyzeAll(ctx, props)
	if err != nil {
		return PortfolioSummary{}, err
	}

	totalValue := decimal.Zero
	totalCashFlow := decimal.Zero
	for i, prop := range props {
		totalValue = totalValue.Add(prop.PropertyPrice())
		totalCashFlow = totalCashFlow.Add(analyses[i].Analysis.MonthlyCashFlow)
	}

	return PortfolioSummary{
		Properties:           analyses,
		TotalValue:           totalValue.InexactFloat64(),
		TotalMonthlyCashFlow: totalCashFlow.InexactFloat64(),
		PropertyCount:        len(analyses),
		AverageYield:         averageNonZeroYield(analyses),
	}, nil
}
