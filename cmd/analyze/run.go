package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/aristath/yieldwise/internal/modules/analysis"
)

// adhocProperty is a property described entirely on the command line
type adhocProperty struct {
	price      decimal.Decimal
	size       decimal.Decimal
	regionRent *decimal.Decimal
}

func (p adhocProperty) PropertyID() int64              { return 0 }
func (p adhocProperty) PropertyPrice() decimal.Decimal { return p.price }
func (p adhocProperty) PropertySize() decimal.Decimal  { return p.size }

func (p adhocProperty) RegionAverageRent() (decimal.Decimal, bool) {
	if p.regionRent == nil || p.regionRent.IsZero() {
		return decimal.Decimal{}, false
	}
	return *p.regionRent, true
}

type runOptions struct {
	price      string
	size       string
	rent       string
	regionRent string
}

func newRunCmd(global *globalOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze a property described by flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdhoc(cmd, global, opts)
		},
	}

	cmd.Flags().StringVar(&opts.price, "price", "", "Purchase price (required)")
	cmd.Flags().StringVar(&opts.size, "size", "0", "Size in square metres")
	cmd.Flags().StringVar(&opts.rent, "rent", "", "Monthly rent, shorthand for --set monthly_rent=")
	cmd.Flags().StringVar(&opts.regionRent, "region-rent", "", "Regional average rent used when estimating")
	_ = cmd.MarkFlagRequired("price")

	return cmd
}

func runAdhoc(cmd *cobra.Command, global *globalOptions, opts *runOptions) error {
	log := global.newLogger()

	prop, err := opts.property()
	if err != nil {
		return err
	}

	raw, err := global.overrides()
	if err != nil {
		return err
	}
	if opts.rent != "" {
		raw[analysis.FieldMonthlyRent] = opts.rent
	}

	params, err := resolveParams(raw)
	if err != nil {
		return err
	}

	// Ad-hoc properties have no id, so they bypass the cached service
	p := analysis.EstimateParams(prop)
	if params != nil {
		p = *params
	}
	log.Debug().
		Str("price", prop.price.String()).
		Str("monthly_rent", p.MonthlyRent.String()).
		Bool("estimated", params == nil).
		Msg("Analyzing ad-hoc property")

	return printJSON(cmd.OutOrStdout(), analysis.Calculate(prop.price, p))
}

func (o *runOptions) property() (adhocProperty, error) {
	var prop adhocProperty

	price, err := decimal.NewFromString(o.price)
	if err != nil {
		return prop, fmt.Errorf("invalid --price %q: %w", o.price, err)
	}
	size, err := decimal.NewFromString(o.size)
	if err != nil {
		return prop, fmt.Errorf("invalid --size %q: %w", o.size, err)
	}
	prop.price = price
	prop.size = size

	if o.regionRent != "" {
		rent, err := decimal.NewFromString(o.regionRent)
		if err != nil {
			return prop, fmt.Errorf("invalid --region-rent %q: %w", o.regionRent, err)
		}
		prop.regionRent = &rent
	}

	return prop, nil
}
