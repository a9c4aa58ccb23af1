package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aristath/yieldwise/internal/modules/analysis"
	"github.com/aristath/yieldwise/pkg/logger"
)

// globalOptions are shared by every subcommand
type globalOptions struct {
	logLevel string
	pretty   bool
	sets     []string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Investment analysis for residential properties",
		Long: `Computes yields, cash flow, ROI and payback for a property.

Parameters start from the defaults (or from an estimate when none are given)
and can be overridden with --set key=value.

Examples:
  analyze run --price 300000 --size 100 --rent 1200
  analyze run --price 300000 --size 100 --set down_payment_percent=1
  analyze property 42 --set mortgage_rate=0.04`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&opts.pretty, "pretty", false, "Human-readable log output")
	rootCmd.PersistentFlags().StringArrayVar(&opts.sets, "set", nil, "Override an analysis parameter (key=value), repeatable")

	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newPropertyCmd(opts))

	return rootCmd
}

// newLogger keeps stdout free for results
func (o *globalOptions) newLogger() zerolog.Logger {
	return logger.NewWithWriter(logger.Config{Level: o.logLevel, Pretty: o.pretty}, os.Stderr)
}

// overrides parses --set pairs into loosely typed parameter overrides
func (o *globalOptions) overrides() (map[string]interface{}, error) {
	raw := make(map[string]interface{}, len(o.sets))
	for _, pair := range o.sets {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q, expected key=value", pair)
		}
		raw[key] = strings.TrimSpace(value)
	}
	return raw, nil
}

// resolveParams returns nil when nothing was overridden so the service estimates parameters
func resolveParams(raw map[string]interface{}) (*analysis.Params, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	params, err := analysis.ParseParams(raw)
	if err != nil {
		return nil, err
	}
	return &params, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
