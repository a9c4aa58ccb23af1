package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aristath/yieldwise/internal/config"
	"github.com/aristath/yieldwise/internal/di"
)

func newPropertyCmd(global *globalOptions) *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "property <id>",
		Short: "Analyze a property from the catalogue database",
		Long: `Loads the property from catalog.db in YIELDWISE_DATA_DIR and analyzes it
through the configured analysis cache, so results are shared with the server.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid property id %q", args[0])
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return runProperty(cmd, global, cfg, id, !noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the analysis cache")

	return cmd
}

func runProperty(cmd *cobra.Command, global *globalOptions, cfg *config.Config, id int64, useCache bool) error {
	log := global.newLogger()

	raw, err := global.overrides()
	if err != nil {
		return err
	}
	params, err := resolveParams(raw)
	if err != nil {
		return err
	}

	container, err := di.Wire(cfg, log)
	if err != nil {
		return err
	}
	defer container.Close()

	prop, err := container.PropertyService.Get(cmd.Context(), id)
	if err != nil {
		return err
	}

	result, err := container.AnalysisService.Analyze(cmd.Context(), prop, params, useCache)
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), result)
}
