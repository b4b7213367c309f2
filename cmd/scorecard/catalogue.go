package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Scorecard/internal/aggregation"
	"github.com/MikeSquared-Agency/Scorecard/internal/desirability"
	"github.com/MikeSquared-Agency/Scorecard/internal/profile"
	"github.com/MikeSquared-Agency/Scorecard/internal/strategy"
)

var catalogueCmd = &cobra.Command{
	Use:       "catalogue [desirability|aggregation]",
	Short:     "List the available desirability functions and aggregations.",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{desirability.Family, aggregation.Family},
	RunE: func(cmd *cobra.Command, args []string) error {
		descs, err := describe(profile.DefaultCatalogues(), args)
		if err != nil {
			return err
		}
		return writeCatalogueTable(cmd.OutOrStdout(), descs)
	},
}

func describe(cats profile.Catalogues, args []string) ([]strategy.Descriptor, error) {
	var out []strategy.Descriptor
	if len(args) == 0 || args[0] == desirability.Family {
		d, err := cats.Desirability.DescribeAll()
		if err != nil {
			return nil, fmt.Errorf("describe desirability: %w", err)
		}
		out = append(out, d...)
	}
	if len(args) == 0 || args[0] == aggregation.Family {
		a, err := cats.Aggregation.DescribeAll()
		if err != nil {
			return nil, fmt.Errorf("describe aggregation: %w", err)
		}
		out = append(out, a...)
	}
	return out, nil
}
