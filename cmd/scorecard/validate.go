package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Scorecard/internal/profile"
)

var validateCmd = &cobra.Command{
	Use:   "validate <profile>",
	Short: "Check a profile file and report every problem found.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		p, err := profile.LoadFile(args[0], profile.DefaultCatalogues())
		var verr *profile.ValidationError
		if errors.As(err, &verr) {
			for _, issue := range verr.Issues {
				fmt.Fprintf(out, "%s %s: %v\n", color.RedString("✗"), issue.Path, issue.Err)
			}
			return fmt.Errorf("%s: %d issue(s): %w", args[0], len(verr.Issues), profile.ErrProfileInvalid)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s: %d objective(s), aggregation %s\n",
			color.GreenString("✓"), args[0], len(p.ObjectiveNames()), p.Aggregation().Name)
		return nil
	},
}
