package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Scorecard/internal/profile"
	"github.com/MikeSquared-Agency/Scorecard/internal/scoring"
)

var (
	scoreProfilePath string
	scoreRecordsPath string
	scoreOutput      string
	scoreMissing     string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a file of records against a profile file.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if scoreOutput != "table" && scoreOutput != "json" {
			return fmt.Errorf("unknown output %q (want table or json)", scoreOutput)
		}
		policy, err := scoring.ParseMissingPolicy(scoreMissing)
		if err != nil {
			return err
		}

		cats := profile.DefaultCatalogues()
		p, err := profile.LoadFile(scoreProfilePath, cats)
		if err != nil {
			return err
		}
		records, err := readRecords(scoreRecordsPath)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		sc := scoring.NewScorer(p, cats, scoring.WithMissingPolicy(policy), scoring.WithLogger(cliLogger(cfg, cmd.ErrOrStderr())))
		results, err := sc.ScoreBatch(records)
		if err != nil {
			return err
		}

		report := scoreReport{
			Objectives: p.ObjectiveNames(),
			Results:    results,
			Ranking:    scoring.Rank(results),
			Frontier:   sc.ParetoFrontier(results),
		}
		if scoreOutput == "json" {
			return writeReportJSON(cmd.OutOrStdout(), report)
		}
		return writeReportTable(cmd.OutOrStdout(), report)
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreProfilePath, "profile", "", "profile file (.json, .yaml or .yml)")
	scoreCmd.Flags().StringVar(&scoreRecordsPath, "records", "", "records file mapping record id to objective values")
	scoreCmd.Flags().StringVar(&scoreOutput, "output", "table", "output format: table or json")
	scoreCmd.Flags().StringVar(&scoreMissing, "missing", string(scoring.MissingExclude), "missing objective policy: exclude or error")
	_ = scoreCmd.MarkFlagRequired("profile")
	_ = scoreCmd.MarkFlagRequired("records")
}

// readRecords loads {"id": {"objective": value}} from JSON or YAML. YAML is
// converted through JSON so numbers arrive as float64 either way.
func readRecords(path string) (map[string]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	format, err := profile.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	if format == profile.FormatYAML {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
		if data, err = json.Marshal(doc); err != nil {
			return nil, fmt.Errorf("convert records: %w", err)
		}
	}

	var records map[string]map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}
