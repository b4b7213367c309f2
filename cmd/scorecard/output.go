package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/MikeSquared-Agency/Scorecard/internal/scoring"
	"github.com/MikeSquared-Agency/Scorecard/internal/strategy"
)

const (
	excellentValue = "Excellent"
	goodValue      = "Good"
	fairValue      = "Fair"
	poorValue      = "Poor"
	absentValue    = "-"
)

var (
	excellentColor = color.New(color.FgGreen, color.Bold)
	goodColor      = color.New(color.FgGreen)
	fairColor      = color.New(color.FgYellow)
	poorColor      = color.New(color.FgRed)
)

// plainLabel buckets an aggregated score in [0,1].
func plainLabel(score float64) string {
	switch {
	case math.IsNaN(score):
		return absentValue
	case score >= 0.8:
		return excellentValue
	case score >= 0.6:
		return goodValue
	case score >= 0.4:
		return fairValue
	default:
		return poorValue
	}
}

func colorLabel(score float64) string {
	text := plainLabel(score)
	switch text {
	case excellentValue:
		return excellentColor.Sprint(text)
	case goodValue:
		return goodColor.Sprint(text)
	case fairValue:
		return fairColor.Sprint(text)
	case poorValue:
		return poorColor.Sprint(text)
	default:
		return text
	}
}

func formatScore(v float64) string {
	if math.IsNaN(v) {
		return absentValue
	}
	return fmt.Sprintf("%.4f", v)
}

type scoreReport struct {
	Objectives []string                  `json:"objectives"`
	Results    map[string]scoring.Result `json:"results"`
	Ranking    []scoring.Ranked          `json:"ranking"`
	Frontier   []string                  `json:"pareto_frontier"`
}

func writeReportJSON(w io.Writer, r scoreReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// writeReportTable prints one row per record in ranking order.
func writeReportTable(w io.Writer, r scoreReport) error {
	onFrontier := make(map[string]bool, len(r.Frontier))
	for _, id := range r.Frontier {
		onFrontier[id] = true
	}

	headers := append([]string{"Rank", "Record", "Score", "Label"}, r.Objectives...)
	headers = append(headers, "Pareto")

	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(r.Ranking))
	for _, ranked := range r.Ranking {
		res := ranked.Result
		row := []string{
			fmt.Sprint(ranked.Rank),
			ranked.ID,
			formatScore(res.AggregatedScore),
			colorLabel(res.AggregatedScore),
		}
		for _, name := range r.Objectives {
			row = append(row, formatScore(res.DesirabilityScores[name]))
		}
		mark := ""
		if onFrontier[ranked.ID] {
			mark = "*"
		}
		data = append(data, append(row, mark))
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeCatalogueTable lists strategies with their parameters.
func writeCatalogueTable(w io.Writer, descs []strategy.Descriptor) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Family", "Name", "Parameters"})

	data := make([][]string, 0, len(descs))
	for _, d := range descs {
		params := make([]string, 0, len(d.Parameters))
		for _, p := range d.Parameters {
			s := p.Name + ":" + string(p.Kind)
			if p.Mandatory {
				s += "*"
			} else if p.Default != nil {
				s += fmt.Sprintf("=%v", p.Default)
			}
			params = append(params, s)
		}
		data = append(data, []string{d.Family, d.Name, strings.Join(params, " ")})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
