package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/orchardcare/orchard-advisor/internal/domain/agronomy"
)

type classifyResult struct {
	Family          agronomy.Family           `json:"family"`
	Indicator       agronomy.Status           `json:"indicator"`
	Summary         agronomy.Summary          `json:"summary"`
	Classifications []agronomy.Classification `json:"classifications"`
}

func classifyCmd() *cobra.Command {
	var (
		family string
		margin float64
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "classify key=value...",
		Short: "Classify lab readings against the reference bands",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseReadings(args)
			if err != nil {
				return err
			}
			table := agronomy.DefaultReferenceTable()
			fam := agronomy.Family(strings.ToLower(family))
			clean, err := agronomy.ValidateSubmission(fam, values, table)
			if err != nil {
				return err
			}
			sample := &agronomy.Sample{Family: fam, Values: clean}
			summary := agronomy.Summarize(sample, table)
			classifications := agronomy.ClassifySample(sample, table, margin)
			res := classifyResult{
				Family:          fam,
				Indicator:       agronomy.Indicator(summary, agronomy.Measured(classifications)),
				Summary:         summary,
				Classifications: classifications,
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			return printClassification(cmd, res)
		},
	}
	cmd.Flags().StringVar(&family, "family", "soil", "Parameter family (soil or water)")
	cmd.Flags().Float64Var(&margin, "margin", agronomy.DefaultMargin, "Amber margin as a fraction of the band width")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func parseReadings(args []string) (map[string]float64, error) {
	out := make(map[string]float64, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("reading %q must look like key=value", arg)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", arg, err)
		}
		out[strings.TrimSpace(key)] = v
	}
	return out, nil
}

func printClassification(cmd *cobra.Command, res classifyResult) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "PARAMETER\tVALUE\tOPTIMAL\tSTATUS\tADVICE\n")
	for _, c := range res.Classifications {
		if c.Value == nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%g %s\t%g-%g\t%s\t%s\n", c.Label, *c.Value, c.Unit, c.Green.Min, c.Green.Max, c.Status, c.Advisory)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "\nIndicator: %s (%d lacking, %d excess)\n",
		res.Indicator, len(res.Summary.Lacking), len(res.Summary.Excess))
	return err
}
