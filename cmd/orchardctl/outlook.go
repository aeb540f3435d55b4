package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/orchardcare/orchard-advisor/internal/domain/forecast"
	"github.com/orchardcare/orchard-advisor/internal/infra/sprayprogram"
	"github.com/orchardcare/orchard-advisor/internal/infra/weather/openmeteo"
	"github.com/orchardcare/orchard-advisor/pkg/logger"
)

func outlookCmd() *cobra.Command {
	var (
		lat, lon float64
		baseURL  string
		days     int
		program  string
	)
	cmd := &cobra.Command{
		Use:   "outlook",
		Short: "Print the spray and irrigation outlook for a coordinate",
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := sprayprogram.Load(program)
			if err != nil {
				return err
			}
			svc := forecast.NewService(forecast.Config{}, openmeteo.NewClient(baseURL, days, 10*time.Second),
				nil, catalog, nil, logger.Discard())
			ctx, cancel := context.WithTimeout(cmd.Context(), 20*time.Second)
			defer cancel()
			resp, err := svc.Outlook(ctx, forecast.OutlookRequest{Latitude: lat, Longitude: lon})
			if err != nil {
				return err
			}
			return printOutlook(cmd, resp)
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude")
	cmd.Flags().StringVar(&baseURL, "base-url", "https://api.open-meteo.com/v1/forecast", "Forecast API endpoint")
	cmd.Flags().IntVar(&days, "days", 7, "Forecast days")
	cmd.Flags().StringVar(&program, "program", "", "Spray program YAML (built in program when empty)")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}

func printOutlook(cmd *cobra.Command, resp forecast.OutlookResponse) error {
	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "DATE\tSPRAY\tCONDITION\tRAIN%%\tWIND\n")
	for _, d := range resp.Outlook.Days {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.Date, d.Badge, d.Condition, fmtPtr(d.PrecipitationProb), fmtPtr(d.WindSpeed))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nHeavy rain: %t  Frost risk: %t  Spray safe today: %t\n",
		resp.Outlook.HeavyRain, resp.Outlook.FrostRisk, resp.Outlook.SpraySafe)
	fmt.Fprintf(out, "Irrigation: %s\n", resp.Outlook.IrrigationText)
	if len(resp.Actions) > 0 {
		fmt.Fprintln(out, "\nSmart actions:")
		for _, a := range resp.Actions {
			fmt.Fprintf(out, "  - %s (%s): %s %s\n", a.Name, a.Stage, a.Chemical, a.Dose)
		}
	}
	return nil
}

func fmtPtr(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}
