package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/engine"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/ingest"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/models"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/output"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/region"
)

func newRDSCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rds",
		Short: "RDS reserved instance pricing",
	}
	cmd.AddCommand(newRDSPriceCmd(a))
	cmd.AddCommand(newRDSDiscoverCmd(a))
	return cmd
}

func newRDSPriceCmd(a *app) *cobra.Command {
	var (
		file    string
		inline  string
		specs   []string
		format  string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price RDS instances on demand and for one-year reserved tiers",
		Long: "Entries come from a JSON array (--file, --json) or from repeated\n" +
			"--entry engine=PostgreSQL,instance_type=db.t3.medium,region=Paris,multi_az=Oui\n" +
			"specs. Missing start/end default to today and one year later.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			entries, err := a.readPricingEntries(cmd, file, inline, specs)
			if err != nil {
				return err
			}

			adv, err := a.advisor(cmd.Context())
			if err != nil {
				return err
			}
			return a.priceAndEmit(cmd, adv, entries, format, outPath)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "JSON file holding an array of entries")
	cmd.Flags().StringVar(&inline, "json", "", "Inline JSON array of entries")
	cmd.Flags().StringArrayVar(&specs, "entry", nil, "Entry as key=value pairs; repeatable")
	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table, csv or json")
	cmd.Flags().StringVar(&outPath, "output", "", "Write results to this file instead of stdout")
	return cmd
}

// readPricingEntries reads entries from exactly one source. Rejected form
// specs are reported on stderr; the rest are still priced.
func (a *app) readPricingEntries(cmd *cobra.Command, file, inline string, specs []string) ([]models.PricingEntry, error) {
	sources := 0
	for _, set := range []bool{file != "", inline != "", len(specs) > 0} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return nil, errors.New("exactly one of --file, --json or --entry is required")
	}

	switch {
	case file != "":
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("open %q: %w", file, err)
		}
		defer f.Close()
		return ingest.ParseRDSJSON(f)
	case inline != "":
		return ingest.ParseRDSJSON(strings.NewReader(inline))
	}

	entries, errs := ingest.ParseRDSForm(specs, a.now())
	for _, err := range errs {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped entry: %v\n", err)
	}
	if len(entries) == 0 {
		return nil, errors.New("no valid entries")
	}
	return entries, nil
}

func (a *app) priceAndEmit(cmd *cobra.Command, adv *engine.Advisor, entries []models.PricingEntry, format, outPath string) error {
	s := adv.NewSession()
	stop := a.startSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Pricing %d RDS instance(s)", len(entries)))
	recs := s.PriceAll(cmd.Context(), entries)
	stop()

	return writeOutput(cmd, outPath, func(w io.Writer) error {
		switch format {
		case formatCSV:
			return output.WriteRDSCSV(w, recs)
		case formatJSON:
			return output.WriteJSON(w, recs)
		}
		output.RenderRDSTable(w, recs, a.tableOptions())
		return nil
	})
}

func newRDSDiscoverCmd(a *app) *cobra.Command {
	var (
		selector string
		price    bool
		format   string
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List PostgreSQL and MariaDB instances as pricing entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			ctx := cmd.Context()
			profile, err := a.loadProfile(ctx)
			if err != nil {
				return err
			}
			regions := region.Expand(selector)

			stop := a.startSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Discovering RDS instances in %d region(s)", len(regions)))
			inv := a.newCollector(profile, a.provider, a.logger).DiscoverRDS(ctx, regions)
			stop()

			for _, r := range inv.SkippedRegions {
				a.logger.WithField("region", r).Warn("Region skipped")
			}

			if price && len(inv.Entries) > 0 {
				adv := engine.NewAdvisor(a.catalogFor(profile), a.logger)
				return a.priceAndEmit(cmd, adv, inv.Entries, format, "")
			}

			w := cmd.OutOrStdout()
			switch format {
			case formatJSON:
				return output.WriteJSON(w, inv)
			case formatCSV:
				return output.WriteEntriesCSV(w, inv.Entries)
			}
			output.RenderEntriesTable(w, inv.Entries)
			return nil
		},
	}

	cmd.Flags().StringVar(&selector, "region", region.AllRegions, `Region label, code, or "All Regions"`)
	cmd.Flags().BoolVar(&price, "price", false, "Price the discovered instances")
	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table, csv or json")
	return cmd
}
