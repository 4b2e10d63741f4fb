package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/engine"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/ingest"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/models"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/output"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/providers/aws/inventory"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/region"
)

func newEC2Cmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ec2",
		Short: "EC2 Graviton comparison",
	}
	cmd.AddCommand(newEC2CompareCmd(a))
	cmd.AddCommand(newEC2DiscoverCmd(a))
	return cmd
}

func newEC2CompareCmd(a *app) *cobra.Command {
	var (
		file    string
		inline  string
		filter  bool
		format  string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare EC2 instance shapes from a CSV against Graviton types",
		Long: "Reads instance_type,vcpus,memory_gb,region rows and lists up to five\n" +
			"Graviton types with the same vCPU count and memory, cheapest first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			entries, err := readEC2Entries(file, inline)
			if err != nil {
				return err
			}

			adv, err := a.advisor(cmd.Context())
			if err != nil {
				return err
			}
			s := adv.NewSession()

			stop := a.startSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Comparing %d instance type(s)", len(entries)))
			rows := s.CompareAll(cmd.Context(), entries)
			stop()

			return a.emitComparison(cmd, rows, filter, format, outPath)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "CSV file with instance_type,vcpus,memory_gb,region columns")
	cmd.Flags().StringVar(&inline, "csv", "", "Inline CSV content, header included")
	cmd.Flags().BoolVar(&filter, "filter", false, "Keep only the cheapest candidate per instance type and region")
	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table, csv or json")
	cmd.Flags().StringVar(&outPath, "output", "", "Write results to this file instead of stdout")
	return cmd
}

func readEC2Entries(file, inline string) ([]models.EC2Entry, error) {
	switch {
	case file != "" && inline != "":
		return nil, errors.New("--file and --csv are mutually exclusive")
	case file != "":
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("open %q: %w", file, err)
		}
		defer f.Close()
		return ingest.ParseEC2CSV(f)
	case inline != "":
		return ingest.ParseEC2CSV(strings.NewReader(inline))
	}
	return nil, errors.New("one of --file or --csv is required")
}

// emitComparison applies the cheapest filter when asked and writes rows in
// format.
func (a *app) emitComparison(cmd *cobra.Command, rows []models.ComparisonResult, filter bool, format, outPath string) error {
	if filter {
		filtered, ok := engine.FilterCheapest(rows)
		if !ok {
			fmt.Fprintln(cmd.ErrOrStderr(), engine.NothingToFilter)
			return nil
		}
		rows = filtered
	}
	return writeOutput(cmd, outPath, func(w io.Writer) error {
		switch format {
		case formatCSV:
			return output.WriteComparisonCSV(w, rows)
		case formatJSON:
			return output.WriteJSON(w, rows)
		}
		output.RenderComparisonTable(w, rows, a.tableOptions())
		return nil
	})
}

// discoverReport is the JSON form of ec2 discover.
type discoverReport struct {
	*models.EC2Inventory
	Comparison []models.ComparisonResult `json:"comparison,omitempty"`
}

func newEC2DiscoverCmd(a *app) *cobra.Command {
	var (
		selector string
		check    bool
		filter   bool
		days     int
		format   string
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List running EC2 instances and scheduled events, optionally comparing them",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatTable && format != formatJSON {
				return fmt.Errorf("invalid --format %q: must be table or json", format)
			}
			ctx := cmd.Context()
			profile, err := a.loadProfile(ctx)
			if err != nil {
				return err
			}
			regions := region.Expand(selector)

			stop := a.startSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Discovering EC2 instances in %d region(s)", len(regions)))
			inv := a.newCollector(profile, a.provider, a.logger).DiscoverEC2(ctx, regions, inventory.Options{DaysBack: days})
			stop()

			for _, r := range inv.SkippedRegions {
				a.logger.WithField("region", r).Warn("Region skipped")
			}

			report := discoverReport{EC2Inventory: inv}
			if check {
				entries := inventory.Comparable(inv.Instances)
				a.logger.WithFields(logrus.Fields{
					"instances":  len(inv.Instances),
					"comparable": len(entries),
				}).Info("Running Graviton check")

				s := engine.NewAdvisor(a.catalogFor(profile), a.logger).NewSession()
				stop := a.startSpinner(cmd.ErrOrStderr(), "Running Graviton check")
				report.Comparison = s.CompareAll(ctx, entries)
				stop()

				if filter {
					if filtered, ok := engine.FilterCheapest(report.Comparison); ok {
						report.Comparison = filtered
					} else {
						report.Comparison = nil
						fmt.Fprintln(cmd.ErrOrStderr(), engine.NothingToFilter)
					}
				}
			}

			w := cmd.OutOrStdout()
			if format == formatJSON {
				return output.WriteJSON(w, report)
			}
			output.RenderInstancesTable(w, inv.Instances)
			fmt.Fprintln(w)
			output.RenderEventsTable(w, inv.Events)
			if check && len(report.Comparison) > 0 {
				fmt.Fprintln(w)
				output.RenderComparisonTable(w, report.Comparison, a.tableOptions())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&selector, "region", region.AllRegions, `Region label, code, or "All Regions"`)
	cmd.Flags().BoolVar(&check, "check", false, "Run the Graviton check on discovered instances")
	cmd.Flags().BoolVar(&filter, "filter", false, "With --check, keep only the cheapest candidate per instance type and region")
	cmd.Flags().IntVar(&days, "days", 0, "CloudWatch lookback window in days for average CPU (0 disables)")
	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table or json")
	return cmd
}
