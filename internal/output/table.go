package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/models"
)

// defaultErrorWidth caps the error column when TableOptions.ErrorWidth is zero.
const defaultErrorWidth = 45

// TableOptions controls how the Render* functions draw tables.
type TableOptions struct {
	// Colored highlights savings and errors with ANSI codes. Default false (CI-safe).
	Colored bool

	// ErrorWidth is the maximum width of the ERROR column in runes.
	ErrorWidth int
}

func (o TableOptions) errorWidth() int {
	if o.ErrorWidth <= 0 {
		return defaultErrorWidth
	}
	return o.ErrorWidth
}

// ShortenMessage truncates msg to at most max runes, appending "..." when truncated.
// max is treated as at least 4 to guarantee space for the ellipsis.
func ShortenMessage(msg string, max int) string {
	if max < 4 {
		max = 4
	}
	runes := []rune(msg)
	if len(runes) <= max {
		return msg
	}
	return string(runes[:max-3]) + "..."
}

func newTable() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	return tw
}

func errorCell(msg string, opts TableOptions) string {
	msg = ShortenMessage(msg, opts.errorWidth())
	if opts.Colored && msg != "" {
		return text.FgRed.Sprint(msg)
	}
	return msg
}

func savingsCell(s string, opts TableOptions) string {
	if opts.Colored && s != "" {
		return text.FgGreen.Sprint(s)
	}
	return s
}

func rightAligned(numbers ...int) []table.ColumnConfig {
	cfgs := make([]table.ColumnConfig, 0, len(numbers))
	for _, n := range numbers {
		cfgs = append(cfgs, table.ColumnConfig{Number: n, Align: text.AlignRight})
	}
	return cfgs
}

// RenderComparisonTable writes EC2 comparison rows to w.
//
// Column order:
//
//	INPUT TYPE  REGION  ORIGINAL/MO  CANDIDATE  CANDIDATE/MO  SAVINGS  SAVINGS %  ERROR
func RenderComparisonTable(w io.Writer, rows []models.ComparisonResult, opts TableOptions) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No results.")
		return
	}
	tw := newTable()
	tw.AppendHeader(table.Row{"Input Type", "Region", "Original/mo", "Candidate", "Candidate/mo", "Savings", "Savings %", "Error"})
	for _, r := range rows {
		tw.AppendRow(table.Row{
			r.InputType,
			r.Region,
			r.OriginalMonthly,
			r.CandidateType,
			r.CandidateMonthly,
			savingsCell(r.SavingsUSD, opts),
			r.SavingsPercent,
			errorCell(r.Error, opts),
		})
	}
	tw.SetColumnConfigs(rightAligned(3, 5, 6, 7))
	fmt.Fprintln(w, tw.Render())
}

// RenderRDSTable writes RDS price records to w.
func RenderRDSTable(w io.Writer, recs []models.RDSPriceRecord, opts TableOptions) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "No results.")
		return
	}
	tw := newTable()
	tw.AppendHeader(table.Row{
		"Instance", "Engine", "Region", "Multi-AZ", "On-Demand/yr",
		"No Upfront/yr", "Saving", "Partial/yr", "Saving", "All Upfront/yr", "Saving", "Error",
	})
	for _, r := range recs {
		tw.AppendRow(table.Row{
			r.InstanceType,
			r.Engine,
			r.Region,
			r.MultiAZ,
			r.OnDemandAnnualUSD,
			r.NoUpfrontAnnualUSD,
			savingsCell(tierCell(r.NoUpfront), opts),
			r.PartialUpfrontAnnualUSD,
			savingsCell(tierCell(r.PartialUpfront), opts),
			r.AllUpfrontAnnualUSD,
			savingsCell(tierCell(r.AllUpfront), opts),
			errorCell(r.Error, opts),
		})
	}
	tw.SetColumnConfigs(rightAligned(5, 6, 7, 8, 9, 10, 11))
	fmt.Fprintln(w, tw.Render())
}

func tierCell(t models.TierSavings) string {
	if t.EconomyUSD == "" {
		return ""
	}
	return t.EconomyUSD + " (" + t.EconomyPercent + ")"
}

// RenderInstancesTable writes discovered EC2 instances to w.
func RenderInstancesTable(w io.Writer, instances []models.DiscoveredInstance) {
	if len(instances) == 0 {
		fmt.Fprintln(w, "There are no instances in this region, check other regions please.")
		return
	}
	tw := newTable()
	tw.AppendHeader(table.Row{"Instance ID", "Type", "vCPUs", "Memory GB", "Region", "State", "Avg CPU %"})
	for _, in := range instances {
		mem := "unknown"
		if in.MemoryGB != nil {
			mem = strconv.FormatFloat(*in.MemoryGB, 'f', -1, 64)
		}
		cpu := ""
		if in.AvgCPUPercent > 0 {
			cpu = fmt.Sprintf("%.1f", in.AvgCPUPercent)
		}
		tw.AppendRow(table.Row{in.InstanceID, in.InstanceType, in.VCPUs, mem, in.Region, in.State, cpu})
	}
	tw.SetColumnConfigs(rightAligned(3, 4, 7))
	fmt.Fprintln(w, tw.Render())
}

// RenderEventsTable writes scheduled EC2 events to w.
func RenderEventsTable(w io.Writer, events []models.ScheduledEvent) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No EC2 instances have scheduled events in the selected region(s).")
		return
	}
	tw := newTable()
	tw.AppendHeader(table.Row{"Instance ID", "Region", "Event", "Not Before", "Not After", "Description"})
	for _, e := range events {
		tw.AppendRow(table.Row{e.InstanceID, e.Region, e.EventCode, e.NotBefore, e.NotAfter, e.Description})
	}
	fmt.Fprintln(w, tw.Render())
}

// RenderEntriesTable writes pricing entries to w.
func RenderEntriesTable(w io.Writer, entries []models.PricingEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No database instances found.")
		return
	}
	tw := newTable()
	tw.AppendHeader(table.Row{"Engine", "Instance", "Region", "Multi-AZ", "Start", "End"})
	for _, e := range entries {
		tw.AppendRow(table.Row{e.Engine, e.InstanceType, e.Region, e.MultiAZ, e.Start, e.End})
	}
	fmt.Fprintln(w, tw.Render())
}
