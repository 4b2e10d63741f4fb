package models

// ---------------------------------------------------------------------------
// Fetcher outputs
//
// Both record types are UI-ready projections: every monetary field is an
// already-formatted string. Empty strings mean "not populated" and render as
// empty CSV cells.
// ---------------------------------------------------------------------------

// ComparisonResult is one row of an EC2 Graviton comparison.
type ComparisonResult struct {
	InputType        string `json:"input_type"`
	InputVCPUs       string `json:"input_vcpus,omitempty"`
	InputMemoryGB    string `json:"input_memory_gb,omitempty"`
	Region           string `json:"region"`
	OriginalMonthly  string `json:"original_monthly,omitempty"`
	CandidateType    string `json:"candidate_type,omitempty"`
	CandidateMonthly string `json:"candidate_monthly,omitempty"`
	SavingsUSD       string `json:"savings_usd,omitempty"`
	SavingsPercent   string `json:"savings_percent,omitempty"`
	Error            string `json:"error,omitempty"`
}

// ComparisonColumns is the CSV header for ComparisonResult rows.
var ComparisonColumns = []string{
	"input_type",
	"input_vcpus",
	"input_memory_gb",
	"region",
	"original_monthly",
	"candidate_type",
	"candidate_monthly",
	"savings_usd",
	"savings_percent",
	"error",
}

// Values returns the row in ComparisonColumns order.
func (r ComparisonResult) Values() []string {
	return []string{
		r.InputType,
		r.InputVCPUs,
		r.InputMemoryGB,
		r.Region,
		r.OriginalMonthly,
		r.CandidateType,
		r.CandidateMonthly,
		r.SavingsUSD,
		r.SavingsPercent,
		r.Error,
	}
}

// ComparisonResultFromValues is the inverse of Values. Missing trailing
// values are left empty.
func ComparisonResultFromValues(v []string) ComparisonResult {
	at := func(i int) string {
		if i < len(v) {
			return v[i]
		}
		return ""
	}
	return ComparisonResult{
		InputType:        at(0),
		InputVCPUs:       at(1),
		InputMemoryGB:    at(2),
		Region:           at(3),
		OriginalMonthly:  at(4),
		CandidateType:    at(5),
		CandidateMonthly: at(6),
		SavingsUSD:       at(7),
		SavingsPercent:   at(8),
		Error:            at(9),
	}
}

// TierSavings is the saving of one reserved tier against on-demand.
type TierSavings struct {
	EconomyUSD     string `json:"economy_usd"`
	EconomyPercent string `json:"economy_percent"`
}

// RDSPriceRecord is the priced projection of one PricingEntry.
type RDSPriceRecord struct {
	InstanceType string `json:"instance_type"`
	Engine       string `json:"engine"`
	Region       string `json:"region"`
	MultiAZ      string `json:"multi_az"`
	Start        string `json:"start"`
	End          string `json:"end"`

	OnDemandAnnualUSD string `json:"on_demand_annual_usd,omitempty"`

	NoUpfrontAnnualUSD string      `json:"no_upfront_reserved_annual_usd,omitempty"`
	NoUpfront          TierSavings `json:"no_upfront"`

	PartialUpfrontAnnualUSD string      `json:"partial_upfront_reserved_annual_usd,omitempty"`
	PartialUpfront          TierSavings `json:"partial_upfront"`

	AllUpfrontAnnualUSD string      `json:"all_upfront_reserved_annual_usd,omitempty"`
	AllUpfront          TierSavings `json:"all_upfront"`

	Error string `json:"error,omitempty"`
}

// RDSColumns is the CSV header for RDSPriceRecord rows.
var RDSColumns = []string{
	"instance_type",
	"engine",
	"region",
	"multi_az",
	"start",
	"end",
	"on_demand_annual_usd",
	"no_upfront_reserved_annual_usd",
	"economy_usd",
	"economy_percent",
	"partial_upfront_reserved_annual_usd",
	"partial_upfront_economy_usd",
	"partial_upfront_economy_percent",
	"all_upfront_reserved_annual_usd",
	"all_upfront_economy_usd",
	"all_upfront_economy_percent",
	"error",
}

// Values returns the row in RDSColumns order.
func (r RDSPriceRecord) Values() []string {
	return []string{
		r.InstanceType,
		r.Engine,
		r.Region,
		r.MultiAZ,
		r.Start,
		r.End,
		r.OnDemandAnnualUSD,
		r.NoUpfrontAnnualUSD,
		r.NoUpfront.EconomyUSD,
		r.NoUpfront.EconomyPercent,
		r.PartialUpfrontAnnualUSD,
		r.PartialUpfront.EconomyUSD,
		r.PartialUpfront.EconomyPercent,
		r.AllUpfrontAnnualUSD,
		r.AllUpfront.EconomyUSD,
		r.AllUpfront.EconomyPercent,
		r.Error,
	}
}

// RDSPriceRecordFromValues is the inverse of Values.
func RDSPriceRecordFromValues(v []string) RDSPriceRecord {
	at := func(i int) string {
		if i < len(v) {
			return v[i]
		}
		return ""
	}
	return RDSPriceRecord{
		InstanceType:            at(0),
		Engine:                  at(1),
		Region:                  at(2),
		MultiAZ:                 at(3),
		Start:                   at(4),
		End:                     at(5),
		OnDemandAnnualUSD:       at(6),
		NoUpfrontAnnualUSD:      at(7),
		NoUpfront:               TierSavings{EconomyUSD: at(8), EconomyPercent: at(9)},
		PartialUpfrontAnnualUSD: at(10),
		PartialUpfront:          TierSavings{EconomyUSD: at(11), EconomyPercent: at(12)},
		AllUpfrontAnnualUSD:     at(13),
		AllUpfront:              TierSavings{EconomyUSD: at(14), EconomyPercent: at(15)},
		Error:                   at(16),
	}
}
