package models

import (
	"strings"
	"time"
)

// Engine is an RDS database engine accepted as pricing input.
type Engine string

const (
	EnginePostgreSQL Engine = "PostgreSQL"
	EngineMariaDB    Engine = "MariaDB"
)

// MultiAZ is the deployment flag as entered by users ("Oui" / "Non").
type MultiAZ string

const (
	MultiAZYes MultiAZ = "Oui"
	MultiAZNo  MultiAZ = "Non"
)

// DeploymentOption returns the pricing catalog deploymentOption value.
func (m MultiAZ) DeploymentOption() string {
	if strings.EqualFold(string(m), string(MultiAZYes)) {
		return "Multi-AZ"
	}
	return "Single-AZ"
}

// ---------------------------------------------------------------------------
// PricingEntry (RDS)
// ---------------------------------------------------------------------------

// PricingEntry describes one RDS instance to price. Build it with
// NewPricingEntry or call Validate before handing it to the fetcher.
type PricingEntry struct {
	Engine       Engine  `json:"engine"`
	InstanceType string  `json:"instance_type"`
	Region       string  `json:"region"`
	MultiAZ      MultiAZ `json:"multi_az"`
	Start        string  `json:"start"`
	End          string  `json:"end"`
}

// EntryDateLayout is the M/D/YYYY form of entry start and end dates.
const EntryDateLayout = "1/2/2006"

// DefaultTerm returns the default one-year window starting on now's date:
// today and today + 1 year - 1 day.
func DefaultTerm(now time.Time) (start, end string) {
	return now.Format(EntryDateLayout), now.AddDate(1, 0, -1).Format(EntryDateLayout)
}

// NewPricingEntry validates the fields and returns the entry.
func NewPricingEntry(engine, instanceType, region, multiAZ, start, end string) (PricingEntry, error) {
	e := PricingEntry{
		Engine:       Engine(engine),
		InstanceType: instanceType,
		Region:       region,
		MultiAZ:      MultiAZ(multiAZ),
		Start:        start,
		End:          end,
	}
	if err := e.Validate(); err != nil {
		return PricingEntry{}, err
	}
	return e, nil
}

// Validate reports the first invalid field as a *ValidationError.
func (e PricingEntry) Validate() error {
	switch e.Engine {
	case EnginePostgreSQL, EngineMariaDB:
	default:
		return &ValidationError{Field: "engine", Reason: "must be one of PostgreSQL, MariaDB; got " + quote(string(e.Engine))}
	}
	if strings.TrimSpace(e.InstanceType) == "" {
		return &ValidationError{Field: "instance_type", Reason: "must not be empty"}
	}
	if strings.TrimSpace(e.Region) == "" {
		return &ValidationError{Field: "region", Reason: "must not be empty"}
	}
	switch e.MultiAZ {
	case MultiAZYes, MultiAZNo:
	default:
		return &ValidationError{Field: "multi_az", Reason: "must be one of Oui, Non; got " + quote(string(e.MultiAZ))}
	}
	return nil
}

// ---------------------------------------------------------------------------
// EC2Entry
// ---------------------------------------------------------------------------

// EC2Entry describes one EC2 instance shape to compare against Graviton
// candidates.
type EC2Entry struct {
	InstanceType string  `json:"instance_type"`
	VCPUs        int     `json:"vcpus"`
	MemoryGB     float64 `json:"memory_gb"`
	Region       string  `json:"region"`
}

// Validate reports the first invalid field as a *ValidationError.
func (e EC2Entry) Validate() error {
	if strings.TrimSpace(e.InstanceType) == "" {
		return &ValidationError{Field: "instance_type", Reason: "must not be empty"}
	}
	if e.VCPUs < 0 {
		return &ValidationError{Field: "vcpus", Reason: "must be >= 0"}
	}
	if e.MemoryGB < 0 {
		return &ValidationError{Field: "memory_gb", Reason: "must be >= 0"}
	}
	if strings.TrimSpace(e.Region) == "" {
		return &ValidationError{Field: "region", Reason: "must not be empty"}
	}
	return nil
}

func quote(s string) string { return `"` + s + `"` }
