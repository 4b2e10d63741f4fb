package models

// ---------------------------------------------------------------------------
// AWS inventory models (collected by the inventory provider, fed into the
// comparison engine)
// ---------------------------------------------------------------------------

// DiscoveredInstance represents a single EC2 instance found during discovery.
type DiscoveredInstance struct {
	InstanceID   string `json:"instance_id"`
	InstanceType string `json:"instance_type"`
	VCPUs        int    `json:"vcpus"`
	// MemoryGB is nil when DescribeInstanceTypes could not resolve the type.
	MemoryGB      *float64 `json:"memory_gb"`
	Region        string   `json:"region"`
	State         string   `json:"state"`
	AvgCPUPercent float64  `json:"avg_cpu_percent,omitempty"`
}

// Comparable reports whether the instance has enough shape information to be
// matched against Graviton candidates.
func (d DiscoveredInstance) Comparable() bool {
	return d.MemoryGB != nil && d.VCPUs > 0
}

// EC2Entry converts a comparable discovered instance to comparison input.
// The caller must check Comparable first.
func (d DiscoveredInstance) EC2Entry() EC2Entry {
	var mem float64
	if d.MemoryGB != nil {
		mem = *d.MemoryGB
	}
	return EC2Entry{
		InstanceType: d.InstanceType,
		VCPUs:        d.VCPUs,
		MemoryGB:     mem,
		Region:       d.Region,
	}
}

// ScheduledEvent is a maintenance or retirement event reported by
// DescribeInstanceStatus.
type ScheduledEvent struct {
	InstanceID  string `json:"instance_id"`
	Region      string `json:"region"`
	EventCode   string `json:"event_code"`
	NotBefore   string `json:"not_before"`
	NotAfter    string `json:"not_after"`
	Description string `json:"description"`
}

// EC2Inventory is the combined result of an EC2 discovery run.
type EC2Inventory struct {
	Instances []DiscoveredInstance `json:"instances"`
	Events    []ScheduledEvent     `json:"events"`
	// SkippedRegions lists regions whose discovery failed and were skipped.
	SkippedRegions []string `json:"skipped_regions,omitempty"`
}
