// Package inventory discovers running EC2 and RDS resources so they can be
// fed into the Graviton comparison and reserved pricing.
package inventory

import (
	"context"

	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/models"
)

// Options carries discovery parameters.
type Options struct {
	// DaysBack is the CloudWatch lookback window for average CPU. Zero
	// disables the enrichment.
	DaysBack int
}

// Collector gathers inventory from AWS and converts it into internal models.
// Regions are walked in order; a region that fails is skipped and reported
// in the result rather than failing the whole call.
//
// All implementations must use the AWS SDK v2 only.
type Collector interface {
	// DiscoverEC2 lists EC2 instances with their shape and scheduled events.
	DiscoverEC2(ctx context.Context, regions []string, opts Options) *models.EC2Inventory

	// DiscoverRDS lists PostgreSQL and MariaDB instances as pricing entries.
	DiscoverRDS(ctx context.Context, regions []string) *RDSInventory
}

// RDSInventory is the combined result of an RDS discovery run.
type RDSInventory struct {
	Entries        []models.PricingEntry `json:"entries"`
	SkippedRegions []string              `json:"skipped_regions,omitempty"`
}
