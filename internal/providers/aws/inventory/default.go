package inventory

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/models"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/providers/aws/common"
)

// DefaultCollector is the production implementation of Collector.
// It uses AWS SDK v2 to collect resources region by region.
//
// Inject a custom inventoryClientFactory via NewDefaultCollectorWithFactory
// to replace real SDK clients with stubs in unit tests.
type DefaultCollector struct {
	profile  *common.ProfileConfig
	provider common.AWSClientProvider
	factory  inventoryClientFactory
	logger   *logrus.Logger
	now      func() time.Time
}

// NewDefaultCollector returns a collector backed by the real AWS SDK.
func NewDefaultCollector(profile *common.ProfileConfig, provider common.AWSClientProvider, logger *logrus.Logger) *DefaultCollector {
	return NewDefaultCollectorWithFactory(profile, provider, logger, newDefaultInventoryClients)
}

// NewDefaultCollectorWithFactory returns a collector that uses f to create
// its service clients. Pass a stub factory in tests.
func NewDefaultCollectorWithFactory(
	profile *common.ProfileConfig,
	provider common.AWSClientProvider,
	logger *logrus.Logger,
	f inventoryClientFactory,
) *DefaultCollector {
	if logger == nil {
		logger = logrus.New()
	}
	return &DefaultCollector{
		profile:  profile,
		provider: provider,
		factory:  f,
		logger:   logger,
		now:      time.Now,
	}
}

// ---------------------------------------------------------------------------
// Collector implementation
// ---------------------------------------------------------------------------

// DiscoverEC2 implements Collector.
func (d *DefaultCollector) DiscoverEC2(ctx context.Context, regions []string, opts Options) *models.EC2Inventory {
	inv := &models.EC2Inventory{}
	for _, region := range regions {
		clients := d.factory(d.provider.ConfigForRegion(d.profile, region))

		instances, events, err := discoverEC2Region(ctx, clients, region, opts, d.now())
		if err != nil {
			d.logger.WithFields(logrus.Fields{"region": region, "error": err}).Debug("Skipping region")
			inv.SkippedRegions = append(inv.SkippedRegions, region)
			continue
		}
		d.logger.WithFields(logrus.Fields{
			"region":    region,
			"instances": len(instances),
			"events":    len(events),
		}).Debug("EC2 region discovered")

		inv.Instances = append(inv.Instances, instances...)
		inv.Events = append(inv.Events, events...)
	}
	return inv
}

// DiscoverRDS implements Collector.
func (d *DefaultCollector) DiscoverRDS(ctx context.Context, regions []string) *RDSInventory {
	inv := &RDSInventory{}
	start, end := models.DefaultTerm(d.now())
	for _, region := range regions {
		clients := d.factory(d.provider.ConfigForRegion(d.profile, region))

		entries, err := discoverRDSRegion(ctx, clients.RDS, region, start, end)
		if err != nil {
			d.logger.WithFields(logrus.Fields{"region": region, "error": err}).Debug("Skipping region")
			inv.SkippedRegions = append(inv.SkippedRegions, region)
			continue
		}
		inv.Entries = append(inv.Entries, entries...)
	}
	return inv
}

// Comparable returns the instances that carry enough shape information to be
// compared, converted to comparison input.
func Comparable(instances []models.DiscoveredInstance) []models.EC2Entry {
	var out []models.EC2Entry
	for _, inst := range instances {
		if inst.Comparable() {
			out = append(out, inst.EC2Entry())
		}
	}
	return out
}
