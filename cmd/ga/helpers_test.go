package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/sirupsen/logrus"

	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/models"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/providers/aws/common"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/providers/aws/inventory"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/providers/aws/pricing"
)

// ── AWS provider stub ─────────────────────────────────────────────────────────

type stubProvider struct {
	profile       *common.ProfileConfig
	err           error
	lastOpts      common.LoadOptions
	configRegions []string
}

func (s *stubProvider) LoadProfile(_ context.Context, opts common.LoadOptions) (*common.ProfileConfig, error) {
	s.lastOpts = opts
	return s.profile, s.err
}

func (s *stubProvider) ConfigForRegion(_ *common.ProfileConfig, region string) aws.Config {
	s.configRegions = append(s.configRegions, region)
	return aws.Config{Region: region}
}

func goodProvider() *stubProvider {
	return &stubProvider{profile: &common.ProfileConfig{
		ProfileName: "default",
		AccountID:   "123456789012",
		Region:      "us-east-1",
	}}
}

// ── pricing stub ──────────────────────────────────────────────────────────────

type stubCatalog struct {
	ec2        []pricing.PriceListItem
	rdsErr     error
	rdsQueries []pricing.RDSQuery
}

func (s *stubCatalog) RDSProduct(_ context.Context, q pricing.RDSQuery) (*pricing.PriceListItem, error) {
	s.rdsQueries = append(s.rdsQueries, q)
	if s.rdsErr != nil {
		return nil, s.rdsErr
	}
	return nil, models.ErrNoPricingData
}

func (s *stubCatalog) EC2Products(context.Context, string) ([]pricing.PriceListItem, error) {
	return s.ec2, nil
}

func listing(t *testing.T, instanceType string, vcpu int, memory, hourly string) pricing.PriceListItem {
	t.Helper()
	item, err := pricing.ParsePriceListItem(fmt.Sprintf(`{
		"product": {"attributes": {"instanceType": %q, "vcpu": "%d", "memory": %q, "regionCode": "eu-west-3"}},
		"terms": {"OnDemand": {"T": {"priceDimensions": {"D": {"unit": "Hrs", "pricePerUnit": {"USD": %q}}}}}}
	}`, instanceType, vcpu, memory, hourly))
	if err != nil {
		t.Fatalf("ParsePriceListItem: %v", err)
	}
	return item
}

func parisCatalog(t *testing.T) *stubCatalog {
	return &stubCatalog{ec2: []pricing.PriceListItem{
		listing(t, "m5.large", 2, "8 GiB", "0.0972222222"),
		listing(t, "m6g.large", 2, "8 GiB", "0.07"),
		listing(t, "t4g.large", 2, "8 GiB", "0.0672"),
	}}
}

// ── inventory stub ────────────────────────────────────────────────────────────

type stubCollector struct {
	ec2      *models.EC2Inventory
	rds      *inventory.RDSInventory
	regions  []string
	daysBack int
}

func (s *stubCollector) DiscoverEC2(_ context.Context, regions []string, opts inventory.Options) *models.EC2Inventory {
	s.regions = regions
	s.daysBack = opts.DaysBack
	if s.ec2 == nil {
		return &models.EC2Inventory{}
	}
	return s.ec2
}

func (s *stubCollector) DiscoverRDS(_ context.Context, regions []string) *inventory.RDSInventory {
	s.regions = regions
	if s.rds == nil {
		return &inventory.RDSInventory{}
	}
	return s.rds
}

// ── app harness ───────────────────────────────────────────────────────────────

type testHarness struct {
	app        *app
	provider   *stubProvider
	catalog    *stubCatalog
	collector  *stubCollector
	dir        string
	configPath string
	credsPath  string
}

// newHarness returns an app wired to stubs, with a config file in a fresh
// temp directory pointing the credentials dotfile there too.
func newHarness(t *testing.T) *testHarness {
	t.Helper()
	dir := t.TempDir()
	h := &testHarness{
		provider:   goodProvider(),
		catalog:    &stubCatalog{},
		collector:  &stubCollector{},
		dir:        dir,
		configPath: filepath.Join(dir, "config.yaml"),
		credsPath:  filepath.Join(dir, ".env"),
	}
	yaml := fmt.Sprintf("aws:\n  credentials_file: %s\nlog:\n  level: error\n", h.credsPath)
	if err := os.WriteFile(h.configPath, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	h.app = &app{
		provider: h.provider,
		newCatalog: func(aws.Config, *logrus.Logger) pricing.Catalog {
			return h.catalog
		},
		newCollector: func(*common.ProfileConfig, common.AWSClientProvider, *logrus.Logger) inventory.Collector {
			return h.collector
		},
		now:   func() time.Time { return time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC) },
		isTTY: func() bool { return false },
	}
	return h
}

// run executes the root command with args and returns stdout and stderr.
func (h *testHarness) run(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	root := newRootCmdFor(h.app)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", h.configPath}, args...))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

var errAuth = errors.New("no valid credential sources found")
