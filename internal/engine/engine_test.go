package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/providers/aws/pricing"
)

// ── test doubles ──────────────────────────────────────────────────────────────

type stubCatalog struct {
	rds        *pricing.PriceListItem
	rdsErr     error
	rdsQueries []pricing.RDSQuery

	ec2      map[string][]pricing.PriceListItem
	ec2Err   error
	ec2Calls int
}

func (s *stubCatalog) RDSProduct(_ context.Context, q pricing.RDSQuery) (*pricing.PriceListItem, error) {
	s.rdsQueries = append(s.rdsQueries, q)
	if s.rdsErr != nil {
		return nil, s.rdsErr
	}
	return s.rds, nil
}

func (s *stubCatalog) EC2Products(_ context.Context, regionCode string) ([]pricing.PriceListItem, error) {
	s.ec2Calls++
	if s.ec2Err != nil {
		return nil, s.ec2Err
	}
	return s.ec2[regionCode], nil
}

func newTestSession(cat pricing.Catalog) *Session {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return NewAdvisor(cat, logger).NewSessionWithID("test-session")
}

func mustItem(t *testing.T, raw string) pricing.PriceListItem {
	t.Helper()
	item, err := pricing.ParsePriceListItem(raw)
	require.NoError(t, err)
	return item
}

func onDemandTerms(hourly string) string {
	return fmt.Sprintf(`"OnDemand": {"T.OD": {"priceDimensions": {"T.OD.H": {"unit": "Hrs", "pricePerUnit": {"USD": %q}}}}}`, hourly)
}

func ec2Listing(t *testing.T, instanceType string, vcpu int, memory, hourly string) pricing.PriceListItem {
	t.Helper()
	return mustItem(t, fmt.Sprintf(`{
		"product": {"attributes": {"instanceType": %q, "vcpu": "%d", "memory": %q, "regionCode": "eu-west-3"}},
		"terms": {%s}
	}`, instanceType, vcpu, memory, onDemandTerms(hourly)))
}
