// Package engine prices RDS entries against reserved tiers and proposes
// Graviton replacements for EC2 instance shapes.
package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/providers/aws/pricing"
)

// Pricing approximations. They differ on purpose: RDS figures are annual
// with a 365-day year, EC2 comparisons are monthly with a 30-day month.
const (
	HoursPerYear  = 24 * 365
	HoursPerMonth = 24 * 30
)

// MaxCandidates is the maximum number of Graviton candidates returned per
// comparison.
const MaxCandidates = 5

// memoryTolerance is the largest memory difference, in GiB, still treated as
// an exact shape match.
const memoryTolerance = 0.01

// Advisor holds the collaborators shared by every session.
type Advisor struct {
	catalog pricing.Catalog
	logger  *logrus.Logger
}

// NewAdvisor returns an Advisor reading prices from catalog.
func NewAdvisor(catalog pricing.Catalog, logger *logrus.Logger) *Advisor {
	if logger == nil {
		logger = logrus.New()
	}
	return &Advisor{catalog: catalog, logger: logger}
}

// NewSession starts a unit of work with a fresh random ID.
func (a *Advisor) NewSession() *Session {
	return a.NewSessionWithID(uuid.NewString())
}

// NewSessionWithID starts a unit of work tagged with id.
func (a *Advisor) NewSessionWithID(id string) *Session {
	return &Session{
		ID:      id,
		catalog: a.catalog,
		log:     a.logger.WithField("session", id),
		ec2:     make(map[string][]pricing.PriceListItem),
	}
}

// Session is the per-request state of the advisor. It memoises the regional
// EC2 catalog so that a batch in one region scans it once. A Session is owned
// by a single caller and must not be shared between goroutines.
type Session struct {
	ID string

	catalog pricing.Catalog
	log     *logrus.Entry
	ec2     map[string][]pricing.PriceListItem
}

// ec2Catalog returns the cached EC2 listings for regionCode, fetching them on
// first use. Failed fetches are not cached.
func (s *Session) ec2Catalog(ctx context.Context, regionCode string) ([]pricing.PriceListItem, error) {
	if items, ok := s.ec2[regionCode]; ok {
		s.log.WithField("region", regionCode).Debug("EC2 catalog cache hit")
		return items, nil
	}
	items, err := s.catalog.EC2Products(ctx, regionCode)
	if err != nil {
		return nil, err
	}
	s.ec2[regionCode] = items
	return items, nil
}
