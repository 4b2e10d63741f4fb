package engine

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/format"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/models"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/providers/aws/pricing"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/region"
)

var hoursPerMonth = decimal.NewFromInt(HoursPerMonth)

// gravitonPattern matches type names such as "m6g.large". Families that carry
// a suffix after the "g" ("r6gd", "c7gn") do not match.
var gravitonPattern = regexp.MustCompile(`\dg\.`)

// IsGraviton reports whether instanceType looks like a Graviton type name.
func IsGraviton(instanceType string) bool {
	return gravitonPattern.MatchString(instanceType)
}

// MonthlyOnDemand returns hourly × 720 without rounding.
func MonthlyOnDemand(hourly decimal.Decimal) decimal.Decimal {
	return hourly.Mul(hoursPerMonth)
}

type candidate struct {
	instanceType string
	monthly      decimal.Decimal
}

// FetchEC2Comparison proposes up to MaxCandidates Graviton types with exactly
// the same vCPU count and memory as instanceType in regionLabel, cheapest
// first. Failures are returned as a single row carrying Error.
func (s *Session) FetchEC2Comparison(
	ctx context.Context,
	instanceType string,
	vcpus int,
	memoryGB float64,
	regionLabel string,
) []models.ComparisonResult {
	code := region.Resolve(regionLabel)
	log := s.log.WithFields(logrus.Fields{"instance_type": instanceType, "region": code})

	items, err := s.ec2Catalog(ctx, code)
	if err != nil {
		log.WithError(err).Debug("EC2 catalog fetch failed")
		return []models.ComparisonResult{{InputType: instanceType, Region: regionLabel, Error: err.Error()}}
	}

	var original *pricing.PriceListItem
	for i := range items {
		if items[i].InstanceType() == instanceType && items[i].RegionCode() == code {
			original = &items[i]
			break
		}
	}
	if original == nil {
		return []models.ComparisonResult{{
			InputType: instanceType,
			Region:    regionLabel,
			Error:     models.ErrOriginalInstanceNotFound.Error(),
		}}
	}

	origHourly, err := original.OnDemandHourly()
	if err != nil {
		return []models.ComparisonResult{{InputType: instanceType, Region: regionLabel, Error: err.Error()}}
	}
	origMonthly := MonthlyOnDemand(origHourly)

	var matches []candidate
	for i := range items {
		it := &items[i]
		if !IsGraviton(it.InstanceType()) {
			continue
		}
		v, err := it.VCPUs()
		if err != nil {
			continue
		}
		m, err := it.MemoryGiB()
		if err != nil {
			continue
		}
		if v != vcpus || math.Abs(m-memoryGB) >= memoryTolerance {
			continue
		}
		h, err := it.OnDemandHourly()
		if err != nil {
			continue
		}
		matches = append(matches, candidate{instanceType: it.InstanceType(), monthly: MonthlyOnDemand(h)})
	}

	inputVCPUs := strconv.Itoa(vcpus)
	inputMemory := strconv.FormatFloat(memoryGB, 'f', -1, 64)
	originalText := format.Currency(origMonthly)

	if len(matches) == 0 {
		return []models.ComparisonResult{{
			InputType:       instanceType,
			InputVCPUs:      inputVCPUs,
			InputMemoryGB:   inputMemory,
			Region:          regionLabel,
			OriginalMonthly: originalText,
			Error:           models.ErrNoGravitonMatch.Error(),
		}}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].monthly.LessThan(matches[j].monthly)
	})
	if len(matches) > MaxCandidates {
		matches = matches[:MaxCandidates]
	}

	log.WithFields(logrus.Fields{"catalog_size": len(items), "candidates": len(matches)}).Debug("Graviton candidates selected")

	hundred := decimal.NewFromInt(100)
	out := make([]models.ComparisonResult, 0, len(matches))
	for _, c := range matches {
		savings := origMonthly.Sub(c.monthly)
		pct := decimal.Zero
		if !origMonthly.IsZero() {
			pct = savings.Div(origMonthly).Mul(hundred)
		}
		out = append(out, models.ComparisonResult{
			InputType:        instanceType,
			InputVCPUs:       inputVCPUs,
			InputMemoryGB:    inputMemory,
			Region:           regionLabel,
			OriginalMonthly:  originalText,
			CandidateType:    c.instanceType,
			CandidateMonthly: format.Currency(c.monthly),
			SavingsUSD:       format.Currency(savings),
			SavingsPercent:   format.Percent(pct),
		})
	}
	return out
}

// CompareAll runs FetchEC2Comparison for every entry and concatenates the
// rows in input order.
func (s *Session) CompareAll(ctx context.Context, entries []models.EC2Entry) []models.ComparisonResult {
	var out []models.ComparisonResult
	for _, e := range entries {
		out = append(out, s.FetchEC2Comparison(ctx, e.InstanceType, e.VCPUs, e.MemoryGB, e.Region)...)
	}
	return out
}
