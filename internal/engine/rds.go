package engine

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/format"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/models"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/providers/aws/pricing"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/region"
)

var hoursPerYear = decimal.NewFromInt(HoursPerYear)

// FetchRDSPrice prices entry on demand and for every one-year reserved tier.
// It never fails: any error is reported in the Error field of the returned
// record, next to the entry's own fields.
func (s *Session) FetchRDSPrice(ctx context.Context, entry models.PricingEntry) models.RDSPriceRecord {
	rec := models.RDSPriceRecord{
		InstanceType: entry.InstanceType,
		Engine:       string(entry.Engine),
		Region:       entry.Region,
		MultiAZ:      string(entry.MultiAZ),
		Start:        entry.Start,
		End:          entry.End,
	}

	if err := entry.Validate(); err != nil {
		rec.Error = err.Error()
		return rec
	}

	q := pricing.RDSQuery{
		InstanceType: entry.InstanceType,
		RegionCode:   region.Resolve(entry.Region),
		Engine:       entry.Engine,
		MultiAZ:      entry.MultiAZ,
	}
	item, err := s.catalog.RDSProduct(ctx, q)
	if err != nil {
		s.log.WithFields(logrus.Fields{"query": q.String(), "error": err}).Debug("RDS pricing lookup failed")
		rec.Error = err.Error()
		return rec
	}

	hourly, err := item.OnDemandHourly()
	if err != nil {
		rec.Error = err.Error()
		return rec
	}
	onDemand := AnnualOnDemand(hourly)

	tiers := make(map[pricing.PurchaseOption]decimal.Decimal, 3)
	for _, opt := range []pricing.PurchaseOption{pricing.NoUpfront, pricing.PartialUpfront, pricing.AllUpfront} {
		annual, err := ReservedAnnual(item, opt)
		if err != nil {
			rec.Error = err.Error()
			return rec
		}
		tiers[opt] = annual
	}

	rec.OnDemandAnnualUSD = format.Currency(onDemand)
	rec.NoUpfrontAnnualUSD = format.Currency(tiers[pricing.NoUpfront])
	rec.NoUpfront = tierSavings(onDemand, tiers[pricing.NoUpfront])
	rec.PartialUpfrontAnnualUSD = format.Currency(tiers[pricing.PartialUpfront])
	rec.PartialUpfront = tierSavings(onDemand, tiers[pricing.PartialUpfront])
	rec.AllUpfrontAnnualUSD = format.Currency(tiers[pricing.AllUpfront])
	rec.AllUpfront = tierSavings(onDemand, tiers[pricing.AllUpfront])

	s.log.WithFields(logrus.Fields{
		"query":     q.String(),
		"on_demand": rec.OnDemandAnnualUSD,
	}).Debug("RDS entry priced")

	return rec
}

// PriceAll prices every entry in order.
func (s *Session) PriceAll(ctx context.Context, entries []models.PricingEntry) []models.RDSPriceRecord {
	out := make([]models.RDSPriceRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, s.FetchRDSPrice(ctx, e))
	}
	return out
}

// AnnualOnDemand returns round(hourly × 8760, 2).
func AnnualOnDemand(hourly decimal.Decimal) decimal.Decimal {
	return hourly.Mul(hoursPerYear).Round(2)
}

// ReservedAnnual returns the yearly cost of the one-year reserved tier
// option, rounded to cents. A tier absent from the listing costs zero.
//
//	All Upfront      upfront
//	Partial Upfront  upfront + hourly × 8760
//	No Upfront       hourly × 8760
func ReservedAnnual(item *pricing.PriceListItem, option pricing.PurchaseOption) (decimal.Decimal, error) {
	upfront, hourly, found, err := item.ReservedComponents(option)
	if err != nil {
		return decimal.Zero, err
	}
	if !found {
		return decimal.Zero, nil
	}
	var annual decimal.Decimal
	switch option {
	case pricing.AllUpfront:
		annual = upfront
	case pricing.PartialUpfront:
		annual = upfront.Add(hourly.Mul(hoursPerYear))
	default:
		annual = hourly.Mul(hoursPerYear)
	}
	return annual.Round(2), nil
}

// tierSavings compares a reserved tier with the on-demand baseline. The
// percentage is N/A when the baseline is zero.
func tierSavings(base, reserved decimal.Decimal) models.TierSavings {
	diff := base.Sub(reserved)
	ts := models.TierSavings{EconomyUSD: format.Currency(diff), EconomyPercent: format.NotApplicable}
	if !base.IsZero() {
		ts.EconomyPercent = format.Percent(diff.Mul(decimal.NewFromInt(100)).Div(base))
	}
	return ts
}
