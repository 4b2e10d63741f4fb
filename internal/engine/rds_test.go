package engine

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/models"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/providers/aws/pricing"
)

const rdsListing = `{
	"product": {"productFamily": "Database Instance", "attributes": {"instanceType": "db.t3.medium"}},
	"terms": {
		"OnDemand": {"T.OD": {"priceDimensions": {"T.OD.H": {"unit": "Hrs", "pricePerUnit": {"USD": "0.1440000000"}}}}},
		"Reserved": {
			"T.NU": {"termAttributes": {"LeaseContractLength": "1yr", "PurchaseOption": "No Upfront"},
				"priceDimensions": {"T.NU.H": {"unit": "Hrs", "pricePerUnit": {"USD": "0.09"}}}},
			"T.PU": {"termAttributes": {"LeaseContractLength": "1yr", "PurchaseOption": "Partial Upfront"},
				"priceDimensions": {
					"T.PU.Q": {"unit": "Quantity", "pricePerUnit": {"USD": "300"}},
					"T.PU.H": {"unit": "Hrs", "pricePerUnit": {"USD": "0.034"}}}},
			"T.AU": {"termAttributes": {"LeaseContractLength": "1yr", "PurchaseOption": "All Upfront"},
				"priceDimensions": {
					"T.AU.Q": {"unit": "Quantity", "pricePerUnit": {"USD": "720"}},
					"T.AU.H": {"unit": "Hrs", "pricePerUnit": {"USD": "0"}}}}
		}
	}
}`

func parisEntry(t *testing.T) models.PricingEntry {
	t.Helper()
	e, err := models.NewPricingEntry("PostgreSQL", "db.t3.medium", "Paris", "Oui", "1/1/2026", "12/31/2026")
	require.NoError(t, err)
	return e
}

func TestFetchRDSPrice_AllTiers(t *testing.T) {
	item := mustItem(t, rdsListing)
	cat := &stubCatalog{rds: &item}
	s := newTestSession(cat)

	rec := s.FetchRDSPrice(t.Context(), parisEntry(t))

	require.Empty(t, rec.Error)
	require.Len(t, cat.rdsQueries, 1)
	assert.Equal(t, "eu-west-3", cat.rdsQueries[0].RegionCode)

	assert.Equal(t, "Paris", rec.Region, "record keeps the label the user entered")
	assert.Equal(t, "Oui", rec.MultiAZ)
	assert.Equal(t, "1/1/2026", rec.Start)
	assert.Equal(t, "$1,261.44", rec.OnDemandAnnualUSD)

	assert.Equal(t, "$788.40", rec.NoUpfrontAnnualUSD)
	assert.Equal(t, models.TierSavings{EconomyUSD: "$473.04", EconomyPercent: "37.50%"}, rec.NoUpfront)

	assert.Equal(t, "$597.84", rec.PartialUpfrontAnnualUSD)
	assert.Equal(t, models.TierSavings{EconomyUSD: "$663.60", EconomyPercent: "52.61%"}, rec.PartialUpfront)

	assert.Equal(t, "$720.00", rec.AllUpfrontAnnualUSD)
	assert.Equal(t, models.TierSavings{EconomyUSD: "$541.44", EconomyPercent: "42.92%"}, rec.AllUpfront)
}

func TestFetchRDSPrice_MissingTiersCostZero(t *testing.T) {
	item := mustItem(t, `{"product": {"attributes": {}}, "terms": {`+onDemandTerms("0.1")+`}}`)
	s := newTestSession(&stubCatalog{rds: &item})

	rec := s.FetchRDSPrice(t.Context(), parisEntry(t))

	require.Empty(t, rec.Error)
	assert.Equal(t, "$876.00", rec.OnDemandAnnualUSD)
	assert.Equal(t, "$0.00", rec.NoUpfrontAnnualUSD)
	assert.Equal(t, "$876.00", rec.NoUpfront.EconomyUSD)
	assert.Equal(t, "100.00%", rec.NoUpfront.EconomyPercent)
	assert.Equal(t, "$0.00", rec.AllUpfrontAnnualUSD)
}

func TestFetchRDSPrice_ZeroBaselineIsNotApplicable(t *testing.T) {
	item := mustItem(t, `{"product": {"attributes": {}}, "terms": {`+onDemandTerms("0")+`}}`)
	s := newTestSession(&stubCatalog{rds: &item})

	rec := s.FetchRDSPrice(t.Context(), parisEntry(t))

	require.Empty(t, rec.Error)
	assert.Equal(t, "N/A", rec.NoUpfront.EconomyPercent)
	assert.Equal(t, "N/A", rec.PartialUpfront.EconomyPercent)
	assert.Equal(t, "N/A", rec.AllUpfront.EconomyPercent)
	assert.Equal(t, "$0.00", rec.NoUpfront.EconomyUSD, "economy stays a currency")
	assert.Equal(t, "$0.00", rec.AllUpfront.EconomyUSD)
}

func TestFetchRDSPrice_NoPricingDataBecomesRecord(t *testing.T) {
	s := newTestSession(&stubCatalog{rdsErr: models.ErrNoPricingData})

	rec := s.FetchRDSPrice(t.Context(), parisEntry(t))

	assert.Equal(t, "No pricing data found", rec.Error)
	assert.Equal(t, "db.t3.medium", rec.InstanceType)
	assert.Equal(t, "PostgreSQL", rec.Engine)
	assert.Equal(t, "Paris", rec.Region)
	assert.Equal(t, "12/31/2026", rec.End)
	assert.Empty(t, rec.OnDemandAnnualUSD)
}

func TestFetchRDSPrice_ProviderErrorBecomesRecord(t *testing.T) {
	err := &models.ProviderCallError{Op: "pricing GetProducts AmazonRDS", Err: errors.New("ExpiredToken")}
	s := newTestSession(&stubCatalog{rdsErr: err})

	rec := s.FetchRDSPrice(t.Context(), parisEntry(t))
	assert.Equal(t, "pricing GetProducts AmazonRDS: ExpiredToken", rec.Error)
}

func TestFetchRDSPrice_InvalidEntryNotSent(t *testing.T) {
	cat := &stubCatalog{}
	s := newTestSession(cat)

	rec := s.FetchRDSPrice(t.Context(), models.PricingEntry{Engine: "Oracle", InstanceType: "db.m5.large", Region: "Paris", MultiAZ: "Oui"})

	assert.Contains(t, rec.Error, "engine")
	assert.Empty(t, cat.rdsQueries)
}

func TestPriceAll_KeepsOrder(t *testing.T) {
	item := mustItem(t, rdsListing)
	s := newTestSession(&stubCatalog{rds: &item})

	a := parisEntry(t)
	b := a
	b.InstanceType = "db.r5.large"
	recs := s.PriceAll(t.Context(), []models.PricingEntry{a, b})

	require.Len(t, recs, 2)
	assert.Equal(t, "db.t3.medium", recs[0].InstanceType)
	assert.Equal(t, "db.r5.large", recs[1].InstanceType)
}

func TestReservedAnnual(t *testing.T) {
	item := mustItem(t, rdsListing)
	cases := []struct {
		option pricing.PurchaseOption
		want   string
	}{
		{pricing.NoUpfront, "788.4"},
		{pricing.PartialUpfront, "597.84"},
		{pricing.AllUpfront, "720"},
	}
	for _, tc := range cases {
		t.Run(string(tc.option), func(t *testing.T) {
			got, err := ReservedAnnual(&item, tc.option)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tc.want).Equal(got), "got %s", got)
		})
	}

	bare := mustItem(t, `{"product": {"attributes": {}}, "terms": {`+onDemandTerms("1")+`}}`)
	got, err := ReservedAnnual(&bare, pricing.AllUpfront)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestAnnualOnDemand_RoundsToCents(t *testing.T) {
	got := AnnualOnDemand(decimal.RequireFromString("0.0123456"))
	assert.Equal(t, "108.15", got.StringFixed(2))
	assert.True(t, got.Equal(got.Round(2)))
}
