// Package pricing reads EC2 and RDS listings from the AWS Pricing API and
// decodes them into a typed, validated schema.
package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	pricingsvc "github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/aws/aws-sdk-go-v2/service/pricing/types"
	"github.com/sirupsen/logrus"

	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/models"
)

// Service codes and fixed filter values.
const (
	ServiceCodeEC2 = "AmazonEC2"
	ServiceCodeRDS = "AmazonRDS"

	formatVersion         = "aws_v1"
	rdsProductFamily      = "Database Instance"
	ec2OperatingSystem    = "Linux"
	ec2PreInstalledSw     = "NA"
	ec2Tenancy            = "Shared"
	ec2CapacityStatusUsed = "Used"
)

// RDSQuery identifies a single RDS on-demand listing.
type RDSQuery struct {
	InstanceType string
	RegionCode   string
	Engine       models.Engine
	MultiAZ      models.MultiAZ
}

// Catalog is the pricing collaborator used by the comparison engine.
type Catalog interface {
	// RDSProduct returns the first listing matching q, or
	// models.ErrNoPricingData when the catalog has none.
	RDSProduct(ctx context.Context, q RDSQuery) (*PriceListItem, error)

	// EC2Products returns every Linux / shared-tenancy / used-capacity
	// listing for regionCode that carries vcpu, memory and instanceType.
	EC2Products(ctx context.Context, regionCode string) ([]PriceListItem, error)
}

// DefaultCatalog is the production Catalog backed by the AWS Pricing API.
type DefaultCatalog struct {
	client pricingClient
	logger *logrus.Logger
}

// NewDefaultCatalog returns a catalog using a Pricing client built from cfg.
func NewDefaultCatalog(cfg aws.Config, logger *logrus.Logger) *DefaultCatalog {
	return NewCatalogWithClient(newDefaultPricingClient(cfg), logger)
}

// NewCatalogWithClient returns a catalog that uses client. Pass a stub in tests.
func NewCatalogWithClient(client pricingClient, logger *logrus.Logger) *DefaultCatalog {
	if logger == nil {
		logger = logrus.New()
	}
	return &DefaultCatalog{client: client, logger: logger}
}

// RDSProduct queries the RDS catalog with exact-match filters and decodes the
// first listing returned. No tie-break beyond provider ordering is applied.
func (c *DefaultCatalog) RDSProduct(ctx context.Context, q RDSQuery) (*PriceListItem, error) {
	filters := []types.Filter{
		termMatch("instanceType", q.InstanceType),
		termMatch("regionCode", q.RegionCode),
		termMatch("databaseEngine", strings.ToLower(string(q.Engine))),
		termMatch("deploymentOption", q.MultiAZ.DeploymentOption()),
		termMatch("productFamily", rdsProductFamily),
	}

	c.logger.WithFields(logrus.Fields{
		"service":       ServiceCodeRDS,
		"instance_type": q.InstanceType,
		"region":        q.RegionCode,
		"engine":        q.Engine,
	}).Debug("Fetching RDS pricing")

	out, err := c.client.GetProducts(ctx, &pricingsvc.GetProductsInput{
		ServiceCode:   aws.String(ServiceCodeRDS),
		Filters:       filters,
		FormatVersion: aws.String(formatVersion),
		MaxResults:    aws.Int32(1),
	})
	if err != nil {
		return nil, &models.ProviderCallError{Op: "pricing GetProducts " + ServiceCodeRDS, Err: err}
	}
	if len(out.PriceList) == 0 {
		return nil, models.ErrNoPricingData
	}

	item, err := ParsePriceListItem(out.PriceList[0])
	if err != nil {
		return nil, &models.ProviderCallError{Op: "decode " + ServiceCodeRDS + " price list", Err: err}
	}
	return &item, nil
}

// EC2Products pages through the full regional EC2 catalog. There is no
// server-side filter on instance type; callers scan the result. Listings
// that fail to parse are skipped so one bad item does not fail the region.
func (c *DefaultCatalog) EC2Products(ctx context.Context, regionCode string) ([]PriceListItem, error) {
	input := &pricingsvc.GetProductsInput{
		ServiceCode: aws.String(ServiceCodeEC2),
		Filters: []types.Filter{
			termMatch("regionCode", regionCode),
			termMatch("operatingSystem", ec2OperatingSystem),
			termMatch("preInstalledSw", ec2PreInstalledSw),
			termMatch("tenancy", ec2Tenancy),
			termMatch("capacitystatus", ec2CapacityStatusUsed),
		},
		FormatVersion: aws.String(formatVersion),
	}

	paginator := pricingsvc.NewGetProductsPaginator(c.client, input)

	var (
		items   []PriceListItem
		pages   int
		skipped int
	)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &models.ProviderCallError{Op: "pricing GetProducts " + ServiceCodeEC2, Err: err}
		}
		pages++
		for _, raw := range page.PriceList {
			item, err := ParsePriceListItem(raw)
			if err != nil {
				skipped++
				c.logger.WithFields(logrus.Fields{
					"service": ServiceCodeEC2,
					"region":  regionCode,
				}).WithError(err).Debug("skipping unusable price list item")
				continue
			}
			if !item.HasShapeAttributes() {
				continue
			}
			items = append(items, item)
		}
	}

	c.logger.WithFields(logrus.Fields{
		"service":       ServiceCodeEC2,
		"region":        regionCode,
		"pages":         pages,
		"product_count": len(items),
		"skipped":       skipped,
	}).Debug("EC2 catalog fetched")

	return items, nil
}

func termMatch(field, value string) types.Filter {
	return types.Filter{
		Type:  types.FilterTypeTermMatch,
		Field: aws.String(field),
		Value: aws.String(value),
	}
}

// String renders q for log lines and error messages.
func (q RDSQuery) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", q.Engine, q.InstanceType, q.RegionCode, q.MultiAZ.DeploymentOption())
}
