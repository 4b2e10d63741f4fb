package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	rdssvc "github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/models"
)

// engineNames maps RDS engine identifiers to pricing engines. Engines not
// listed are not priced.
var engineNames = map[string]models.Engine{
	"postgres": models.EnginePostgreSQL,
	"mariadb":  models.EngineMariaDB,
}

// discoverRDSRegion pages through every DB instance in region and returns
// the ones with a priceable engine as pricing entries.
func discoverRDSRegion(
	ctx context.Context,
	client inventoryRDSClient,
	region, start, end string,
) ([]models.PricingEntry, error) {
	paginator := rdssvc.NewDescribeDBInstancesPaginator(client, &rdssvc.DescribeDBInstancesInput{})

	var entries []models.PricingEntry
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("DescribeDBInstances page: %w", err)
		}
		for _, db := range page.DBInstances {
			if e, ok := toPricingEntry(db, region, start, end); ok {
				entries = append(entries, e)
			}
		}
	}
	return entries, nil
}

// toPricingEntry converts an SDK DBInstance to a pricing entry.
func toPricingEntry(db rdstypes.DBInstance, region, start, end string) (models.PricingEntry, bool) {
	engine, ok := engineNames[strings.ToLower(aws.ToString(db.Engine))]
	if !ok {
		return models.PricingEntry{}, false
	}
	multiAZ := models.MultiAZNo
	if aws.ToBool(db.MultiAZ) {
		multiAZ = models.MultiAZYes
	}
	return models.PricingEntry{
		Engine:       engine,
		InstanceType: aws.ToString(db.DBInstanceClass),
		Region:       region,
		MultiAZ:      multiAZ,
		Start:        start,
		End:          end,
	}, true
}
