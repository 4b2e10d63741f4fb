package inventory

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/rds"
)

// ---------------------------------------------------------------------------
// Narrow client interfaces
//
// Each interface lists only the SDK operations used by this package.
// The real *ec2.Client, *rds.Client, etc. satisfy these automatically.
// Replace any field in inventoryClients with a stub struct in unit tests.
// ---------------------------------------------------------------------------

// inventoryEC2Client covers the EC2 operations required for discovery.
// It also satisfies ec2.DescribeInstancesAPIClient for the SDK v2 paginator.
type inventoryEC2Client interface {
	DescribeInstances(
		ctx context.Context,
		params *ec2svc.DescribeInstancesInput,
		optFns ...func(*ec2svc.Options),
	) (*ec2svc.DescribeInstancesOutput, error)

	DescribeInstanceTypes(
		ctx context.Context,
		params *ec2svc.DescribeInstanceTypesInput,
		optFns ...func(*ec2svc.Options),
	) (*ec2svc.DescribeInstanceTypesOutput, error)

	DescribeInstanceStatus(
		ctx context.Context,
		params *ec2svc.DescribeInstanceStatusInput,
		optFns ...func(*ec2svc.Options),
	) (*ec2svc.DescribeInstanceStatusOutput, error)
}

// inventoryRDSClient covers the RDS operations required for discovery.
// Satisfies rds.DescribeDBInstancesAPIClient for the SDK v2 paginator.
type inventoryRDSClient interface {
	DescribeDBInstances(
		ctx context.Context,
		params *rds.DescribeDBInstancesInput,
		optFns ...func(*rds.Options),
	) (*rds.DescribeDBInstancesOutput, error)
}

// inventoryCWClient covers the CloudWatch operations used for CPU enrichment.
// The client must be initialised with a regional aws.Config.
type inventoryCWClient interface {
	GetMetricStatistics(
		ctx context.Context,
		params *cloudwatch.GetMetricStatisticsInput,
		optFns ...func(*cloudwatch.Options),
	) (*cloudwatch.GetMetricStatisticsOutput, error)
}

// ---------------------------------------------------------------------------
// inventoryClients and factory
// ---------------------------------------------------------------------------

// inventoryClients holds the service clients for one region.
type inventoryClients struct {
	EC2 inventoryEC2Client
	RDS inventoryRDSClient
	CW  inventoryCWClient
}

// inventoryClientFactory creates an inventoryClients from a regional aws.Config.
type inventoryClientFactory func(cfg aws.Config) *inventoryClients

// newDefaultInventoryClients is the production inventoryClientFactory.
func newDefaultInventoryClients(cfg aws.Config) *inventoryClients {
	return &inventoryClients{
		EC2: ec2svc.NewFromConfig(cfg),
		RDS: rds.NewFromConfig(cfg),
		CW:  cloudwatch.NewFromConfig(cfg),
	}
}
