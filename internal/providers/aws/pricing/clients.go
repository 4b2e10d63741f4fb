package pricing

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	pricingsvc "github.com/aws/aws-sdk-go-v2/service/pricing"
)

// pricingEndpointRegion is the region the Pricing API is called in. The
// catalog covers every region regardless of the endpoint used.
const pricingEndpointRegion = "us-east-1"

// pricingClient covers the Pricing API operations used by this package.
// Satisfies pricingsvc.GetProductsAPIClient for the SDK v2 paginator.
type pricingClient interface {
	GetProducts(
		ctx context.Context,
		params *pricingsvc.GetProductsInput,
		optFns ...func(*pricingsvc.Options),
	) (*pricingsvc.GetProductsOutput, error)
}

// newDefaultPricingClient builds the production client. The region in cfg is
// overridden to us-east-1.
func newDefaultPricingClient(cfg aws.Config) pricingClient {
	pCfg := cfg
	pCfg.Region = pricingEndpointRegion
	return pricingsvc.NewFromConfig(pCfg)
}
