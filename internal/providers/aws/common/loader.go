package common

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// DefaultRegion is used when neither the options nor the shared config name
// a region.
const DefaultRegion = "us-east-1"

// staticProfileName labels configurations built from static keys.
const staticProfileName = "static"

// configLoader matches awsconfig.LoadDefaultConfig.
type configLoader func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error)

// DefaultAWSClientProvider is the production implementation of AWSClientProvider.
// It reads the standard shared config and credentials files, or takes static
// keys from LoadOptions, using the AWS SDK v2.
//
// Inject a custom ClientFactory via NewDefaultAWSClientProviderWithFactory to
// replace real SDK clients with stubs in unit tests.
type DefaultAWSClientProvider struct {
	factory ClientFactory
	load    configLoader
}

// NewDefaultAWSClientProvider returns a provider backed by the real AWS SDK.
func NewDefaultAWSClientProvider() *DefaultAWSClientProvider {
	return &DefaultAWSClientProvider{factory: NewClientSet, load: awsconfig.LoadDefaultConfig}
}

// NewDefaultAWSClientProviderWithFactory returns a provider that uses f to
// create its ClientSet. Pass a stub factory in tests.
func NewDefaultAWSClientProviderWithFactory(f ClientFactory) *DefaultAWSClientProvider {
	return &DefaultAWSClientProvider{factory: f, load: awsconfig.LoadDefaultConfig}
}

// ---------------------------------------------------------------------------
// AWSClientProvider implementation
// ---------------------------------------------------------------------------

// LoadProfile loads an SDK config for opts and returns a fully populated
// ProfileConfig including the resolved account ID.
func (p *DefaultAWSClientProvider) LoadProfile(ctx context.Context, opts LoadOptions) (*ProfileConfig, error) {
	name := profileDisplayName(opts)

	cfg, err := p.load(ctx, loadOptionFns(opts)...)
	if err != nil {
		return nil, fmt.Errorf("load AWS profile %q: %w", name, err)
	}

	// Fall back to us-east-1 when nothing names a region so that all SDK
	// clients can be constructed.
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}

	clients := p.factory(cfg)

	accountID, err := resolveAccountID(ctx, clients.STS)
	if err != nil {
		return nil, fmt.Errorf("resolve account ID for profile %q: %w", name, err)
	}

	return &ProfileConfig{
		ProfileName: name,
		AccountID:   accountID,
		Region:      cfg.Region,
		Config:      cfg,
		Clients:     clients,
	}, nil
}

// ConfigForRegion returns a copy of cfg.Config with Region set to region.
func (p *DefaultAWSClientProvider) ConfigForRegion(cfg *ProfileConfig, region string) aws.Config {
	regional := cfg.Config
	regional.Region = region
	return regional
}

// ---------------------------------------------------------------------------
// Package-private helpers
// ---------------------------------------------------------------------------

func loadOptionFns(opts LoadOptions) []func(*awsconfig.LoadOptions) error {
	var fns []func(*awsconfig.LoadOptions) error
	if opts.HasStaticCredentials() {
		fns = append(fns, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	} else if opts.Profile != "" {
		fns = append(fns, awsconfig.WithSharedConfigProfile(opts.Profile))
	}
	if opts.Region != "" {
		fns = append(fns, awsconfig.WithRegion(opts.Region))
	}
	return fns
}

// profileDisplayName returns a human-readable identifier for opts.
func profileDisplayName(opts LoadOptions) string {
	switch {
	case opts.HasStaticCredentials():
		return staticProfileName
	case opts.Profile == "":
		return "default"
	default:
		return opts.Profile
	}
}

// resolveAccountID calls STS GetCallerIdentity to retrieve the numeric AWS
// account ID for the credentials currently loaded in stsClient.
func resolveAccountID(ctx context.Context, stsClient STSClient) (string, error) {
	out, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("STS GetCallerIdentity: %w", err)
	}
	if out.Account == nil {
		return "", fmt.Errorf("STS GetCallerIdentity returned nil account")
	}
	return aws.ToString(out.Account), nil
}
