package common

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// ProfileConfig is a resolved AWS identity with its SDK configuration and
// initialised service clients. It is the unit passed between provider
// functions and into the commands.
type ProfileConfig struct {
	// ProfileName is the shared-config profile, "default", or "static" when
	// credentials came from the dotfile or flags.
	ProfileName string

	// AccountID is the resolved AWS account ID (via STS).
	AccountID string

	// Region is the home region of this configuration.
	Region string

	// Config is the fully loaded AWS SDK v2 configuration.
	Config aws.Config

	// Clients holds service clients scoped to the home region.
	Clients *ClientSet
}

// LoadOptions selects the credentials used by LoadProfile.
type LoadOptions struct {
	// Profile is a shared-config profile name. Empty means the default chain.
	Profile string

	// Region overrides the region from the shared config.
	Region string

	// AccessKeyID and SecretAccessKey, when both set, are used as static
	// credentials instead of the profile.
	AccessKeyID     string
	SecretAccessKey string
}

// HasStaticCredentials reports whether both static keys are present.
func (o LoadOptions) HasStaticCredentials() bool {
	return o.AccessKeyID != "" && o.SecretAccessKey != ""
}

// AWSClientProvider loads AWS configurations. It is the sole entry point for
// AWS credential and region management across the provider layer.
//
// Implementations must use the AWS SDK v2 only. Never call the aws CLI.
type AWSClientProvider interface {
	// LoadProfile returns a ProfileConfig for opts, verified through STS.
	LoadProfile(ctx context.Context, opts LoadOptions) (*ProfileConfig, error)

	// ConfigForRegion clones cfg with the target region set.
	ConfigForRegion(cfg *ProfileConfig, region string) aws.Config
}
