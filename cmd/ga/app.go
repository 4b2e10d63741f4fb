package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/config"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/engine"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/output"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/providers/aws/common"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/providers/aws/inventory"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/providers/aws/pricing"
)

// app carries the global flags and the collaborators shared by every
// subcommand. Tests replace the constructors with stubs.
type app struct {
	configPath string
	profile    string
	logLevel   string
	logFormat  string
	quiet      bool

	loader config.Loader
	cfg    *config.Config
	creds  config.Credentials
	logger *logrus.Logger

	provider     common.AWSClientProvider
	newCatalog   func(cfg aws.Config, logger *logrus.Logger) pricing.Catalog
	newCollector func(profile *common.ProfileConfig, provider common.AWSClientProvider, logger *logrus.Logger) inventory.Collector
	now          func() time.Time
	isTTY        func() bool
}

func newApp() *app {
	return &app{
		provider: common.NewDefaultAWSClientProvider(),
		newCatalog: func(cfg aws.Config, logger *logrus.Logger) pricing.Catalog {
			return pricing.NewDefaultCatalog(cfg, logger)
		},
		newCollector: func(profile *common.ProfileConfig, provider common.AWSClientProvider, logger *logrus.Logger) inventory.Collector {
			return inventory.NewDefaultCollector(profile, provider, logger)
		},
		now: time.Now,
		isTTY: func() bool {
			fd := os.Stdout.Fd()
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		},
	}
}

// setup loads the config file and the credentials dotfile and builds the
// logger. Flags win over the config file.
func (a *app) setup(cmd *cobra.Command) error {
	a.loader = config.NewFileLoader(a.configPath)
	cfg, err := a.loader.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, format := cfg.Log.Level, cfg.Log.Format
	if a.logLevel != "" {
		level = a.logLevel
	}
	if a.logFormat != "" {
		format = a.logFormat
	}
	logger, err := newLogger(level, format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.logger = logger

	creds, err := config.LoadCredentials(cfg.AWS.CredentialsFile)
	if err != nil {
		return err
	}
	a.creds = creds
	logger.WithFields(logrus.Fields{
		"config":      a.loader.ConfigPath(),
		"credentials": cfg.AWS.CredentialsFile,
		"static_keys": !creds.Empty(),
	}).Debug("Configuration loaded")
	return nil
}

// newLogger returns a logrus logger writing to w with the named level and
// formatter ("text" or "json").
func newLogger(level, format string, w io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)
	switch strings.ToLower(format) {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("invalid log format %q: must be text or json", format)
	}
	return logger, nil
}

// loadOptions picks the credentials for LoadProfile. An explicit --profile
// wins over the dotfile keys.
func (a *app) loadOptions() common.LoadOptions {
	opts := common.LoadOptions{
		Profile: a.profile,
		Region:  a.creds.Region,
	}
	if opts.Region == "" {
		opts.Region = a.cfg.AWS.DefaultRegion
	}
	if a.profile == "" {
		opts.Profile = a.cfg.AWS.DefaultProfile
		opts.AccessKeyID = a.creds.AccessKeyID
		opts.SecretAccessKey = a.creds.SecretAccessKey
	}
	return opts
}

func (a *app) loadProfile(ctx context.Context) (*common.ProfileConfig, error) {
	p, err := a.provider.LoadProfile(ctx, a.loadOptions())
	if err != nil {
		return nil, fmt.Errorf("load AWS credentials: %w", err)
	}
	return p, nil
}

// catalogFor returns the pricing catalog for profile. The Pricing API is
// served from us-east-1 whatever region the instances run in.
func (a *app) catalogFor(profile *common.ProfileConfig) pricing.Catalog {
	return a.newCatalog(a.provider.ConfigForRegion(profile, common.DefaultRegion), a.logger)
}

func (a *app) advisor(ctx context.Context) (*engine.Advisor, error) {
	p, err := a.loadProfile(ctx)
	if err != nil {
		return nil, err
	}
	return engine.NewAdvisor(a.catalogFor(p), a.logger), nil
}

// startSpinner shows msg on w until the returned stop func is called. It is a
// no-op with --quiet or when stdout is not a terminal.
func (a *app) startSpinner(w io.Writer, msg string) (stop func()) {
	if a.quiet || !a.isTTY() {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + msg
	s.Start()
	return s.Stop
}

func (a *app) tableOptions() output.TableOptions {
	return output.TableOptions{Colored: a.isTTY()}
}
