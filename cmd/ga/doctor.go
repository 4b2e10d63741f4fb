package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/models"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/providers/aws/common"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/providers/aws/pricing"
)

// probeQuery is a listing that exists in every price list snapshot. Only
// reachability is checked; an empty answer still counts as reachable.
var probeQuery = pricing.RDSQuery{
	InstanceType: "db.t3.micro",
	RegionCode:   common.DefaultRegion,
	Engine:       models.EnginePostgreSQL,
	MultiAZ:      models.MultiAZNo,
}

// DoctorResult is the structured output of ga doctor. It can be serialised to
// JSON via --format=json or rendered as a human-readable table (default).
type DoctorResult struct {
	AWS struct {
		Profile     string `json:"profile,omitempty"`
		StaticKeys  bool   `json:"static_keys"`
		Credentials bool   `json:"credentials_ok"`
		AccountID   string `json:"account_id,omitempty"`
		Error       string `json:"error,omitempty"`
	} `json:"aws"`

	Pricing struct {
		Reachable bool   `json:"reachable"`
		Error     string `json:"error,omitempty"`
	} `json:"pricing"`

	Config struct {
		Path    string `json:"path"`
		Present bool   `json:"present"`
	} `json:"config"`

	OverallHealthy bool `json:"overall_healthy"`
}

// doctorDeps are the collaborators runDoctor needs.
type doctorDeps struct {
	provider   common.AWSClientProvider
	newCatalog func(cfg aws.Config, logger *logrus.Logger) pricing.Catalog
	logger     *logrus.Logger
	opts       common.LoadOptions
	configPath string
}

func newDoctorCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run environment diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			result, err := runDoctor(cmd.Context(), doctorDeps{
				provider:   a.provider,
				newCatalog: a.newCatalog,
				logger:     a.logger,
				opts:       a.loadOptions(),
				configPath: a.loader.ConfigPath(),
			}, cmd.OutOrStdout(), format)
			if err != nil {
				// Rendering failure; main prints it.
				return err
			}
			if !result.OverallHealthy {
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().String("format", "table", `Output format: "table" or "json"`)
	return cmd
}

// runDoctor collects all diagnostic results, renders them to w in the
// requested format, and returns the result.
// The returned error covers only rendering failures. Callers must inspect
// result.OverallHealthy to determine whether the environment is healthy.
func runDoctor(ctx context.Context, deps doctorDeps, w io.Writer, format string) (DoctorResult, error) {
	result := collectDoctorResult(ctx, deps)

	switch format {
	case "json":
		if err := json.NewEncoder(w).Encode(result); err != nil {
			return result, fmt.Errorf("encode doctor result: %w", err)
		}
	default:
		renderDoctorTable(result, w)
	}

	return result, nil
}

// collectDoctorResult runs all environment checks and populates a DoctorResult.
// It performs no rendering.
func collectDoctorResult(ctx context.Context, deps doctorDeps) DoctorResult {
	var result DoctorResult

	// AWS: credentials → STS account ID → pricing probe.
	result.AWS.Profile = deps.opts.Profile
	result.AWS.StaticKeys = deps.opts.HasStaticCredentials()
	profileCfg, err := deps.provider.LoadProfile(ctx, deps.opts)
	if err != nil {
		result.AWS.Error = err.Error()
	} else {
		result.AWS.Credentials = true
		result.AWS.AccountID = profileCfg.AccountID

		catalog := deps.newCatalog(deps.provider.ConfigForRegion(profileCfg, common.DefaultRegion), deps.logger)
		_, err = catalog.RDSProduct(ctx, probeQuery)
		if err != nil && !errors.Is(err, models.ErrNoPricingData) {
			result.Pricing.Error = err.Error()
		} else {
			result.Pricing.Reachable = true
		}
	}

	// Config: the file is optional.
	result.Config.Path = deps.configPath
	if _, err := os.Stat(deps.configPath); err == nil {
		result.Config.Present = true
	}

	result.OverallHealthy = result.AWS.Credentials && result.Pricing.Reachable
	return result
}

// renderDoctorTable writes the human-readable diagnostic output from result to w.
func renderDoctorTable(result DoctorResult, w io.Writer) {
	fmt.Fprintln(w, "Environment Diagnostics")

	switch {
	case result.AWS.StaticKeys:
		fmt.Fprintln(w, "\nAWS (static keys):")
	case result.AWS.Profile != "":
		fmt.Fprintf(w, "\nAWS (profile: %s):\n", result.AWS.Profile)
	default:
		fmt.Fprintln(w, "\nAWS:")
	}
	if !result.AWS.Credentials {
		doctorPrint(w, "Credentials", "FAIL", result.AWS.Error)
		doctorPrint(w, "STS Identity", "FAIL", "skipped")
		doctorPrint(w, "Pricing API", "FAIL", "skipped")
	} else {
		doctorPrint(w, "Credentials", "OK", "")
		doctorPrint(w, "STS Identity", "OK", "Account: "+result.AWS.AccountID)
		if result.Pricing.Reachable {
			doctorPrint(w, "Pricing API", "OK", "")
		} else {
			doctorPrint(w, "Pricing API", "FAIL", result.Pricing.Error)
		}
	}

	fmt.Fprintln(w, "\nConfig:")
	if result.Config.Present {
		doctorPrint(w, "config.yaml present", "YES", result.Config.Path)
	} else {
		doctorPrint(w, "config.yaml present", "Not found (optional)", "")
	}
}

// doctorPrint writes a single diagnostic check line to w.
// When detail is non-empty it is appended in parentheses.
func doctorPrint(w io.Writer, label, status, detail string) {
	if detail != "" {
		fmt.Fprintf(w, "  %s: %s (%s)\n", label, status, detail)
	} else {
		fmt.Fprintf(w, "  %s: %s\n", label, status)
	}
}
