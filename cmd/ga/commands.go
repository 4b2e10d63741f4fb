package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/config"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/providers/aws/common"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/region"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/version"
)

// Output formats accepted by --format.
const (
	formatTable = "table"
	formatCSV   = "csv"
	formatJSON  = "json"
)

func newRootCmd() *cobra.Command {
	return newRootCmdFor(newApp())
}

func newRootCmdFor(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "ga",
		Short:         "Graviton advisor: EC2 Graviton comparison and RDS reserved pricing",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: ~/.config/graviton-advisor/config.yaml)")
	root.PersistentFlags().StringVar(&a.profile, "profile", "", "AWS profile name (default: credentials dotfile, then the default chain)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format: text or json")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "Disable the progress spinner")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newLoginCmd(a))
	root.AddCommand(newDoctorCmd(a))
	root.AddCommand(newEC2Cmd(a))
	root.AddCommand(newRDSCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newMCPCmd(a))
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), version.Info())
			return nil
		},
	}
}

func newLoginCmd(a *app) *cobra.Command {
	var (
		accessKey string
		secretKey string
		regionArg string
		file      string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save static AWS credentials to the credentials dotfile",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := file
			if path == "" {
				path = a.cfg.AWS.CredentialsFile
			}
			creds := config.Credentials{
				AccessKeyID:     accessKey,
				SecretAccessKey: secretKey,
				Region:          region.Resolve(regionArg),
			}
			if err := config.SaveCredentials(path, creds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Credentials saved to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&accessKey, "access-key", "", "AWS access key ID")
	cmd.Flags().StringVar(&secretKey, "secret-key", "", "AWS secret access key")
	cmd.Flags().StringVar(&regionArg, "region", common.DefaultRegion, "Default region (label or code)")
	cmd.Flags().StringVar(&file, "file", "", "Credentials file (default: aws.credentials_file from the config)")
	_ = cmd.MarkFlagRequired("access-key")
	_ = cmd.MarkFlagRequired("secret-key")
	return cmd
}

// writeOutput runs fn against path when set, or against stdout.
func writeOutput(cmd *cobra.Command, path string, fn func(w io.Writer) error) error {
	if path == "" {
		return fn(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file %q: %w", path, err)
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output file %q: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return nil
}

func checkFormat(format string) error {
	switch format {
	case formatTable, formatCSV, formatJSON:
		return nil
	}
	return fmt.Errorf("invalid --format %q: must be table, csv or json", format)
}
