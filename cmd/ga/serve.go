package main

import (
	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/mcptools"
	apiserver "github.com/pankaj-dahiya-devops/graviton-advisor/internal/server"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/version"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the comparison and pricing HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Address
			}
			adv, err := a.advisor(cmd.Context())
			if err != nil {
				return err
			}
			if !a.logger.IsLevelEnabled(logrus.DebugLevel) {
				gin.SetMode(gin.ReleaseMode)
			}
			return apiserver.Run(cmd.Context(), addr, apiserver.SetupRoutes(adv, a.logger), a.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.address from the config)")
	return cmd
}

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the advisor tools over MCP on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			adv, err := a.advisor(cmd.Context())
			if err != nil {
				return err
			}
			return server.ServeStdio(mcptools.NewServer(adv, version.Version))
		},
	}
}
