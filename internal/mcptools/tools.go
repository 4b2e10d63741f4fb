// Package mcptools exposes the advisor as MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/engine"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/models"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/region"
)

// Tool names.
const (
	ToolEC2Compare    = "ec2_graviton_compare"
	ToolRDSPricing    = "rds_reserved_pricing"
	ToolResolveRegion = "resolve_region"
)

// NewServer returns an MCP server with every advisor tool registered.
func NewServer(advisor *engine.Advisor, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"graviton-advisor",
		version,
		server.WithToolCapabilities(true),
	)
	Register(s, advisor, time.Now)
	return s
}

// Register adds the advisor tools to s. now supplies the default RDS term.
func Register(s *server.MCPServer, advisor *engine.Advisor, now func() time.Time) {
	s.AddTool(
		mcp.NewTool(ToolEC2Compare,
			mcp.WithDescription("Propose up to five Graviton instance types with the same vCPU count and memory as an EC2 instance type, cheapest first, with monthly on-demand savings"),
			mcp.WithString("instance_type", mcp.Required(), mcp.Description("EC2 instance type, e.g. m5.large")),
			mcp.WithNumber("vcpus", mcp.Required(), mcp.Description("vCPU count of the instance type")),
			mcp.WithNumber("memory_gb", mcp.Required(), mcp.Description("Memory of the instance type in GiB")),
			mcp.WithString("region", mcp.Required(), mcp.Description("Region label (Paris, Frankfurt, ...) or region code")),
			mcp.WithBoolean("cheapest", mcp.Description("Return only the cheapest candidate")),
		),
		makeEC2CompareHandler(advisor),
	)

	s.AddTool(
		mcp.NewTool(ToolRDSPricing,
			mcp.WithDescription("Price an RDS instance on demand and for the one-year No Upfront, Partial Upfront and All Upfront reserved tiers, with annual savings"),
			mcp.WithString("engine", mcp.Required(), mcp.Enum(string(models.EnginePostgreSQL), string(models.EngineMariaDB))),
			mcp.WithString("instance_type", mcp.Required(), mcp.Description("RDS instance class, e.g. db.t3.medium")),
			mcp.WithString("region", mcp.Required(), mcp.Description("Region label (Paris, Frankfurt, ...) or region code")),
			mcp.WithString("multi_az", mcp.Enum(string(models.MultiAZYes), string(models.MultiAZNo)), mcp.Description("Multi-AZ deployment, defaults to Non")),
			mcp.WithString("start", mcp.Description("Term start, M/D/YYYY; defaults to today")),
			mcp.WithString("end", mcp.Description("Term end, M/D/YYYY; defaults to one year after start")),
		),
		makeRDSPricingHandler(advisor, now),
	)

	s.AddTool(
		mcp.NewTool(ToolResolveRegion,
			mcp.WithDescription("Resolve a region label to its AWS region code. \"All Regions\" lists every known region"),
			mcp.WithString("region", mcp.Required(), mcp.Description("Region label or \"All Regions\"")),
		),
		makeResolveRegionHandler(),
	)
}

func makeEC2CompareHandler(advisor *engine.Advisor) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		instanceType, err := request.RequireString("instance_type")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		vcpus, err := request.RequireInt("vcpus")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		memory, err := request.RequireFloat("memory_gb")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		label, err := request.RequireString("region")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		entry := models.EC2Entry{InstanceType: instanceType, VCPUs: vcpus, MemoryGB: memory, Region: label}
		if err := entry.Validate(); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		s := advisor.NewSession()
		rows := s.FetchEC2Comparison(ctx, entry.InstanceType, entry.VCPUs, entry.MemoryGB, entry.Region)
		if request.GetBool("cheapest", false) {
			filtered, ok := engine.FilterCheapest(rows)
			if !ok {
				return mcp.NewToolResultText(engine.NothingToFilter), nil
			}
			rows = filtered
		}
		return jsonResult(rows)
	}
}

func makeRDSPricingHandler(advisor *engine.Advisor, now func() time.Time) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		eng, err := request.RequireString("engine")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		instanceType, err := request.RequireString("instance_type")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		label, err := request.RequireString("region")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		defStart, defEnd := models.DefaultTerm(now())
		entry, err := models.NewPricingEntry(
			eng,
			instanceType,
			label,
			request.GetString("multi_az", string(models.MultiAZNo)),
			request.GetString("start", defStart),
			request.GetString("end", defEnd),
		)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		rec := advisor.NewSession().FetchRDSPrice(ctx, entry)
		return jsonResult(rec)
	}
}

type regionView struct {
	Label string `json:"label"`
	Code  string `json:"code"`
	Known bool   `json:"known"`
}

func makeResolveRegionHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		selector, err := request.RequireString("region")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		codes := region.Expand(selector)
		out := make([]regionView, 0, len(codes))
		for _, code := range codes {
			label := region.Label(code)
			out = append(out, regionView{Label: label, Code: code, Known: label != code})
		}
		return jsonResult(out)
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
