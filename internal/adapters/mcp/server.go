package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
	"github.com/kirillkom/vendor-finder/internal/core/ports"
)

const (
	serverName   = "vendor-finder"
	ToolName     = "find_vendors"
	toolGuidance = "Find small businesses and independent vendors for a service in a location. " +
		"Returns ranked vendors with WhatsApp and Instagram contacts plus an analysis of result quality."
)

type Server struct {
	discovery ports.VendorDiscoveryService
	mcp       *server.MCPServer
}

func NewServer(discovery ports.VendorDiscoveryService, version string) *Server {
	s := &Server{
		discovery: discovery,
		mcp:       server.NewMCPServer(serverName, version, server.WithToolCapabilities(false), server.WithRecovery()),
	}
	s.mcp.AddTool(findVendorsTool(), s.handleFindVendors)
	return s
}

func findVendorsTool() mcp.Tool {
	return mcp.NewTool(ToolName,
		mcp.WithDescription(toolGuidance),
		mcp.WithString("service", mcp.Required(), mcp.Description("Service or product, for example \"cake baker\".")),
		mcp.WithString("location", mcp.Required(), mcp.Description("City or area, for example \"Lekki, Lagos\".")),
		mcp.WithString("platform", mcp.Description("Preferred social platform."), mcp.Enum("instagram", "twitter")),
		mcp.WithNumber("max_results",
			mcp.Description(fmt.Sprintf("Maximum vendors to return (default %d).", domain.DefaultMaxResults)),
			mcp.Min(domain.MinMaxResults), mcp.Max(domain.MaxMaxResults)),
		mcp.WithNumber("min_confidence",
			mcp.Description(fmt.Sprintf("Minimum confidence score (default %.1f).", domain.DefaultMinConfidence)),
			mcp.Min(domain.MinMinConfidence), mcp.Max(domain.MaxMinConfidence)),
	)
}

func (s *Server) handleFindVendors(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	service, err := request.RequireString("service")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	location, err := request.RequireString("location")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := domain.DiscoveryRequest{
		Service:  service,
		Location: location,
		Platform: request.GetString("platform", ""),
	}
	args := request.GetArguments()
	if _, ok := args["max_results"]; ok {
		req.MaxResults = domain.Ptr(request.GetInt("max_results", 0))
	}
	if _, ok := args["min_confidence"]; ok {
		req.MinConfidence = domain.Ptr(request.GetFloat("min_confidence", 0))
	}

	result, err := s.discovery.FindVendors(ctx, req)
	if err != nil {
		slog.Warn("mcp_find_vendors_failed", "error", err.Error())
		return mcp.NewToolResultError(err.Error()), nil
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode find_vendors result: %w", err)
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// ServeStdio blocks serving JSON-RPC on in/out until ctx is cancelled or input closes.
// Protocol errors go to errLog so stdout carries only protocol frames.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer, errLog *slog.Logger) error {
	stdio := server.NewStdioServer(s.mcp)
	if errLog != nil {
		stdio.SetErrorLogger(slog.NewLogLogger(errLog.Handler(), slog.LevelError))
	}
	if err := stdio.Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("serve mcp stdio: %w", err)
	}
	return nil
}
