package mcpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
)

type stubDiscovery struct {
	got domain.DiscoveryRequest
	err error
}

func (s *stubDiscovery) FindVendors(_ context.Context, req domain.DiscoveryRequest) (*domain.AgentResult, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	if err := req.Normalize().Validate(); err != nil {
		return nil, err
	}
	return &domain.AgentResult{
		Query:        domain.QueryEcho{Service: req.Service, Location: req.Location, Platform: domain.PlatformAuto},
		TotalVendors: 0,
		Vendors:      []domain.VendorCandidate{},
		StopReason:   domain.StopNoSearchResults,
		Attempts:     1,
	}, nil
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = ToolName
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) != 1 {
		t.Fatalf("expected one content item, got %d", len(result.Content))
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestFindVendorsToolRequiresServiceAndLocation(t *testing.T) {
	tool := findVendorsTool()
	for _, name := range []string{"service", "location"} {
		if !slices.Contains(tool.InputSchema.Required, name) {
			t.Fatalf("expected %q to be required, got %v", name, tool.InputSchema.Required)
		}
	}
}

func TestHandleFindVendorsPassesArguments(t *testing.T) {
	discovery := &stubDiscovery{}
	s := NewServer(discovery, "test")

	result, err := s.handleFindVendors(context.Background(), callRequest(map[string]any{
		"service":        "cake baker",
		"location":       "Lekki",
		"platform":       "twitter",
		"max_results":    float64(3),
		"min_confidence": 0.6,
	}))
	if err != nil {
		t.Fatalf("handleFindVendors() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}

	got := discovery.got
	if got.Service != "cake baker" || got.Location != "Lekki" || got.Platform != "twitter" ||
		got.MaxResults == nil || *got.MaxResults != 3 || got.MinConfidence == nil || *got.MinConfidence != 0.6 {
		t.Fatalf("unexpected request: %+v", got)
	}

	var payload domain.AgentResult
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("decode tool payload: %v", err)
	}
	if payload.StopReason != domain.StopNoSearchResults {
		t.Fatalf("unexpected stop reason %q", payload.StopReason)
	}
}

func TestHandleFindVendorsMissingServiceIsToolError(t *testing.T) {
	discovery := &stubDiscovery{}
	s := NewServer(discovery, "test")

	result, err := s.handleFindVendors(context.Background(), callRequest(map[string]any{"location": "Lagos"}))
	if err != nil {
		t.Fatalf("handleFindVendors() error = %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected tool error for missing service")
	}
	if discovery.got.Location != "" {
		t.Fatalf("discovery must not run without a service")
	}
}

func TestHandleFindVendorsSurfacesDiscoveryErrors(t *testing.T) {
	s := NewServer(&stubDiscovery{
		err: domain.WrapError(domain.ErrInvalidInput, "validate discovery request", errors.New("max_results must be between 1 and 20")),
	}, "test")

	result, err := s.handleFindVendors(context.Background(), callRequest(map[string]any{
		"service":     "plumber",
		"location":    "Ikeja",
		"max_results": float64(99),
	}))
	if err != nil {
		t.Fatalf("handleFindVendors() error = %v", err)
	}
	if !result.IsError || !strings.Contains(resultText(t, result), "max_results") {
		t.Fatalf("expected invalid input tool error, got %+v", result)
	}
}

func TestHandleFindVendorsLeavesOmittedLimitsUnset(t *testing.T) {
	discovery := &stubDiscovery{}
	s := NewServer(discovery, "test")

	result, err := s.handleFindVendors(context.Background(), callRequest(map[string]any{
		"service":  "tutor",
		"location": "Lagos",
	}))
	if err != nil {
		t.Fatalf("handleFindVendors() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}
	if discovery.got.MaxResults != nil || discovery.got.MinConfidence != nil {
		t.Fatalf("omitted limits must stay unset, got %+v", discovery.got)
	}
}

func TestHandleFindVendorsRejectsExplicitZeroLimits(t *testing.T) {
	cases := map[string]map[string]any{
		"max_results":    {"service": "tutor", "location": "Lagos", "max_results": float64(0)},
		"min_confidence": {"service": "tutor", "location": "Lagos", "min_confidence": float64(0)},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			s := NewServer(&stubDiscovery{}, "test")
			result, err := s.handleFindVendors(context.Background(), callRequest(args))
			if err != nil {
				t.Fatalf("handleFindVendors() error = %v", err)
			}
			if !result.IsError || !strings.Contains(resultText(t, result), name) {
				t.Fatalf("expected %s range error, got %+v", name, result)
			}
		})
	}
}
