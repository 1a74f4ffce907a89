package bootstrap

import (
	"context"
	"testing"

	"github.com/kirillkom/vendor-finder/internal/config"
	"github.com/kirillkom/vendor-finder/internal/core/domain"
)

func TestNewCLIRunsInlineWithoutCredentials(t *testing.T) {
	app, err := New(context.Background(), config.Config{
		OracleProvider:    config.OracleOpenAI,
		DiscoveryDispatch: config.DispatchNATS,
	}, Options{Role: RoleCLI})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()

	if app.Queue != nil {
		t.Fatalf("cli must not connect to nats")
	}
	if app.Discovery != app.Engine {
		t.Fatalf("cli must call the inline engine")
	}
	if app.OracleProvider != config.OracleNone {
		t.Fatalf("expected fallback oracle without OPENAI_API_KEY, got %q", app.OracleProvider)
	}

	result, err := app.Discovery.FindVendors(context.Background(), domain.DiscoveryRequest{Service: "cake baker", Location: "Lagos"})
	if err != nil {
		t.Fatalf("FindVendors() error = %v", err)
	}
	if result.StopReason != domain.StopNoSearchResults || result.TotalVendors != 0 {
		t.Fatalf("expected an empty run without providers, got %+v", result)
	}
}

func TestNewAdvisoryModelSelection(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{"openai with key", config.Config{OracleProvider: config.OracleOpenAI, OpenAIAPIKey: "sk-test"}, config.OracleOpenAI},
		{"openai without key", config.Config{OracleProvider: config.OracleOpenAI}, config.OracleNone},
		{"ollama", config.Config{OracleProvider: config.OracleOllama, OllamaURL: "http://localhost:11434"}, config.OracleOllama},
		{"none", config.Config{OracleProvider: config.OracleNone}, config.OracleNone},
		{"unknown", config.Config{OracleProvider: "claude"}, config.OracleNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			model, got := newAdvisoryModel(tc.cfg, nil)
			if got != tc.want {
				t.Fatalf("expected provider %q, got %q", tc.want, got)
			}
			if (model == nil) != (tc.want == config.OracleNone) {
				t.Fatalf("model presence does not match provider %q", got)
			}
		})
	}
}

func TestSearchProvidersReportConfiguration(t *testing.T) {
	providers := newSearchProviders(config.Config{
		BingAPIKey:        "bing-key",
		DuckDuckGoEnabled: true,
	}, nil, nil)

	names := configuredProviderNames(providers)
	if len(names) != 2 || names[0] != "bing" || names[1] != "duckduckgo" {
		t.Fatalf("unexpected configured providers %v", names)
	}
}
