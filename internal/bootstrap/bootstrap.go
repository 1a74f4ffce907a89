package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/vendor-finder/internal/config"
	"github.com/kirillkom/vendor-finder/internal/core/ports"
	"github.com/kirillkom/vendor-finder/internal/core/usecase"
	"github.com/kirillkom/vendor-finder/internal/infrastructure/geo/googlemaps"
	"github.com/kirillkom/vendor-finder/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/vendor-finder/internal/infrastructure/llm/openai"
	"github.com/kirillkom/vendor-finder/internal/infrastructure/pagefetch"
	"github.com/kirillkom/vendor-finder/internal/infrastructure/queue/nats"
	"github.com/kirillkom/vendor-finder/internal/infrastructure/resilience"
	"github.com/kirillkom/vendor-finder/internal/infrastructure/search"
	"github.com/kirillkom/vendor-finder/internal/infrastructure/search/bing"
	"github.com/kirillkom/vendor-finder/internal/infrastructure/search/duckduckgo"
	"github.com/kirillkom/vendor-finder/internal/infrastructure/search/google"
)

// Role decides how a binary reaches the discovery engine.
type Role int

const (
	// RoleAPI runs discovery inline or dispatches it over NATS depending on DISCOVERY_DISPATCH.
	RoleAPI Role = iota
	// RoleWorker always connects to NATS and serves the inline engine.
	RoleWorker
	// RoleCLI never touches NATS.
	RoleCLI
)

// Observer receives discovery, oracle, search provider and circuit breaker telemetry.
type Observer interface {
	ports.DiscoveryObserver
	search.CallObserver
	ObserveBreakerState(operation, state string)
}

type Options struct {
	Role     Role
	Observer Observer
}

type App struct {
	Config config.Config

	// Discovery is what the binary's surface calls: the inline engine or the NATS dispatcher.
	Discovery ports.VendorDiscoveryService
	// Engine is always the in-process discovery loop.
	Engine *usecase.DiscoveryUseCase
	Queue  *nats.Queue

	OracleProvider string

	closeFn func()
}

func New(_ context.Context, cfg config.Config, options Options) (*App, error) {
	for _, key := range cfg.MissingCredentials() {
		slog.Warn("configuration_warning", "key", key, "message", key+" is not set; the dependent capability is skipped")
	}

	resilienceCfg := cfg.ResilienceConfig()
	var discoveryObserver ports.DiscoveryObserver
	var callObserver search.CallObserver
	if options.Observer != nil {
		discoveryObserver = options.Observer
		callObserver = options.Observer
		resilienceCfg.OnStateChange = func(operation string, _, to resilience.BreakerState) {
			options.Observer.ObserveBreakerState(operation, string(to))
		}
	}
	executor := resilience.NewExecutor(resilienceCfg)

	providers := newSearchProviders(cfg, executor, callObserver)
	aggregator := usecase.NewSearchAggregator(providers, cfg.SearchResultsPerProvider)

	pages := pagefetch.New(pagefetch.Options{
		Timeout:  config.Seconds(cfg.PageTimeoutSeconds),
		Executor: executor,
	})
	places, err := googlemaps.New(cfg.GoogleMapsAPIKey, googlemaps.Options{
		Timeout:  config.Seconds(cfg.EnrichTimeoutSeconds),
		Executor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init google maps enricher: %w", err)
	}
	var enricher ports.BusinessEnricher
	if places.Available() {
		enricher = places
	}
	extractor := usecase.NewVendorExtractor(pages, enricher, usecase.ExtractorLimits{
		PageTimeout:       config.Seconds(cfg.PageTimeoutSeconds),
		EnrichmentTimeout: config.Seconds(cfg.EnrichTimeoutSeconds),
	})

	model, oracleProvider := newAdvisoryModel(cfg, executor)
	oracle := usecase.NewAdvisoryOracle(model, discoveryObserver, config.Seconds(cfg.OracleTimeoutSeconds))

	engine := usecase.NewDiscoveryUseCase(aggregator, extractor, oracle, discoveryObserver, usecase.DiscoveryLimits{
		MaxAttempts:        cfg.MaxAttempts,
		ExtractConcurrency: cfg.ExtractConcurrency,
	})

	app := &App{
		Config:         cfg,
		Discovery:      engine,
		Engine:         engine,
		OracleProvider: oracleProvider,
	}

	connectQueue := options.Role == RoleWorker ||
		(options.Role == RoleAPI && cfg.DiscoveryDispatch == config.DispatchNATS)
	if connectQueue {
		queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			RequestTimeout:     config.Seconds(cfg.NATSRequestTimeoutSeconds),
			ResilienceExecutor: executor,
		})
		if err != nil {
			return nil, fmt.Errorf("init message queue: %w", err)
		}
		app.Queue = queue
		app.closeFn = queue.Close
		if options.Role == RoleAPI {
			app.Discovery = queue
		}
	}

	slog.Info("discovery_engine_ready",
		"providers", configuredProviderNames(providers),
		"oracle", oracleProvider,
		"enrichment", enricher != nil,
		"dispatch", dispatchMode(options.Role, cfg),
	)
	return app, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func newSearchProviders(cfg config.Config, executor *resilience.Executor, observer search.CallObserver) []ports.SearchProvider {
	timeout := config.Seconds(cfg.SearchTimeoutSeconds)
	guard := search.GuardOptions{
		RequestsPerMinute: cfg.MaxRequestsPerMinute,
		Executor:          executor,
		Observer:          observer,
	}
	return []ports.SearchProvider{
		search.Guard(google.New(cfg.GoogleAPIKey, cfg.GoogleSearchEngineID, google.Options{Timeout: timeout}), guard),
		search.Guard(bing.New(cfg.BingAPIKey, bing.Options{Endpoint: cfg.BingSearchEndpoint, Timeout: timeout}), guard),
		search.Guard(duckduckgo.New(cfg.DuckDuckGoEnabled, duckduckgo.Options{Timeout: timeout}), guard),
	}
}

// newAdvisoryModel returns a nil model when the selected provider cannot be used,
// which puts the oracle on its deterministic fallbacks.
func newAdvisoryModel(cfg config.Config, executor *resilience.Executor) (ports.AdvisoryModel, string) {
	switch cfg.OracleProvider {
	case config.OracleOpenAI:
		client, err := openai.New(openai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		}, executor)
		if err != nil {
			slog.Warn("advisory_model_unavailable", "provider", config.OracleOpenAI, "error", err.Error())
			return nil, config.OracleNone
		}
		return client, config.OracleOpenAI
	case config.OracleOllama:
		return ollama.NewWithExecutor(cfg.OllamaURL, cfg.OllamaGenModel, executor), config.OracleOllama
	case config.OracleNone:
		return nil, config.OracleNone
	default:
		slog.Warn("advisory_model_unavailable", "provider", cfg.OracleProvider, "error", "unknown ORACLE_PROVIDER")
		return nil, config.OracleNone
	}
}

func configuredProviderNames(providers []ports.SearchProvider) []string {
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		if p.Configured() {
			names = append(names, p.Name())
		}
	}
	return names
}

func dispatchMode(role Role, cfg config.Config) string {
	if role == RoleAPI && cfg.DiscoveryDispatch == config.DispatchNATS {
		return config.DispatchNATS
	}
	return config.DispatchInline
}
