package ports

import (
	"context"
	"time"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
)

// SearchProvider runs a keyword query against one web search backend.
type SearchProvider interface {
	Name() string
	// Configured reports whether credentials are present; unconfigured providers are skipped.
	Configured() bool
	Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)
}

// PageFetcher downloads a page and reduces it to a title and readable text.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (*domain.PageContent, error)
}

// BusinessEnricher resolves a vendor name and location to a place record.
type BusinessEnricher interface {
	Enrich(ctx context.Context, name, location string) (*domain.BusinessEnrichment, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

// AdvisoryModel answers a prompt with a JSON document.
type AdvisoryModel interface {
	GenerateJSON(ctx context.Context, prompt domain.AdvisoryPrompt) (string, error)
}

// DiscoveryObserver receives per-run telemetry from the orchestrator.
type DiscoveryObserver interface {
	ObserveDiscovery(result *domain.AgentResult, duration time.Duration)
	ObserveOracleCall(operation, outcome string)
}
