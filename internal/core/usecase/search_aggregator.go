package usecase

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
	"github.com/kirillkom/vendor-finder/internal/core/ports"
)

const defaultResultsPerProvider = 10

// SearchAggregator fans queries out to every configured provider and merges the rows.
type SearchAggregator struct {
	providers          []ports.SearchProvider
	resultsPerProvider int
}

func NewSearchAggregator(providers []ports.SearchProvider, resultsPerProvider int) *SearchAggregator {
	if resultsPerProvider <= 0 {
		resultsPerProvider = defaultResultsPerProvider
	}
	return &SearchAggregator{
		providers:          providers,
		resultsPerProvider: resultsPerProvider,
	}
}

// SearchVendors never fails: provider errors and missing credentials count as empty result sets.
func (a *SearchAggregator) SearchVendors(ctx context.Context, service, location, platform string) []domain.SearchHit {
	queries := BuildSearchQueries(service, location, platform)

	hits := make([]domain.SearchHit, 0)
	seen := make(map[string]struct{})
	for _, query := range queries {
		for _, provider := range a.providers {
			if provider == nil || !provider.Configured() {
				continue
			}
			if ctx.Err() != nil {
				return finalizeHits(hits, service, location, platform)
			}

			rows, err := provider.Search(ctx, query, a.resultsPerProvider)
			if err != nil {
				slog.Warn("search_provider_failed",
					"provider", provider.Name(),
					"query", query,
					"error", err,
				)
				continue
			}

			for _, row := range rows {
				url := strings.TrimSpace(row.URL)
				if url == "" {
					continue
				}
				if _, ok := seen[url]; ok {
					continue
				}
				seen[url] = struct{}{}
				hits = append(hits, domain.SearchHit{
					Title:    row.Title,
					URL:      url,
					Snippet:  row.Snippet,
					Provider: provider.Name(),
					Query:    query,
				})
			}
		}
	}

	return finalizeHits(hits, service, location, platform)
}

func finalizeHits(hits []domain.SearchHit, service, location, platform string) []domain.SearchHit {
	for i := range hits {
		hits[i].RelevanceScore = RelevanceScore(hits[i], service, location, platform)
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].RelevanceScore > hits[j].RelevanceScore
	})
	return hits
}

// RelevanceScore is a lightweight textual match score in [0, 1].
func RelevanceScore(hit domain.SearchHit, service, location, platform string) float64 {
	title := strings.ToLower(hit.Title)
	snippet := strings.ToLower(hit.Snippet)

	score := 0.0
	if s := strings.ToLower(strings.TrimSpace(service)); s != "" && strings.Contains(title, s) {
		score += 0.3
	}
	if l := strings.ToLower(strings.TrimSpace(location)); l != "" && strings.Contains(snippet, l) {
		score += 0.3
	}
	if strings.Contains(snippet, "whatsapp") || strings.Contains(snippet, "wa.me") {
		score += 0.2
	}
	if p := strings.ToLower(strings.TrimSpace(platform)); p != "" && strings.Contains(strings.ToLower(hit.Query), p) {
		score += 0.2
	}
	return roundScore(clampUnit(score))
}
