package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
	"github.com/kirillkom/vendor-finder/internal/core/ports"
)

func TestSearchVendorsDeduplicatesByFirstOccurrence(t *testing.T) {
	google := &fakeSearchProvider{
		name:       "google",
		configured: true,
		rows: map[string][]domain.SearchResult{
			"*": {
				{Title: "A", URL: "https://a.example"},
				{Title: "B", URL: "https://b.example"},
			},
		},
	}
	bing := &fakeSearchProvider{
		name:       "bing",
		configured: true,
		rows: map[string][]domain.SearchResult{
			"*": {
				{Title: "B from bing", URL: "https://b.example"},
				{Title: "C", URL: "https://c.example"},
				{Title: "empty", URL: "  "},
			},
		},
	}

	agg := NewSearchAggregator([]ports.SearchProvider{google, bing}, 10)
	hits := agg.SearchVendors(context.Background(), "zzz", "nowhere", "")

	if len(hits) != 3 {
		t.Fatalf("expected 3 unique hits, got %d: %+v", len(hits), hits)
	}
	wantURLs := []string{"https://a.example", "https://b.example", "https://c.example"}
	for i, want := range wantURLs {
		if hits[i].URL != want {
			t.Fatalf("hit %d: expected %s, got %s", i, want, hits[i].URL)
		}
	}
	if hits[1].Provider != "google" || hits[1].Title != "B" {
		t.Fatalf("expected first occurrence of b.example from google, got %+v", hits[1])
	}
	if hits[0].Query != BuildSearchQueries("zzz", "nowhere", "")[0] {
		t.Fatalf("expected hit to carry the producing query, got %q", hits[0].Query)
	}
}

func TestSearchVendorsSkipsUnconfiguredAndFailingProviders(t *testing.T) {
	unconfigured := &fakeSearchProvider{name: "bing", configured: false}
	failing := &fakeSearchProvider{name: "google", configured: true, err: errors.New("status 500")}

	agg := NewSearchAggregator([]ports.SearchProvider{failing, unconfigured}, 10)
	hits := agg.SearchVendors(context.Background(), "cake", "Lagos", "instagram")
	if len(hits) != 0 {
		t.Fatalf("expected no hits, got %d", len(hits))
	}
	if unconfigured.calls() != 0 {
		t.Fatalf("unconfigured provider must not be called, got %d calls", unconfigured.calls())
	}
	if failing.calls() != len(BuildSearchQueries("cake", "Lagos", "instagram")) {
		t.Fatalf("expected failing provider to be tried once per query, got %d", failing.calls())
	}
}

func TestSearchVendorsSortsByRelevanceStably(t *testing.T) {
	provider := &fakeSearchProvider{
		name:       "google",
		configured: true,
		rows: map[string][]domain.SearchResult{
			"*": {
				{Title: "first plain", URL: "https://1.example"},
				{Title: "cake shop", URL: "https://2.example", Snippet: "Lagos whatsapp"},
				{Title: "second plain", URL: "https://3.example"},
			},
		},
	}

	agg := NewSearchAggregator([]ports.SearchProvider{provider}, 10)
	hits := agg.SearchVendors(context.Background(), "cake", "Lagos", "")
	if hits[0].URL != "https://2.example" {
		t.Fatalf("expected best match first, got %s", hits[0].URL)
	}
	if hits[1].URL != "https://1.example" || hits[2].URL != "https://3.example" {
		t.Fatalf("expected ties to keep provider order, got %s then %s", hits[1].URL, hits[2].URL)
	}
}

func TestRelevanceScoreFullMatchIsOne(t *testing.T) {
	hit := domain.SearchHit{
		Title:   "Best Cake Vendor",
		Snippet: "Order in LAGOS via wa.me/2348012345678",
		Query:   `site:instagram.com "cake vendor Lagos"`,
	}
	if got := RelevanceScore(hit, "cake", "Lagos", "instagram"); got != 1.0 {
		t.Fatalf("expected 1.0, got %v", got)
	}
}

func TestRelevanceScoreBounds(t *testing.T) {
	cases := []domain.SearchHit{
		{},
		{Title: "cake", Snippet: "lagos whatsapp wa.me", Query: "instagram instagram"},
		{Title: "CAKE cake", Snippet: "nothing"},
	}
	for _, hit := range cases {
		got := RelevanceScore(hit, "cake", "lagos", "instagram")
		if got < 0 || got > 1 {
			t.Fatalf("score out of bounds for %+v: %v", hit, got)
		}
	}
	if got := RelevanceScore(domain.SearchHit{Title: "x"}, "cake", "lagos", ""); got != 0 {
		t.Fatalf("expected 0 for unrelated hit, got %v", got)
	}
}
