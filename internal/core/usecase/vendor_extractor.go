package usecase

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
	"github.com/kirillkom/vendor-finder/internal/core/ports"
)

var jobPostKeywords = []string{
	"hiring",
	"salary",
	"vacancy",
	"apply",
	"job",
	"career",
	"position",
	"recruiting",
	"opening",
	"employment",
}

var nonVendorURLKeywords = []string{"news", "press", "job", "vacancy", "salary"}

type ExtractorLimits struct {
	PageTimeout       time.Duration
	EnrichmentTimeout time.Duration
}

// VendorExtractor builds a VendorCandidate from one search hit.
type VendorExtractor struct {
	pages    ports.PageFetcher
	enricher ports.BusinessEnricher
	limits   ExtractorLimits
}

// NewVendorExtractor accepts nil collaborators; a missing capability behaves like one that always fails.
func NewVendorExtractor(pages ports.PageFetcher, enricher ports.BusinessEnricher, limits ExtractorLimits) *VendorExtractor {
	if limits.PageTimeout <= 0 {
		limits.PageTimeout = 8 * time.Second
	}
	if limits.EnrichmentTimeout <= 0 {
		limits.EnrichmentTimeout = 5 * time.Second
	}
	return &VendorExtractor{
		pages:    pages,
		enricher: enricher,
		limits:   limits,
	}
}

func (e *VendorExtractor) Extract(ctx context.Context, hit domain.SearchHit, fallbackLocation string) domain.VendorCandidate {
	if isJobPost(hit.Title + " " + hit.Snippet) {
		return domain.DiscardedCandidate(hit, domain.DiscardJobPost)
	}
	if strings.TrimSpace(hit.URL) == "" {
		return domain.DiscardedCandidate(hit, domain.DiscardMissingURL)
	}
	if isNonVendorURL(hit.URL) {
		return domain.DiscardedCandidate(hit, domain.DiscardNonVendorURL)
	}

	candidate := domain.VendorCandidate{
		Identity: domain.VendorIdentity{
			Name:           strings.TrimSpace(hit.Title),
			SourceProvider: hit.Provider,
			URL:            hit.URL,
		},
	}

	numbers := make(map[string]struct{})
	links := make(map[string]struct{})
	extractWhatsAppNumbers(hit.Snippet, numbers)
	extractInstagramLinks(hit.Snippet, false, links)

	location := inferLocation(hit.Snippet, fallbackLocation)
	signalText := hit.Snippet

	if page := e.fetchPage(ctx, hit.URL); page != nil {
		extractWhatsAppNumbers(page.Text, numbers)
		extractInstagramLinks(page.Text, true, links)
		if title := strings.TrimSpace(page.Title); title != "" {
			candidate.Identity.Name = title
		}
		location = inferLocation(page.Text, location)
		signalText += " " + page.Text
	}
	candidate.Location.RawText = location

	if candidate.Identity.Name != "" && location != "" {
		candidate.Location.Enrichment = e.enrich(ctx, candidate.Identity.Name, location)
		candidate.Location.ResolvedText = location
	}

	candidate.Contacts.WhatsAppNumbers = sortedKeys(numbers)
	candidate.Social.InstagramLinks = sortedKeys(links)
	candidate.SoftSignals = countSoftSignals(signalText)
	candidate.ConfidenceScore, candidate.Evidence = ScoreCandidate(candidate)
	return candidate
}

func (e *VendorExtractor) fetchPage(ctx context.Context, pageURL string) *domain.PageContent {
	if e.pages == nil {
		return nil
	}
	fetchCtx, cancel := context.WithTimeout(ctx, e.limits.PageTimeout)
	defer cancel()

	page, err := e.pages.FetchPage(fetchCtx, pageURL)
	if err != nil {
		slog.Debug("page_fetch_failed", "url", pageURL, "error", err)
		return nil
	}
	return page
}

func (e *VendorExtractor) enrich(ctx context.Context, name, location string) *domain.BusinessEnrichment {
	if e.enricher == nil {
		return nil
	}
	enrichCtx, cancel := context.WithTimeout(ctx, e.limits.EnrichmentTimeout)
	defer cancel()

	record, err := e.enricher.Enrich(enrichCtx, name, location)
	if err != nil {
		if !domain.IsKind(err, domain.ErrCapabilityUnavailable) {
			slog.Warn("business_enrichment_failed", "name", name, "location", location, "error", err)
		}
		return nil
	}
	if record == nil {
		return nil
	}

	if strings.TrimSpace(record.Address) == "" && record.HasCoordinates() {
		address, err := e.enricher.ReverseGeocode(enrichCtx, record.Latitude, record.Longitude)
		if err != nil {
			slog.Warn("reverse_geocode_failed", "lat", record.Latitude, "lng", record.Longitude, "error", err)
		} else {
			record.Address = address
		}
	}
	return record
}

func isJobPost(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range jobPostKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func isNonVendorURL(raw string) bool {
	lower := strings.ToLower(raw)
	if isInstagramPost(lower) {
		return true
	}
	for _, kw := range nonVendorURLKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func isInstagramPost(lowerURL string) bool {
	parsed, err := url.Parse(lowerURL)
	if err != nil || parsed.Host == "" {
		return strings.Contains(lowerURL, "instagram.com/p/")
	}
	host := strings.TrimPrefix(parsed.Host, "www.")
	if host != "instagram.com" && !strings.HasSuffix(host, ".instagram.com") {
		return false
	}
	return strings.Contains(parsed.Path+"/", "/p/")
}
