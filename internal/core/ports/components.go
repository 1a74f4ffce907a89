package ports

import (
	"context"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
)

// HitSearcher produces deduplicated, relevance-sorted hits for a service and location.
type HitSearcher interface {
	SearchVendors(ctx context.Context, service, location, platform string) []domain.SearchHit
}

// CandidateExtractor turns one hit into a scored vendor candidate.
type CandidateExtractor interface {
	Extract(ctx context.Context, hit domain.SearchHit, fallbackLocation string) domain.VendorCandidate
}

// VendorOracle gives advisory judgments; every method has a deterministic fallback.
type VendorOracle interface {
	IsActualVendor(ctx context.Context, service string, candidate domain.VendorCandidate) bool
	RerankVendors(ctx context.Context, service string, candidates []domain.VendorCandidate) domain.RerankResult
	DecideNextAction(ctx context.Context, service, location, platform string, candidates []domain.VendorCandidate) domain.Action
	AnalyzeResults(ctx context.Context, service, location string, candidates []domain.VendorCandidate) domain.Analysis
}
