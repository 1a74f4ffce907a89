package usecase

import (
	"sort"
	"strings"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
)

var tradeServiceKeywords = []string{
	"plumber",
	"electrician",
	"mechanic",
	"technician",
	"carpenter",
	"welder",
	"installer",
	"repair",
	"cleaner",
	"handyman",
	"maintenance",
}

var visualServiceKeywords = []string{
	"cake",
	"bakery",
	"makeup",
	"photography",
	"fashion",
	"decor",
	"event",
	"catering",
	"florist",
}

// ClassifyService buckets a free-text service by keyword; trade terms take precedence.
func ClassifyService(service string) domain.ServiceClass {
	lower := strings.ToLower(service)
	for _, kw := range tradeServiceKeywords {
		if strings.Contains(lower, kw) {
			return domain.ServiceTrade
		}
	}
	for _, kw := range visualServiceKeywords {
		if strings.Contains(lower, kw) {
			return domain.ServiceVisual
		}
	}
	return domain.ServiceGeneral
}

// RankVendors orders candidates by confidence, then WhatsApp, Instagram and enrichment presence.
// Full ties keep their input order.
func RankVendors(candidates []domain.VendorCandidate) []domain.VendorCandidate {
	ranked := make([]domain.VendorCandidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.ConfidenceScore != b.ConfidenceScore {
			return a.ConfidenceScore > b.ConfidenceScore
		}
		if a.HasWhatsApp() != b.HasWhatsApp() {
			return a.HasWhatsApp()
		}
		if a.HasInstagram() != b.HasInstagram() {
			return a.HasInstagram()
		}
		if a.HasEnrichment() != b.HasEnrichment() {
			return a.HasEnrichment()
		}
		return false
	})
	return ranked
}

// applyOrder projects candidates through an index order; invalid indices were already removed.
func applyOrder(candidates []domain.VendorCandidate, order []int) []domain.VendorCandidate {
	if len(order) == 0 {
		return candidates
	}
	out := make([]domain.VendorCandidate, 0, len(order))
	for _, idx := range order {
		if idx < 0 || idx >= len(candidates) {
			continue
		}
		out = append(out, candidates[idx])
	}
	if len(out) == 0 {
		return candidates
	}
	return out
}
