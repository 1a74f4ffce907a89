package usecase

import (
	"math"
	"strings"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
)

const (
	weightWhatsApp         = 0.3
	weightInstagram        = 0.2
	weightResolvedLocation = 0.3
	weightEnrichment       = 0.2
	softSignalBonus        = 0.1
	minSoftSignals         = 2
)

var softSignalPhrases = []string{
	"order now",
	"call us",
	"dm us",
	"whatsapp",
	"delivery",
	"we offer",
	"our services",
	"bookings",
	"price",
	"pricing",
	"available",
	"located in",
	"based in",
	"lagos",
	"abuja",
}

func countSoftSignals(text string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, phrase := range softSignalPhrases {
		if strings.Contains(lower, phrase) {
			n++
		}
	}
	return n
}

// ScoreCandidate derives the confidence score and evidence tags from the candidate's own fields.
func ScoreCandidate(c domain.VendorCandidate) (float64, []string) {
	if c.Discarded {
		return 0, []string{}
	}

	score := 0.0
	evidence := make([]string, 0, 5)
	if c.HasWhatsApp() {
		score += weightWhatsApp
		evidence = append(evidence, domain.EvidenceWhatsApp)
	}
	if c.HasInstagram() {
		score += weightInstagram
		evidence = append(evidence, domain.EvidenceInstagram)
	}
	if c.Location.ResolvedText != "" {
		score += weightResolvedLocation
		evidence = append(evidence, domain.EvidenceResolvedLocation)
	}
	if c.HasEnrichment() {
		score += weightEnrichment
		evidence = append(evidence, domain.EvidenceEnrichment)
	}
	if c.SoftSignals >= minSoftSignals {
		score += softSignalBonus
		evidence = append(evidence, domain.EvidenceSoftSignal)
	}
	return roundScore(clampUnit(score)), evidence
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func roundScore(v float64) float64 {
	return math.Round(v*100) / 100
}
