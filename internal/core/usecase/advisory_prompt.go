package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
)

const advisorySystemPrompt = "You are a careful assistant that reasons over provided data only. " +
	"You never fabricate facts and you keep explanations concise."

const (
	analysisSnapshotSize = 5
	rerankSnapshotSize   = 10
)

type vendorSnapshot struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Confidence   float64 `json:"confidence"`
	HasWhatsApp  bool    `json:"has_whatsapp"`
	HasInstagram bool    `json:"has_instagram"`
	Location     string  `json:"location"`
	HasMaps      bool    `json:"has_maps"`
}

type analysisSnapshot struct {
	Name        string  `json:"name"`
	Confidence  float64 `json:"confidence"`
	Location    string  `json:"location"`
	HasWhatsApp bool    `json:"has_whatsapp"`
}

type decisionSnapshot struct {
	Confidence  float64 `json:"confidence"`
	HasWhatsApp bool    `json:"has_whatsapp"`
	Location    string  `json:"location"`
}

func buildAnalysisPrompt(service, location string, candidates []domain.VendorCandidate) string {
	limit := min(len(candidates), analysisSnapshotSize)
	summary := make([]analysisSnapshot, 0, limit)
	for _, c := range candidates[:limit] {
		summary = append(summary, analysisSnapshot{
			Name:        c.Identity.Name,
			Confidence:  c.ConfidenceScore,
			Location:    c.Location.ResolvedText,
			HasWhatsApp: c.HasWhatsApp(),
		})
	}

	return fmt.Sprintf(`User searched for %q vendors in %q.

Top candidates (JSON):
%s

Tasks:
1. Explain briefly how vendors were selected.
2. Rate result quality: good / average / weak.
3. Ask ONE clarifying question if needed, otherwise say "NO_QUESTION".

Respond ONLY in JSON with keys:
- explanation
- result_quality
- clarifying_question
`, service, location, marshalSnapshot(summary))
}

func buildRerankPrompt(service string, candidates []domain.VendorCandidate) string {
	limit := min(len(candidates), rerankSnapshotSize)
	snapshot := make([]vendorSnapshot, 0, limit)
	for idx, c := range candidates[:limit] {
		snapshot = append(snapshot, vendorSnapshot{
			ID:           idx,
			Name:         c.Identity.Name,
			Confidence:   c.ConfidenceScore,
			HasWhatsApp:  c.HasWhatsApp(),
			HasInstagram: c.HasInstagram(),
			Location:     c.Location.ResolvedText,
			HasMaps:      c.HasEnrichment(),
		})
	}

	return fmt.Sprintf(`You are helping rank vendors for the service %q.

Here are vendor candidates (JSON):
%s

Instructions:
- Reorder vendors by overall usefulness to the user.
- Prefer vendors that appear professional, reachable, and relevant.
- Do NOT invent data.
- Return ONLY JSON.

Required JSON format:
{"ordered_vendor_ids": [list of vendor ids in best-to-worst order], "reasoning": "brief explanation"}
`, service, marshalSnapshot(snapshot))
}

func buildDecisionPrompt(service, location, platform string, candidates []domain.VendorCandidate) string {
	summary := make([]decisionSnapshot, 0, len(candidates))
	for _, c := range candidates {
		summary = append(summary, decisionSnapshot{
			Confidence:  c.ConfidenceScore,
			HasWhatsApp: c.HasWhatsApp(),
			Location:    c.Location.ResolvedText,
		})
	}
	if strings.TrimSpace(platform) == "" {
		platform = "any platform"
	}

	return fmt.Sprintf(`User searched for %q vendors in %q on %q.

Current results (JSON):
%s

Decide ONE action:
- STOP
- EXPAND_LOCATION
- TRY_ANOTHER_PLATFORM
- RELAX_CONFIDENCE

Rules:
- Choose STOP if results are acceptable.
- Choose ONLY ONE action.
- Do NOT invent data.

Respond ONLY in JSON:
{"action": "<ACTION_NAME>"}
`, service, location, platform, marshalSnapshot(summary))
}

func buildVendorCheckPrompt(service string, c domain.VendorCandidate) string {
	return fmt.Sprintf(`You are evaluating whether an online account is a REAL SERVICE VENDOR.

Service: %s

Account details:
Name: %s
URL: %s
Has WhatsApp: %t
Has Instagram: %t

Question:
Is this account offering services, or is it just content, news, or discussion?

Respond ONLY in JSON:
{"is_vendor": true | false}
`, service, c.Identity.Name, c.Identity.URL, c.HasWhatsApp(), c.HasInstagram())
}

func marshalSnapshot(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
