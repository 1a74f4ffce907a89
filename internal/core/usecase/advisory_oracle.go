package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
	"github.com/kirillkom/vendor-finder/internal/core/ports"
)

const (
	oracleOutcomeOK        = "ok"
	oracleOutcomeFallback  = "fallback"
	oracleOutcomeGuardrail = "guardrail"

	// decisionGuardrailSize is the candidate count at which the loop stops without consulting the model.
	decisionGuardrailSize = 3

	deterministicRerankReasoning = "Deterministic ranking retained."
)

// AdvisoryOracle wraps an optional advisory model. A nil model means every call takes its fallback.
type AdvisoryOracle struct {
	model    ports.AdvisoryModel
	observer ports.DiscoveryObserver
	timeout  time.Duration
}

func NewAdvisoryOracle(model ports.AdvisoryModel, observer ports.DiscoveryObserver, timeout time.Duration) *AdvisoryOracle {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &AdvisoryOracle{
		model:    model,
		observer: observer,
		timeout:  timeout,
	}
}

func (o *AdvisoryOracle) Available() bool {
	return o != nil && o.model != nil
}

func (o *AdvisoryOracle) IsActualVendor(ctx context.Context, service string, candidate domain.VendorCandidate) bool {
	const operation = "is_actual_vendor"
	if !o.Available() {
		o.observe(operation, oracleOutcomeFallback)
		return true
	}

	var reply struct {
		IsVendor *bool `json:"is_vendor"`
	}
	err := o.ask(ctx, buildVendorCheckPrompt(service, candidate), 0, &reply)
	if err == nil && reply.IsVendor == nil {
		err = fmt.Errorf("is_vendor missing")
	}
	if err != nil {
		o.fail(operation, err)
		return true
	}
	o.observe(operation, oracleOutcomeOK)
	return *reply.IsVendor
}

func (o *AdvisoryOracle) RerankVendors(ctx context.Context, service string, candidates []domain.VendorCandidate) domain.RerankResult {
	const operation = "rerank_vendors"
	identity := identityOrder(len(candidates))
	if !o.Available() || len(candidates) < 2 {
		o.observe(operation, oracleOutcomeFallback)
		return domain.RerankResult{Order: identity, Reasoning: deterministicRerankReasoning}
	}

	var reply struct {
		OrderedVendorIDs []int  `json:"ordered_vendor_ids"`
		Reasoning        string `json:"reasoning"`
	}
	err := o.ask(ctx, buildRerankPrompt(service, candidates), 0.1, &reply)
	if err == nil && reply.OrderedVendorIDs == nil {
		err = fmt.Errorf("ordered_vendor_ids missing")
	}
	if err != nil {
		o.fail(operation, err)
		return domain.RerankResult{Order: identity, Reasoning: fmt.Sprintf("Advisory re-ranking failed: %v", err)}
	}

	order := make([]int, 0, len(reply.OrderedVendorIDs))
	seen := make(map[int]struct{}, len(reply.OrderedVendorIDs))
	for _, idx := range reply.OrderedVendorIDs {
		if idx < 0 || idx >= len(candidates) {
			continue
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		order = append(order, idx)
	}
	if len(order) == 0 {
		o.observe(operation, oracleOutcomeFallback)
		return domain.RerankResult{Order: identity, Reasoning: strings.TrimSpace(reply.Reasoning)}
	}

	o.observe(operation, oracleOutcomeOK)
	return domain.RerankResult{Order: order, Reasoning: strings.TrimSpace(reply.Reasoning)}
}

func (o *AdvisoryOracle) DecideNextAction(ctx context.Context, service, location, platform string, candidates []domain.VendorCandidate) domain.Action {
	const operation = "decide_next_action"
	if len(candidates) >= decisionGuardrailSize {
		o.observe(operation, oracleOutcomeGuardrail)
		return domain.ActionStop
	}
	if !o.Available() {
		o.observe(operation, oracleOutcomeFallback)
		return domain.ActionStop
	}

	var reply struct {
		Action string `json:"action"`
	}
	err := o.ask(ctx, buildDecisionPrompt(service, location, platform, candidates), 0, &reply)
	if err != nil {
		o.fail(operation, err)
		return domain.ActionStop
	}
	action, ok := domain.ParseAction(reply.Action)
	if !ok {
		o.fail(operation, fmt.Errorf("unknown action %q", reply.Action))
		return domain.ActionStop
	}
	o.observe(operation, oracleOutcomeOK)
	return action
}

func (o *AdvisoryOracle) AnalyzeResults(ctx context.Context, service, location string, candidates []domain.VendorCandidate) domain.Analysis {
	const operation = "analyze_results"
	if !o.Available() || len(candidates) == 0 {
		o.observe(operation, oracleOutcomeFallback)
		return fallbackAnalysis(service, location, candidates)
	}

	var reply struct {
		Explanation        *string `json:"explanation"`
		ResultQuality      *string `json:"result_quality"`
		ClarifyingQuestion *string `json:"clarifying_question"`
	}
	err := o.ask(ctx, buildAnalysisPrompt(service, location, candidates), 0.2, &reply)
	if err == nil && (reply.Explanation == nil || reply.ResultQuality == nil) {
		err = fmt.Errorf("analysis keys missing")
	}
	if err != nil {
		o.fail(operation, err)
		return fallbackAnalysis(service, location, candidates)
	}

	analysis := domain.Analysis{
		Explanation:        strings.TrimSpace(*reply.Explanation),
		ResultQuality:      strings.ToLower(strings.TrimSpace(*reply.ResultQuality)),
		ClarifyingQuestion: domain.NoClarifyingQuestion,
	}
	if reply.ClarifyingQuestion != nil && strings.TrimSpace(*reply.ClarifyingQuestion) != "" {
		analysis.ClarifyingQuestion = strings.TrimSpace(*reply.ClarifyingQuestion)
	}
	o.observe(operation, oracleOutcomeOK)
	return analysis
}

func (o *AdvisoryOracle) ask(ctx context.Context, userPrompt string, temperature float32, out any) error {
	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	raw, err := o.model.GenerateJSON(callCtx, domain.AdvisoryPrompt{
		System:      advisorySystemPrompt,
		User:        userPrompt,
		Temperature: temperature,
	})
	if err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("empty advisory response")
	}
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), out); err != nil {
		return fmt.Errorf("parse advisory json: %w", err)
	}
	return nil
}

func (o *AdvisoryOracle) fail(operation string, err error) {
	slog.Warn("advisory_oracle_fallback", "operation", operation, "error", err)
	o.observe(operation, oracleOutcomeFallback)
}

func (o *AdvisoryOracle) observe(operation, outcome string) {
	if o == nil || o.observer == nil {
		return
	}
	o.observer.ObserveOracleCall(operation, outcome)
}

func fallbackAnalysis(service, location string, candidates []domain.VendorCandidate) domain.Analysis {
	quality := domain.QualityWeak
	if len(candidates) >= decisionGuardrailSize {
		quality = domain.QualityGood
	}
	return domain.Analysis{
		Explanation: fmt.Sprintf(
			"Found %d vendors for %s in %s based on contact availability and location relevance.",
			len(candidates), service, location,
		),
		ResultQuality:      quality,
		ClarifyingQuestion: domain.NoClarifyingQuestion,
	}
}

func identityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}
