package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
	"github.com/kirillkom/vendor-finder/internal/core/ports"
)

const (
	defaultMaxAttempts        = 2
	defaultExtractConcurrency = 4

	defaultPlatform         = "instagram"
	alternatePlatform       = "twitter"
	tradeMinConfidence      = 0.2
	relaxStep               = 0.1
	relaxFloor              = 0.1
	hitsPerRequestedVendor  = 3
	expandedLocationSuffix  = " nearby"
	degradedExplanation     = "Search completed but results were limited or low confidence."
	degradedClarifyQuestion = "Would you like to broaden the location or try another service?"
)

type DiscoveryLimits struct {
	MaxAttempts int
	// ExtractConcurrency bounds parallel extraction per attempt; 1 extracts hits one by one.
	ExtractConcurrency int
}

// DiscoveryUseCase runs the bounded search, extract, rank and refine loop.
type DiscoveryUseCase struct {
	searcher  ports.HitSearcher
	extractor ports.CandidateExtractor
	oracle    ports.VendorOracle
	observer  ports.DiscoveryObserver
	limits    DiscoveryLimits
}

func NewDiscoveryUseCase(
	searcher ports.HitSearcher,
	extractor ports.CandidateExtractor,
	oracle ports.VendorOracle,
	observer ports.DiscoveryObserver,
	limits DiscoveryLimits,
) *DiscoveryUseCase {
	if limits.MaxAttempts <= 0 {
		limits.MaxAttempts = defaultMaxAttempts
	}
	if limits.ExtractConcurrency <= 0 {
		limits.ExtractConcurrency = defaultExtractConcurrency
	}
	return &DiscoveryUseCase{
		searcher:  searcher,
		extractor: extractor,
		oracle:    oracle,
		observer:  observer,
		limits:    limits,
	}
}

// FindVendors only fails on invalid input; every collaborator failure degrades to a fallback.
func (uc *DiscoveryUseCase) FindVendors(ctx context.Context, req domain.DiscoveryRequest) (*domain.AgentResult, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	runID := uuid.NewString()
	class := ClassifyService(req.Service)
	logger := slog.With("run_id", runID, "service", req.Service, "service_class", string(class))

	state := &domain.RefinementState{
		Platform:      req.Platform,
		Location:      req.Location,
		MinConfidence: req.ConfidenceFloor(),
		Reasoning:     make([]string, 0),
	}
	if state.Platform == "" {
		state.Platform = defaultPlatform
	}

	echoPlatform := req.Platform
	if echoPlatform == "" {
		echoPlatform = domain.PlatformAuto
	}

	finish := func(vendors []domain.VendorCandidate, analysis domain.Analysis, stopReason string) *domain.AgentResult {
		if vendors == nil {
			vendors = []domain.VendorCandidate{}
		}
		result := &domain.AgentResult{
			Query: domain.QueryEcho{
				Service:  req.Service,
				Location: req.Location,
				Platform: echoPlatform,
			},
			TotalVendors: len(vendors),
			Vendors:      vendors,
			Analysis:     analysis,
			Reasoning:    state.Reasoning,
			Attempts:     state.Attempt,
			StopReason:   stopReason,
			RunID:        runID,
		}
		logger.Info("discovery_finished",
			"attempts", result.Attempts,
			"stop_reason", stopReason,
			"vendors", result.TotalVendors,
			"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
		)
		if uc.observer != nil {
			uc.observer.ObserveDiscovery(result, time.Since(start))
		}
		return result
	}

	cache := make(map[extractionKey]domain.VendorCandidate)
	var ranked []domain.VendorCandidate

	for attempt := 1; attempt <= uc.limits.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			break
		}
		state.Attempt = attempt

		minConfidence := req.ConfidenceFloor()
		if class == domain.ServiceTrade {
			minConfidence = tradeMinConfidence
		}
		if class == domain.ServiceVisual {
			state.Platform = defaultPlatform
		}

		logger.Info("discovery_attempt",
			"attempt", attempt,
			"location", state.Location,
			"platform", state.Platform,
			"min_confidence", minConfidence,
			"relaxed_min_confidence", state.MinConfidence,
		)

		hits := uc.searcher.SearchVendors(ctx, req.Service, state.Location, state.Platform)
		if len(hits) == 0 {
			return finish(ranked, degradedAnalysis(), domain.StopNoSearchResults), nil
		}

		accepted := uc.collectCandidates(ctx, req, hits, state.Location, minConfidence, cache)
		if len(accepted) == 0 {
			return finish(ranked, degradedAnalysis(), domain.StopNoCandidates), nil
		}

		ranked = RankVendors(accepted)
		if len(ranked) > 1 {
			rerank := uc.oracle.RerankVendors(ctx, req.Service, ranked)
			ranked = applyOrder(ranked, rerank.Order)
			state.Note(rerank.Reasoning)
		}

		analysis := uc.oracle.AnalyzeResults(ctx, req.Service, state.Location, ranked)
		action := uc.oracle.DecideNextAction(ctx, req.Service, state.Location, state.Platform, ranked)
		logger.Info("discovery_decision", "attempt", attempt, "action", string(action), "candidates", len(ranked))
		if action == domain.ActionStop {
			return finish(ranked, analysis, domain.StopDecision), nil
		}

		applyRefinement(state, action, class)
	}

	return finish(ranked, degradedAnalysis(), domain.StopAttemptsUsed), nil
}

type extractionKey struct {
	url      string
	location string
}

// collectCandidates extracts the head of the hit list and filters it in hit order.
func (uc *DiscoveryUseCase) collectCandidates(
	ctx context.Context,
	req domain.DiscoveryRequest,
	hits []domain.SearchHit,
	location string,
	minConfidence float64,
	cache map[extractionKey]domain.VendorCandidate,
) []domain.VendorCandidate {
	head := hits[:min(len(hits), req.Limit()*hitsPerRequestedVendor)]
	extracted := uc.extractAll(ctx, head, location, cache)

	accepted := make([]domain.VendorCandidate, 0, req.Limit())
	for _, candidate := range extracted {
		if candidate.Discarded {
			continue
		}
		if candidate.ConfidenceScore < minConfidence {
			continue
		}
		if !uc.oracle.IsActualVendor(ctx, req.Service, candidate) {
			continue
		}
		accepted = append(accepted, candidate)
		if len(accepted) >= req.Limit() {
			break
		}
	}
	return accepted
}

// extractAll returns one candidate per hit, in hit order, regardless of completion order.
func (uc *DiscoveryUseCase) extractAll(
	ctx context.Context,
	hits []domain.SearchHit,
	location string,
	cache map[extractionKey]domain.VendorCandidate,
) []domain.VendorCandidate {
	out := make([]domain.VendorCandidate, len(hits))
	done := make([]bool, len(hits))
	for i, hit := range hits {
		if cached, ok := cache[extractionKey{url: hit.URL, location: location}]; ok {
			out[i] = cached
			done[i] = true
		}
	}

	var g errgroup.Group
	g.SetLimit(uc.limits.ExtractConcurrency)
	for i := range hits {
		if done[i] {
			continue
		}
		g.Go(func() error {
			out[i] = uc.extractor.Extract(ctx, hits[i], location)
			return nil
		})
	}
	_ = g.Wait()

	for i, hit := range hits {
		cache[extractionKey{url: hit.URL, location: location}] = out[i]
	}
	return out
}

func applyRefinement(state *domain.RefinementState, action domain.Action, class domain.ServiceClass) {
	switch action {
	case domain.ActionExpandLocation:
		state.Location += expandedLocationSuffix
		state.Note("Expanded search location.")
	case domain.ActionTryAnotherPlatform:
		switch {
		case class == domain.ServiceVisual:
			state.Platform = defaultPlatform
		case state.Platform == defaultPlatform:
			state.Platform = alternatePlatform
		default:
			state.Platform = defaultPlatform
		}
		state.Note(fmt.Sprintf("Switched platform to %s.", state.Platform))
	case domain.ActionRelaxConfidence:
		state.MinConfidence = math.Max(relaxFloor, roundScore(state.MinConfidence-relaxStep))
		state.Note("Relaxed confidence threshold.")
	}
}

func degradedAnalysis() domain.Analysis {
	return domain.Analysis{
		Explanation:        degradedExplanation,
		ResultQuality:      domain.QualityWeak,
		ClarifyingQuestion: degradedClarifyQuestion,
	}
}
