package domain

import (
	"fmt"
	"strings"
)

const (
	DefaultMaxResults    = 5
	DefaultMinConfidence = 0.3

	MinMaxResults    = 1
	MaxMaxResults    = 20
	MinMinConfidence = 0.1
	MaxMinConfidence = 1.5

	// PlatformAuto is echoed back when the caller did not choose a platform.
	PlatformAuto = "auto"
)

// DiscoveryRequest is the caller-facing input of a vendor discovery run.
// A nil limit means the caller left it unset; an explicit zero is out of range.
type DiscoveryRequest struct {
	Service       string   `json:"service"`
	Location      string   `json:"location"`
	Platform      string   `json:"platform,omitempty"`
	MaxResults    *int     `json:"max_results,omitempty"`
	MinConfidence *float64 `json:"min_confidence,omitempty"`
}

// Ptr returns a pointer to v, for filling optional request fields.
func Ptr[T any](v T) *T {
	return &v
}

// Normalize trims text fields and fills unset limits with defaults.
func (r DiscoveryRequest) Normalize() DiscoveryRequest {
	out := r
	out.Service = strings.TrimSpace(out.Service)
	out.Location = strings.TrimSpace(out.Location)
	out.Platform = strings.ToLower(strings.TrimSpace(out.Platform))
	out.MaxResults = Ptr(r.Limit())
	out.MinConfidence = Ptr(r.ConfidenceFloor())
	return out
}

// Limit is the requested vendor count, or the default when unset.
func (r DiscoveryRequest) Limit() int {
	if r.MaxResults == nil {
		return DefaultMaxResults
	}
	return *r.MaxResults
}

// ConfidenceFloor is the caller's minimum confidence, or the default when unset.
func (r DiscoveryRequest) ConfidenceFloor() float64 {
	if r.MinConfidence == nil {
		return DefaultMinConfidence
	}
	return *r.MinConfidence
}

func (r DiscoveryRequest) Validate() error {
	maxResults, minConfidence := r.Limit(), r.ConfidenceFloor()
	switch {
	case r.Service == "":
		return WrapError(ErrInvalidInput, "validate discovery request", fmt.Errorf("service is required"))
	case r.Location == "":
		return WrapError(ErrInvalidInput, "validate discovery request", fmt.Errorf("location is required"))
	case maxResults < MinMaxResults || maxResults > MaxMaxResults:
		return WrapError(ErrInvalidInput, "validate discovery request",
			fmt.Errorf("max_results must be between %d and %d, got %d", MinMaxResults, MaxMaxResults, maxResults))
	case minConfidence < MinMinConfidence || minConfidence > MaxMinConfidence:
		return WrapError(ErrInvalidInput, "validate discovery request",
			fmt.Errorf("min_confidence must be between %.1f and %.1f, got %g", MinMinConfidence, MaxMinConfidence, minConfidence))
	}
	return nil
}

type ServiceClass string

const (
	ServiceTrade   ServiceClass = "trade"
	ServiceVisual  ServiceClass = "visual"
	ServiceGeneral ServiceClass = "general"
)

// Action is a refinement decision taken once per attempt.
type Action string

const (
	ActionStop               Action = "STOP"
	ActionExpandLocation     Action = "EXPAND_LOCATION"
	ActionTryAnotherPlatform Action = "TRY_ANOTHER_PLATFORM"
	ActionRelaxConfidence    Action = "RELAX_CONFIDENCE"
)

// ParseAction maps model output onto a known action.
func ParseAction(raw string) (Action, bool) {
	switch Action(strings.ToUpper(strings.TrimSpace(raw))) {
	case ActionStop:
		return ActionStop, true
	case ActionExpandLocation:
		return ActionExpandLocation, true
	case ActionTryAnotherPlatform:
		return ActionTryAnotherPlatform, true
	case ActionRelaxConfidence:
		return ActionRelaxConfidence, true
	default:
		return "", false
	}
}

// RefinementState is the mutable loop state owned by a single discovery run.
type RefinementState struct {
	Attempt       int
	Platform      string
	Location      string
	MinConfidence float64
	Reasoning     []string
}

func (s *RefinementState) Note(msg string) {
	if strings.TrimSpace(msg) == "" {
		return
	}
	s.Reasoning = append(s.Reasoning, msg)
}

const (
	QualityGood = "good"
	QualityWeak = "weak"

	NoClarifyingQuestion = "NO_QUESTION"
)

type Analysis struct {
	Explanation        string `json:"explanation" yaml:"explanation"`
	ResultQuality      string `json:"result_quality" yaml:"result_quality"`
	ClarifyingQuestion string `json:"clarifying_question" yaml:"clarifying_question"`
}

// AdvisoryPrompt is a single request to the advisory model.
type AdvisoryPrompt struct {
	System      string
	User        string
	Temperature float32
}

// RerankResult is the order suggested by the advisory model, as indices into the input slice.
type RerankResult struct {
	Order     []int
	Reasoning string
}

// Stop reasons reported on AgentResult.
const (
	StopDecision        = "stop_decision"
	StopNoSearchResults = "no_search_results"
	StopNoCandidates    = "no_candidates"
	StopAttemptsUsed    = "attempts_exhausted"
)

type QueryEcho struct {
	Service  string `json:"service" yaml:"service"`
	Location string `json:"location" yaml:"location"`
	Platform string `json:"platform" yaml:"platform"`
}

// AgentResult is the terminal output of a discovery run.
type AgentResult struct {
	Query        QueryEcho         `json:"query"`
	TotalVendors int               `json:"total_vendors"`
	Vendors      []VendorCandidate `json:"vendors"`
	Analysis     Analysis          `json:"analysis"`
	Reasoning    []string          `json:"agent_reasoning"`
	Attempts     int               `json:"attempts"`
	StopReason   string            `json:"stop_reason"`
	RunID        string            `json:"run_id,omitempty"`
}
