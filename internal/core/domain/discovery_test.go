package domain

import (
	"errors"
	"testing"
)

func TestDiscoveryRequestNormalizeAppliesDefaults(t *testing.T) {
	req := DiscoveryRequest{Service: "  cake ", Location: " Lagos", Platform: " Twitter "}.Normalize()
	if req.Service != "cake" || req.Location != "Lagos" || req.Platform != "twitter" {
		t.Fatalf("unexpected trimmed request: %+v", req)
	}
	if *req.MaxResults != DefaultMaxResults || *req.MinConfidence != DefaultMinConfidence {
		t.Fatalf("expected defaults, got %+v", req)
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestDiscoveryRequestValidateBounds(t *testing.T) {
	valid := []DiscoveryRequest{
		{Service: "cake", Location: "Lagos", MaxResults: Ptr(1), MinConfidence: Ptr(0.1)},
		{Service: "cake", Location: "Lagos", MaxResults: Ptr(20), MinConfidence: Ptr(1.5)},
	}
	for _, req := range valid {
		if err := req.Validate(); err != nil {
			t.Fatalf("%+v: unexpected error %v", req, err)
		}
	}

	invalid := []DiscoveryRequest{
		{Service: "", Location: "Lagos", MaxResults: Ptr(5), MinConfidence: Ptr(0.3)},
		{Service: "cake", Location: "", MaxResults: Ptr(5), MinConfidence: Ptr(0.3)},
		{Service: "cake", Location: "Lagos", MaxResults: Ptr(0), MinConfidence: Ptr(0.3)},
		{Service: "cake", Location: "Lagos", MaxResults: Ptr(21), MinConfidence: Ptr(0.3)},
		{Service: "cake", Location: "Lagos", MaxResults: Ptr(5), MinConfidence: Ptr(0.09)},
		{Service: "cake", Location: "Lagos", MaxResults: Ptr(5), MinConfidence: Ptr(1.51)},
	}
	for _, req := range invalid {
		err := req.Validate()
		if !IsKind(err, ErrInvalidInput) {
			t.Fatalf("%+v: expected invalid input, got %v", req, err)
		}
	}
}

func TestDiscoveryRequestRejectsExplicitZeroLimits(t *testing.T) {
	cases := []DiscoveryRequest{
		{Service: "cake", Location: "Lagos", MaxResults: Ptr(0)},
		{Service: "cake", Location: "Lagos", MinConfidence: Ptr(0.0)},
	}
	for _, req := range cases {
		err := req.Normalize().Validate()
		if !IsKind(err, ErrInvalidInput) {
			t.Fatalf("%+v: expected invalid input, got %v", req, err)
		}
	}
}

func TestDiscoveryRequestNormalizeDoesNotAliasCaller(t *testing.T) {
	limit := 3
	req := DiscoveryRequest{Service: "cake", Location: "Lagos", MaxResults: &limit}.Normalize()
	*req.MaxResults = 7
	if limit != 3 {
		t.Fatalf("Normalize must copy caller limits, got %d", limit)
	}
}

func TestParseAction(t *testing.T) {
	cases := map[string]Action{
		"STOP":                 ActionStop,
		" expand_location ":    ActionExpandLocation,
		"Try_Another_Platform": ActionTryAnotherPlatform,
		"relax_confidence":     ActionRelaxConfidence,
	}
	for raw, want := range cases {
		got, ok := ParseAction(raw)
		if !ok || got != want {
			t.Fatalf("ParseAction(%q) = %q, %v", raw, got, ok)
		}
	}
	if _, ok := ParseAction("search harder"); ok {
		t.Fatalf("expected unknown action to be rejected")
	}
}

func TestRefinementStateNoteSkipsBlank(t *testing.T) {
	var s RefinementState
	s.Note("  ")
	s.Note("Expanded search location.")
	if len(s.Reasoning) != 1 {
		t.Fatalf("expected one note, got %v", s.Reasoning)
	}
}

func TestWrapErrorKeepsKindAndCause(t *testing.T) {
	cause := errors.New("boom")
	err := WrapError(ErrTemporary, "search google", cause)
	if !IsKind(err, ErrTemporary) || !errors.Is(err, cause) {
		t.Fatalf("expected kind and cause to be preserved: %v", err)
	}
	if IsKind(err, ErrInvalidInput) {
		t.Fatalf("unexpected kind match")
	}
}
