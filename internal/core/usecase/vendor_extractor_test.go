package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
)

func TestExtractDiscardsJobPosts(t *testing.T) {
	extractor := NewVendorExtractor(nil, nil, ExtractorLimits{})
	c := extractor.Extract(context.Background(), domain.SearchHit{
		Title:   "Hiring: Cake Vendor - apply now",
		URL:     "https://instagram.com/cakes",
		Snippet: "wa.me/2348012345678 based in Lagos, order now",
	}, "Lagos")

	if !c.Discarded || c.DiscardReason != domain.DiscardJobPost {
		t.Fatalf("expected job post discard, got discarded=%v reason=%q", c.Discarded, c.DiscardReason)
	}
	if c.ConfidenceScore != 0 {
		t.Fatalf("expected zero confidence, got %v", c.ConfidenceScore)
	}
}

func TestExtractDiscardsNonVendorURLs(t *testing.T) {
	extractor := NewVendorExtractor(nil, nil, ExtractorLimits{})
	urls := []string{
		"https://www.instagram.com/p/C1xYz/",
		"https://instagram.com/p/abc",
		"https://dailynews.example.com/cakes",
		"https://example.com/press/release",
	}
	for _, u := range urls {
		c := extractor.Extract(context.Background(), domain.SearchHit{Title: "Cakes", URL: u}, "Lagos")
		if !c.Discarded || c.DiscardReason != domain.DiscardNonVendorURL {
			t.Fatalf("%s: expected url discard, got discarded=%v reason=%q", u, c.Discarded, c.DiscardReason)
		}
	}

	c := extractor.Extract(context.Background(), domain.SearchHit{Title: "Cakes", URL: ""}, "Lagos")
	if !c.Discarded || c.DiscardReason != domain.DiscardMissingURL {
		t.Fatalf("expected missing url discard, got %+v", c)
	}
}

func TestExtractKeepsInstagramProfileURLs(t *testing.T) {
	extractor := NewVendorExtractor(nil, nil, ExtractorLimits{})
	c := extractor.Extract(context.Background(), domain.SearchHit{
		Title: "Sweet Cakes",
		URL:   "https://www.instagram.com/sweetcakes/",
	}, "Lagos")
	if c.Discarded {
		t.Fatalf("profile url must not be discarded: %q", c.DiscardReason)
	}
}

func TestExtractWhatsAppNumbersAreNormalised(t *testing.T) {
	extractor := NewVendorExtractor(nil, nil, ExtractorLimits{})
	c := extractor.Extract(context.Background(), domain.SearchHit{
		Title:   "Cake Hub",
		URL:     "https://cakehub.example",
		Snippet: "Chat on wa.me/2348012345678 or WhatsApp: +234 801 234 5678. Shop 12345.",
	}, "Lagos")

	want := []string{"+2348012345678", "2348012345678"}
	if !reflect.DeepEqual(c.Contacts.WhatsAppNumbers, want) {
		t.Fatalf("unexpected numbers: got %q want %q", c.Contacts.WhatsAppNumbers, want)
	}
}

func TestExtractInstagramHandles(t *testing.T) {
	extractor := NewVendorExtractor(nil, nil, ExtractorLimits{})
	c := extractor.Extract(context.Background(), domain.SearchHit{
		Title:   "Cake Hub",
		URL:     "https://cakehub.example",
		Snippet: "Follow @sweetcakes_ng or instagram.com/cakehub",
	}, "Lagos")

	want := []string{"https://instagram.com/cakehub", "https://instagram.com/sweetcakes_ng"}
	if !reflect.DeepEqual(c.Social.InstagramLinks, want) {
		t.Fatalf("unexpected links: got %q want %q", c.Social.InstagramLinks, want)
	}
}

func TestInferLocation(t *testing.T) {
	cases := []struct {
		text     string
		fallback string
		want     string
	}{
		{text: "Serving Lekki and environs", fallback: "Lagos", want: "Lekki"},
		{text: "best in port harcourt", fallback: "Lagos", want: "Port Harcourt"},
		{text: "available in PH today", fallback: "Lagos", want: "Ph"},
		{text: "phone us for photography", fallback: "Abuja", want: "Abuja"},
		{text: "lagos and abuja", fallback: "", want: "Lagos"},
		{text: "nothing known", fallback: "Kano", want: "Kano"},
	}
	for _, tc := range cases {
		if got := inferLocation(tc.text, tc.fallback); got != tc.want {
			t.Fatalf("inferLocation(%q, %q) = %q, want %q", tc.text, tc.fallback, got, tc.want)
		}
	}
}

func TestInferLocationShortPlacesMatchWholeWords(t *testing.T) {
	cases := map[string]string{
		"Best photography studio in town": "Enugu",
		"graph paper and alpha prints":    "Enugu",
		"PH-based bakery":                 "Ph",
		"delivery within ph, rivers":      "Ph",
	}
	for text, want := range cases {
		if got := inferLocation(text, "Enugu"); got != want {
			t.Fatalf("inferLocation(%q) = %q, want %q", text, got, want)
		}
	}
}

func TestExtractMergesPageContent(t *testing.T) {
	pages := &fakePageFetcher{pages: map[string]*domain.PageContent{
		"https://cakehub.example": {
			Title: "Cake Hub Official",
			Text:  "Located in Ikeja. WhatsApp: 0803 111 2222. See instagram.com/p/xyz and @cakehub.official",
		},
	}}
	extractor := NewVendorExtractor(pages, nil, ExtractorLimits{})
	c := extractor.Extract(context.Background(), domain.SearchHit{
		Title:   "Cake Hub",
		URL:     "https://cakehub.example",
		Snippet: "cakes in Lagos",
	}, "Abuja")

	if c.Identity.Name != "Cake Hub Official" {
		t.Fatalf("expected page title to replace name, got %q", c.Identity.Name)
	}
	if !reflect.DeepEqual(c.Contacts.WhatsAppNumbers, []string{"08031112222"}) {
		t.Fatalf("expected page number, got %q", c.Contacts.WhatsAppNumbers)
	}
	if !reflect.DeepEqual(c.Social.InstagramLinks, []string{"https://instagram.com/cakehub.official"}) {
		t.Fatalf("expected post permalink to be skipped, got %q", c.Social.InstagramLinks)
	}
	if c.Location.RawText != "Ikeja" || c.Location.ResolvedText != "Ikeja" {
		t.Fatalf("expected page location Ikeja, got %+v", c.Location)
	}
}

func TestExtractPageFailureKeepsSnippetData(t *testing.T) {
	extractor := NewVendorExtractor(&fakePageFetcher{}, nil, ExtractorLimits{})
	c := extractor.Extract(context.Background(), domain.SearchHit{
		Title:   "Cake Hub",
		URL:     "https://cakehub.example",
		Snippet: "cakes in Yaba",
	}, "Lagos")
	if c.Identity.Name != "Cake Hub" || c.Location.RawText != "Yaba" {
		t.Fatalf("unexpected candidate after failed fetch: %+v", c)
	}
}

func TestExtractEnrichmentWithReverseGeocodeFallback(t *testing.T) {
	rating := 4.5
	enricher := &fakeEnricher{
		record:  &domain.BusinessEnrichment{Latitude: 6.45, Longitude: 3.39, Rating: &rating, ExternalID: "place-1"},
		address: "12 Admiralty Way, Lekki",
	}
	extractor := NewVendorExtractor(nil, enricher, ExtractorLimits{})
	c := extractor.Extract(context.Background(), domain.SearchHit{
		Title: "Cake Hub",
		URL:   "https://cakehub.example",
	}, "Lagos")

	if len(enricher.enrichArgs) != 1 || enricher.enrichArgs[0] != [2]string{"Cake Hub", "Lagos"} {
		t.Fatalf("unexpected enrichment args: %v", enricher.enrichArgs)
	}
	if enricher.reverseHit != 1 {
		t.Fatalf("expected one reverse geocode call, got %d", enricher.reverseHit)
	}
	if c.Location.Enrichment == nil || c.Location.Enrichment.Address != "12 Admiralty Way, Lekki" {
		t.Fatalf("expected reverse geocoded address, got %+v", c.Location.Enrichment)
	}
	if c.ConfidenceScore != 0.5 {
		t.Fatalf("expected resolved location + enrichment = 0.5, got %v", c.ConfidenceScore)
	}
}

func TestExtractEnrichmentFailureStillResolvesLocation(t *testing.T) {
	enricher := &fakeEnricher{err: errors.New("quota exceeded")}
	extractor := NewVendorExtractor(nil, enricher, ExtractorLimits{})
	c := extractor.Extract(context.Background(), domain.SearchHit{
		Title:   "Cake Hub",
		URL:     "https://cakehub.example",
		Snippet: "wa.me/2348012345678",
	}, "Lagos")

	if c.Location.Enrichment != nil {
		t.Fatalf("expected no enrichment, got %+v", c.Location.Enrichment)
	}
	if c.Location.ResolvedText != "Lagos" {
		t.Fatalf("expected resolved text after attempted enrichment, got %q", c.Location.ResolvedText)
	}
	if c.ConfidenceScore != 0.6 {
		t.Fatalf("expected whatsapp + resolved = 0.6, got %v", c.ConfidenceScore)
	}
	if !reflect.DeepEqual(c.Evidence, []string{domain.EvidenceWhatsApp, domain.EvidenceResolvedLocation}) {
		t.Fatalf("unexpected evidence: %v", c.Evidence)
	}
}

func TestExtractWithoutSignalsScoresZero(t *testing.T) {
	extractor := NewVendorExtractor(nil, nil, ExtractorLimits{})
	c := extractor.Extract(context.Background(), domain.SearchHit{
		URL:     "https://empty.example",
		Snippet: "nothing useful",
	}, "")
	if c.Discarded {
		t.Fatalf("did not expect discard: %q", c.DiscardReason)
	}
	if c.ConfidenceScore != 0 || len(c.Evidence) != 0 {
		t.Fatalf("expected zero score without evidence, got %v %v", c.ConfidenceScore, c.Evidence)
	}
}

func TestScoreCandidateClampsToOne(t *testing.T) {
	c := domain.VendorCandidate{
		Identity: domain.VendorIdentity{Name: "x", URL: "https://x.example"},
		Contacts: domain.VendorContacts{WhatsAppNumbers: []string{"2348012345678"}},
		Social:   domain.VendorSocial{InstagramLinks: []string{"https://instagram.com/x"}},
		Location: domain.VendorLocation{
			ResolvedText: "Lagos",
			Enrichment:   &domain.BusinessEnrichment{Address: "somewhere"},
		},
		SoftSignals: 3,
	}
	score, evidence := ScoreCandidate(c)
	if score != 1.0 {
		t.Fatalf("expected clamp to 1.0, got %v", score)
	}
	if len(evidence) != 5 || evidence[4] != domain.EvidenceSoftSignal {
		t.Fatalf("unexpected evidence: %v", evidence)
	}
}

func TestSoftSignalsNeedTwoPhrases(t *testing.T) {
	extractor := NewVendorExtractor(nil, nil, ExtractorLimits{})
	one := extractor.Extract(context.Background(), domain.SearchHit{URL: "https://a.example", Snippet: "fast delivery"}, "")
	two := extractor.Extract(context.Background(), domain.SearchHit{URL: "https://b.example", Snippet: "fast delivery, order now"}, "")
	if one.ConfidenceScore != 0 {
		t.Fatalf("one phrase must not add a bonus, got %v", one.ConfidenceScore)
	}
	if two.ConfidenceScore != 0.1 {
		t.Fatalf("two phrases must add 0.1, got %v", two.ConfidenceScore)
	}
}
