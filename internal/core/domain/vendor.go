package domain

// SearchResult is one raw row returned by a keyword search provider.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// SearchHit is a deduplicated, scored search result ready for extraction.
type SearchHit struct {
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	Snippet        string  `json:"snippet"`
	Provider       string  `json:"provider"`
	Query          string  `json:"query"`
	RelevanceScore float64 `json:"relevance_score"`
}

// PageContent is the readable part of a fetched page.
type PageContent struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type VendorIdentity struct {
	Name           string `json:"name"`
	SourceProvider string `json:"source_provider"`
	URL            string `json:"url"`
}

type VendorContacts struct {
	WhatsAppNumbers []string `json:"whatsapp_numbers"`
}

type VendorSocial struct {
	InstagramLinks []string `json:"instagram_links"`
}

// BusinessEnrichment is a place record resolved for a vendor name and location.
type BusinessEnrichment struct {
	Address    string   `json:"address"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Rating     *float64 `json:"rating,omitempty"`
	ExternalID string   `json:"external_id"`
}

// HasCoordinates reports whether the record carries a usable position.
func (e BusinessEnrichment) HasCoordinates() bool {
	return e.Latitude != 0 || e.Longitude != 0
}

type VendorLocation struct {
	RawText      string              `json:"raw_text"`
	ResolvedText string              `json:"resolved_text,omitempty"`
	Enrichment   *BusinessEnrichment `json:"enrichment,omitempty"`
}

// Evidence tags recorded on a candidate, in the order signals are scored.
const (
	EvidenceWhatsApp         = "whatsapp_contact"
	EvidenceInstagram        = "instagram_profile"
	EvidenceResolvedLocation = "resolved_location"
	EvidenceEnrichment       = "business_enrichment"
	EvidenceSoftSignal       = "soft_contact_signal"
)

// Discard reasons.
const (
	DiscardJobPost      = "job_post_detected"
	DiscardNonVendorURL = "non_vendor_url"
	DiscardMissingURL   = "missing_url"
)

// VendorCandidate is the structured record extracted from one search hit.
type VendorCandidate struct {
	Identity        VendorIdentity `json:"identity"`
	Contacts        VendorContacts `json:"contacts"`
	Social          VendorSocial   `json:"social"`
	Location        VendorLocation `json:"location"`
	ConfidenceScore float64        `json:"confidence_score"`
	Discarded       bool           `json:"discarded,omitempty"`
	DiscardReason   string         `json:"discard_reason,omitempty"`
	Evidence        []string       `json:"evidence"`

	// SoftSignals is the number of vendor-intent phrases seen in snippet and page text.
	SoftSignals int `json:"-"`
}

func (c VendorCandidate) HasWhatsApp() bool {
	return len(c.Contacts.WhatsAppNumbers) > 0
}

func (c VendorCandidate) HasInstagram() bool {
	return len(c.Social.InstagramLinks) > 0
}

func (c VendorCandidate) HasEnrichment() bool {
	return c.Location.Enrichment != nil
}

// DiscardedCandidate builds a candidate excluded from further processing.
func DiscardedCandidate(hit SearchHit, reason string) VendorCandidate {
	return VendorCandidate{
		Identity: VendorIdentity{
			Name:           hit.Title,
			SourceProvider: hit.Provider,
			URL:            hit.URL,
		},
		Discarded:     true,
		DiscardReason: reason,
		Evidence:      []string{},
	}
}
