package usecase

import (
	"regexp"
	"sort"
	"strings"
)

const minWhatsAppDigits = 10

var whatsAppPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)wa\.me[/+]?(\d+)`),
	regexp.MustCompile(`(?i)whatsapp[:\s]*([+\d][\d\s\-]{9,})`),
	regexp.MustCompile(`(\+?234[\s\-]?\d{3}[\s\-]?\d{3}[\s\-]?\d{4})`),
	regexp.MustCompile(`(\+?\d[\d\s\-]{9,})`),
}

var instagramPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)https?://(?:www\.)?instagram\.com/[\w.]+/?`),
	regexp.MustCompile(`(?i)instagram\.com/[\w.]+/?`),
	regexp.MustCompile(`@[\w.]{3,}`),
}

var nonPhoneChars = regexp.MustCompile(`[^\d+]`)

// extractWhatsAppNumbers adds every normalised phone-like match in text to dst.
func extractWhatsAppNumbers(text string, dst map[string]struct{}) {
	for _, pattern := range whatsAppPatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			if len(match) < 2 {
				continue
			}
			if number, ok := normalizeWhatsAppNumber(match[1]); ok {
				dst[number] = struct{}{}
			}
		}
	}
}

func normalizeWhatsAppNumber(raw string) (string, bool) {
	cleaned := nonPhoneChars.ReplaceAllString(raw, "")
	digits := 0
	for _, r := range cleaned {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < minWhatsAppDigits {
		return "", false
	}
	return cleaned, true
}

// extractInstagramLinks adds canonical profile links found in text to dst.
// Post permalinks are skipped when skipPosts is set.
func extractInstagramLinks(text string, skipPosts bool, dst map[string]struct{}) {
	for _, pattern := range instagramPatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			link := normalizeInstagramLink(match)
			if link == "" {
				continue
			}
			if skipPosts && strings.Contains(link, "/p/") {
				continue
			}
			dst[link] = struct{}{}
		}
	}
}

func normalizeInstagramLink(match string) string {
	match = strings.TrimSpace(match)
	switch {
	case match == "":
		return ""
	case strings.HasPrefix(match, "@"):
		handle := strings.TrimRight(strings.TrimPrefix(match, "@"), ".")
		if handle == "" {
			return ""
		}
		return "https://instagram.com/" + handle
	case strings.HasPrefix(strings.ToLower(match), "http"):
		return match
	default:
		return "https://" + match
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
