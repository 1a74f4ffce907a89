package usecase

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// knownPlaces is checked in order; the first hit wins.
var knownPlaces = []string{
	"lagos",
	"abuja",
	"ibadan",
	"port harcourt",
	"ph",
	"lekki",
	"ikeja",
	"ajah",
	"yaba",
	"surulere",
	"ikorodu",
	"benin",
	"asaba",
	"uyo",
	"owerri",
}

// Abbreviations such as "ph" only match as whole words.
const shortPlaceMaxLen = 2

var shortPlacePatterns = func() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp)
	for _, place := range knownPlaces {
		if len(place) <= shortPlaceMaxLen {
			out[place] = regexp.MustCompile(`\b` + regexp.QuoteMeta(place) + `\b`)
		}
	}
	return out
}()

// inferLocation returns the first known place mentioned in text, title-cased, or fallback.
func inferLocation(text, fallback string) string {
	lower := strings.ToLower(text)
	for _, place := range knownPlaces {
		if pattern, ok := shortPlacePatterns[place]; ok {
			if pattern.MatchString(lower) {
				return titleCase(place)
			}
			continue
		}
		if strings.Contains(lower, place) {
			return titleCase(place)
		}
	}
	return fallback
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
