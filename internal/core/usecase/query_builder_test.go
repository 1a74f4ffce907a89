package usecase

import (
	"reflect"
	"strings"
	"testing"
)

func TestBuildSearchQueriesInstagram(t *testing.T) {
	got := BuildSearchQueries("cake", "Lagos", "instagram")
	want := []string{
		`site:instagram.com "cake vendor Lagos"`,
		`site:instagram.com "cake in Lagos"`,
		`site:instagram.com "cake" "Lagos"`,
		`site:instagram.com "cake" whatsapp "Lagos"`,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected queries:\n got %q\nwant %q", got, want)
	}
}

func TestBuildSearchQueriesIsDeterministic(t *testing.T) {
	first := BuildSearchQueries("plumber", "Abuja", "twitter")
	for i := 0; i < 5; i++ {
		if next := BuildSearchQueries("plumber", "Abuja", "twitter"); !reflect.DeepEqual(first, next) {
			t.Fatalf("queries changed between calls: %q vs %q", first, next)
		}
	}
}

func TestBuildSearchQueriesPlatformAliases(t *testing.T) {
	x := BuildSearchQueries("plumber", "Abuja", "X")
	twitter := BuildSearchQueries("plumber", "Abuja", "twitter")
	if !reflect.DeepEqual(x, twitter) {
		t.Fatalf("expected x to map to twitter, got %q vs %q", x, twitter)
	}
}

func TestBuildSearchQueriesUnknownPlatformHasNoSiteRestriction(t *testing.T) {
	for _, platform := range []string{"", "myspace"} {
		queries := BuildSearchQueries("cleaner", "Ikeja", platform)
		if len(queries) < 3 || len(queries) > 4 {
			t.Fatalf("expected 3-4 queries, got %d", len(queries))
		}
		for _, q := range queries {
			if strings.Contains(q, "site:") {
				t.Fatalf("platform %q: unexpected site restriction in %q", platform, q)
			}
			if strings.HasPrefix(q, " ") {
				t.Fatalf("platform %q: query not trimmed: %q", platform, q)
			}
		}
	}
}
