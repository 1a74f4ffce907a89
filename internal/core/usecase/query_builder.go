package usecase

import (
	"fmt"
	"strings"
)

var platformSites = map[string]string{
	"instagram": "site:instagram.com",
	"twitter":   "site:twitter.com",
	"x":         "site:twitter.com",
	"facebook":  "site:facebook.com",
	"tiktok":    "site:tiktok.com",
}

// BuildSearchQueries returns the ordered, distinct query strings for a service and location.
// Unknown platforms produce unrestricted queries.
func BuildSearchQueries(service, location, platform string) []string {
	site := platformSites[strings.ToLower(strings.TrimSpace(platform))]

	templates := []string{
		fmt.Sprintf(`%s "%s vendor %s"`, site, service, location),
		fmt.Sprintf(`%s "%s in %s"`, site, service, location),
		fmt.Sprintf(`%s "%s" "%s"`, site, service, location),
		fmt.Sprintf(`%s "%s" whatsapp "%s"`, site, service, location),
	}

	queries := make([]string, 0, len(templates))
	seen := make(map[string]struct{}, len(templates))
	for _, q := range templates {
		q = strings.TrimSpace(q)
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		queries = append(queries, q)
	}
	return queries
}
