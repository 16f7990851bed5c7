package targets

import (
	"strings"

	"jobwatch-engine/internal/domain"
)

// Parse splits a search configuration of the form
//
//	url1|Place1, url2|Place2, url3
//
// into targets, one per comma-separated entry, in order. Entries are not
// validated here: a bad url fails at fetch time.
func Parse(config string) []domain.SearchTarget {
	entries := strings.Split(config, ",")
	out := make([]domain.SearchTarget, 0, len(entries))
	for _, entry := range entries {
		url, place, _ := strings.Cut(entry, "|")
		out = append(out, domain.SearchTarget{
			URL:   strings.TrimSpace(url),
			Place: strings.TrimSpace(place),
		})
	}
	return out
}
