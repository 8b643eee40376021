// Package crawl implements the grid-search crawl engine: rate-limited
// paginated search, relevance filtering, classification, scoring, and
// zone-granularity checkpointing.
package crawl

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CategoryCommunity is the category whose catalogs deliberately search for
// places of worship, traditional markets, and similar community anchors.
const CategoryCommunity = "Community_Infrastructure"

// excludedTypes are provider type tags that never belong in the dataset,
// regardless of name or keyword match.
var excludedTypes = map[string]struct{}{
	"loading_dock":   {},
	"parking":        {},
	"gas_station":    {},
	"atm":            {},
	"bus_station":    {},
	"subway_station": {},
	"train_station":  {},
	"airport":        {},
	"lodging":        {},
	"storage":        {},
	"warehouse":      {},
	"construction":   {},
	"industrial":     {},
	"utility":        {},
	"government":     {},
	"embassy":        {},
	"cemetery":       {},
	"funeral_home":   {},
}

// place_of_worship is excluded for every category except
// Community_Infrastructure, whose catalogs search for mosques, churches, and
// temples by keyword. A universal exclusion would suppress those results.
const worshipType = "place_of_worship"

// excludedNameParts are name substrings that mark a hit as irrelevant.
var excludedNameParts = []string{
	"loading dock",
	"parking lot",
	"parking area",
	"tempat parkir",
	"gas station",
	"petrol station",
	"bank atm",
	"construction site",
	"storage facility",
	"gudang",
	"pabrik",
}

// Filter decides whether a search hit belongs in the dataset.
type Filter struct{}

// NewFilter returns the relevance filter.
func NewFilter() *Filter {
	return &Filter{}
}

// Relevant reports whether a place with the given name and search-response
// type tags belongs in the dataset for the given category. The filter
// defaults to accept: a false negative throws away a real result, while a
// false positive survives until manual review.
func (f *Filter) Relevant(name string, types []string, category string) bool {
	nameLower := Normalize(name)

	for _, t := range types {
		t = Normalize(t)
		if _, excluded := excludedTypes[t]; excluded {
			return false
		}
		if t == worshipType && category != CategoryCommunity {
			return false
		}
	}

	for _, part := range excludedNameParts {
		if strings.Contains(nameLower, part) {
			return false
		}
	}

	if category == CategoryCommunity {
		// Traditional-market keywords must not surface modern malls.
		if strings.Contains(nameLower, "pasar") || strings.Contains(nameLower, "market") {
			return !hasType(types, "shopping_mall")
		}
	}

	return true
}

func hasType(types []string, want string) bool {
	for _, t := range types {
		if Normalize(t) == want {
			return true
		}
	}
	return false
}

// Normalize lowercases a string after NFKC normalization so that
// matching is stable across width and compatibility variants.
func Normalize(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}
