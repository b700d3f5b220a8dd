// Package equipment turns free-form equipment recommendation text into short
// display tags.
package equipment

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxItems caps the number of tags returned by Extract.
const MaxItems = 6

const (
	minFragmentLen   = 3
	maxFragmentWords = 4
	// restaurantBias is the number of allowlisted fragments needed before the
	// list is narrowed to allowlisted terms only.
	restaurantBias = 4
)

var (
	reLeadingEquals = regexp.MustCompile(`^=+`)
	rePreamble      = regexp.MustCompile(`(?i)^\s*based on[^:]*:\s*`)
	reSeparators    = regexp.MustCompile(`[\r\n•●▪◦·,\-–—]`)
	reListMarker    = regexp.MustCompile(`^\s*\d+\.\s*`)
	reSpaces        = regexp.MustCompile(`\s+`)

	reRestaurantHint = regexp.MustCompile(`(?i)restaurant|food`)
	reRestaurantDeny = []*regexp.Regexp{
		regexp.MustCompile(`(?i)cnc`),
		regexp.MustCompile(`(?i)scaffold`),
		regexp.MustCompile(`(?i)printing press`),
		regexp.MustCompile(`(?i)forklift`),
	}
	reRestaurantAllow = regexp.MustCompile(`(?i)oven|range|grill|fryer|hood|vent|dishwasher|dish machine|refrigerat|freezer|ice|prep table|worktable|mixer|proof|pos|grease trap`)
)

var restaurantFallback = []string{
	"Commercial oven",
	"Range",
	"Deep fryer",
	"Vent hood",
	"Refrigeration unit",
	"POS system",
}

// Extract splits recommendation text into at most MaxItems short phrases.
// The result is never nil and blank text yields no items. For restaurant and
// food service industries the phrases are biased toward kitchen equipment,
// and text whose fragments are all filtered out yields a fixed fallback list.
func Extract(text, industryHint string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}
	restaurant := IsRestaurantIndustry(industryHint)

	items := fragments(text)
	if restaurant {
		items = biasRestaurant(items)
	}
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}
	if len(items) == 0 && restaurant {
		return RestaurantFallback()
	}
	return items
}

// IsRestaurantIndustry reports whether the industry hint names a restaurant
// or food business.
func IsRestaurantIndustry(industryHint string) bool {
	return reRestaurantHint.MatchString(industryHint)
}

// RestaurantFallback returns a fresh copy of the default restaurant tags.
func RestaurantFallback() []string {
	out := make([]string, len(restaurantFallback))
	copy(out, restaurantFallback)
	return out
}

func fragments(text string) []string {
	out := []string{}
	if strings.TrimSpace(text) == "" {
		return out
	}

	cleaned := reLeadingEquals.ReplaceAllString(text, "")
	cleaned = rePreamble.ReplaceAllString(cleaned, "")

	seen := make(map[string]struct{})
	for _, part := range reSeparators.Split(cleaned, -1) {
		frag := cleanFragment(part)
		if _, dup := seen[frag]; dup {
			continue
		}
		seen[frag] = struct{}{}
		if !displayable(frag) {
			continue
		}
		out = append(out, frag)
	}
	return out
}

func cleanFragment(part string) string {
	frag := reListMarker.ReplaceAllString(part, "")
	frag = strings.ReplaceAll(frag, "**", "")
	frag = strings.TrimSpace(frag)
	return reSpaces.ReplaceAllString(frag, " ")
}

func displayable(frag string) bool {
	if utf8.RuneCountInString(frag) < minFragmentLen {
		return false
	}
	return len(strings.Fields(frag)) <= maxFragmentWords
}

func biasRestaurant(items []string) []string {
	kept := make([]string, 0, len(items))
	for _, item := range items {
		if denied(item) {
			continue
		}
		kept = append(kept, item)
	}

	relevant := make([]string, 0, len(kept))
	for _, item := range kept {
		if reRestaurantAllow.MatchString(item) {
			relevant = append(relevant, item)
		}
	}
	if len(relevant) >= restaurantBias {
		return relevant
	}
	return kept
}

func denied(item string) bool {
	for _, re := range reRestaurantDeny {
		if re.MatchString(item) {
			return true
		}
	}
	return false
}
