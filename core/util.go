package core

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	maxSuggestions = 3
	minSimilarity  = .6
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// ClosestMatches returns up to 3 candidates similar to `key`, best match first.
func ClosestMatches(key string, candidates []string) []string {
	if key == "" || len(candidates) == 0 {
		return nil
	}
	type match struct {
		s     string
		ratio float64
	}
	matches := make([]match, 0, maxSuggestions)
	for _, c := range candidates {
		if c == key {
			continue
		}
		ratio := difflib.NewMatcher(strings.Split(strings.ToLower(key), ""), strings.Split(strings.ToLower(c), "")).Ratio()
		if ratio >= minSimilarity {
			matches = append(matches, match{c, ratio})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].ratio == matches[j].ratio {
			return matches[i].s < matches[j].s
		}
		return matches[i].ratio > matches[j].ratio
	})
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	res := make([]string, len(matches))
	for i, m := range matches {
		res[i] = m.s
	}
	return res
}
