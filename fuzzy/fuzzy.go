// Package fuzzy scores lexical similarity between normalized strings.
//
// Scoring is token-order tolerant: inputs are split into tokens and sorted
// before comparison, so "smith john" and "john smith" score 1.0. The final
// score is the better of a Levenshtein edit ratio and a Jaro-Winkler
// similarity over the token-sorted forms, which mirrors how weighted-ratio
// scorers behave on short entity names.
package fuzzy

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"

	"github.com/poiesic/resolvit/normalize"
)

// Jaro-Winkler parameters: standard boost threshold and prefix length.
const (
	jaroWinklerBoost  = 0.7
	jaroWinklerPrefix = 4
)

// Score returns the lexical similarity between two normalized strings in
// [0,1], where 1.0 means identical after token sorting. Pure function; an
// empty input on either side scores 0.
func Score(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	a = tokenSort(a)
	b = tokenSort(b)
	if a == b {
		return 1
	}

	lev := levenshteinRatio(a, b)
	jw := smetrics.JaroWinkler(a, b, jaroWinklerBoost, jaroWinklerPrefix)
	if jw > lev {
		return jw
	}
	return lev
}

// tokenSort rebuilds the string from its tokens in sorted order.
func tokenSort(s string) string {
	tokens := normalize.Tokens(s)
	if len(tokens) < 2 {
		return s
	}
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// levenshteinRatio converts edit distance to a similarity in [0,1].
func levenshteinRatio(a, b string) float64 {
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	ratio := 1 - float64(dist)/float64(longest)
	if ratio < 0 {
		return 0
	}
	return ratio
}
