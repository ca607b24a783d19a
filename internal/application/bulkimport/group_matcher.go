package bulkimport

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
)

const (
	exactMatchScore = 100
	maxLengthDelta  = 3
	maxEditDistance = 2
)

type GroupMatch struct {
	Group    domain.Group
	Score    int
	Distance int
	Exact    bool
}

// Levenshtein is the unit-cost edit distance between a and b, counted in runes.
func Levenshtein(a, b string) int {
	return fuzzy.LevenshteinDistance(a, b)
}

// MatchGroup resolves a declared group name against the account's groups.
// An exact normalized hit scores 100. Otherwise the closest group whose name
// length is within maxLengthDelta is accepted when its case-insensitive
// distance is at most maxEditDistance; such matches need caller confirmation.
func MatchGroup(input string, tables *ReferenceTables) (GroupMatch, bool) {
	if strings.TrimSpace(input) == "" || tables == nil {
		return GroupMatch{}, false
	}

	if g, ok := tables.GroupByName(input); ok {
		return GroupMatch{Group: g, Score: exactMatchScore, Exact: true}, true
	}

	inputLen := utf8.RuneCountInString(input)
	lowered := strings.ToLower(input)

	var (
		best     domain.Group
		bestDist = math.MaxInt
		found    bool
	)
	for _, g := range tables.Groups() {
		nameLen := utf8.RuneCountInString(g.Name)
		if absInt(nameLen-inputLen) > maxLengthDelta {
			continue
		}
		dist := Levenshtein(lowered, strings.ToLower(g.Name))
		if dist < bestDist {
			best, bestDist, found = g, dist, true
		}
	}

	if !found || bestDist > maxEditDistance {
		return GroupMatch{}, false
	}

	return GroupMatch{
		Group:    best,
		Score:    confidenceScore(bestDist, inputLen, utf8.RuneCountInString(best.Name)),
		Distance: bestDist,
	}, true
}

func confidenceScore(distance, inputLen, candidateLen int) int {
	maxLen := inputLen
	if candidateLen > maxLen {
		maxLen = candidateLen
	}
	if maxLen == 0 {
		return exactMatchScore
	}
	return int(math.Round((1 - float64(distance)/float64(maxLen)) * 100))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
