package learning

import (
	"regexp"
	"strings"

	"github.com/nekrovoice/nekro-go/internal/match"
)

var fillerWords = regexp.MustCompile(`\b(please|could you|can you|would you)\b`)
var multiSpace = regexp.MustCompile(`\s+`)

// Clean lower-cases the raw utterance, strips politeness filler and collapses
// whitespace. It performs no history lookup.
func Clean(raw string) string {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = fillerWords.ReplaceAllString(normalized, "")
	return strings.TrimSpace(multiSpace.ReplaceAllString(normalized, " "))
}

// canonicalize collapses the cleaned text onto the highest-scoring historical
// command above the threshold, keeping the first candidate in recency order on
// ties. It returns the cleaned text unchanged when nothing scores high enough.
func canonicalize(cleaned string, history []string, threshold float64) string {
	best := ""
	bestScore := 0.0
	for _, candidate := range history {
		score := match.Score(cleaned, candidate)
		if score > threshold && score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	if best == "" {
		return cleaned
	}
	return best
}
