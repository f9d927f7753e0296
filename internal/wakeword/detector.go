// Package wakeword decides whether a transcribed utterance contains the
// activation phrase, tolerating transcription noise.
package wakeword

import (
	"regexp"
	"strings"

	"github.com/nekrovoice/nekro-go/internal/domain"
	"github.com/nekrovoice/nekro-go/internal/match"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9\s]`)
var spaces = regexp.MustCompile(`\s+`)

// Detector checks transcripts for a configured wake phrase. An exact
// substring match activates outright; otherwise each token of sufficient
// length is fuzzily compared against the phrase.
type Detector struct {
	Phrase    string
	Threshold float64
}

// New builds a detector, falling back to the default phrase and threshold on
// zero values.
func New(phrase string, threshold float64) *Detector {
	if phrase == "" {
		phrase = domain.DefaultWakePhrase
	}
	if threshold <= 0 {
		threshold = domain.DefaultWakeThreshold
	}
	return &Detector{Phrase: strings.ToLower(phrase), Threshold: threshold}
}

// Detect reports whether the recognized text activates the assistant.
func (d *Detector) Detect(text string) bool {
	return d.Confidence(text) >= d.Threshold
}

// Confidence returns 1.0 on an exact substring match, otherwise the best
// fuzzy score among tokens of at least MinWakeTokenLength characters, and 0.0
// when no token qualifies.
func (d *Detector) Confidence(text string) float64 {
	normalized := normalize(text)
	if normalized == "" {
		return 0.0
	}
	if strings.Contains(normalized, d.Phrase) {
		return 1.0
	}

	best := 0.0
	for _, token := range strings.Fields(normalized) {
		if len(token) < domain.MinWakeTokenLength {
			continue // too many false positives on short words
		}
		if score := match.Score(token, d.Phrase); score > best {
			best = score
		}
	}
	return best
}

// Strip removes the wake phrase occurrence from the text so the remainder can
// be processed as a command. With no detectable phrase the text is returned
// cleaned but otherwise intact.
func (d *Detector) Strip(text string) string {
	normalized := normalize(text)
	if idx := strings.Index(normalized, d.Phrase); idx >= 0 {
		remainder := normalized[:idx] + normalized[idx+len(d.Phrase):]
		return strings.TrimSpace(spaces.ReplaceAllString(remainder, " "))
	}

	tokens := strings.Fields(normalized)
	bestIdx, best := -1, 0.0
	for i, token := range tokens {
		if len(token) < domain.MinWakeTokenLength {
			continue
		}
		if score := match.Score(token, d.Phrase); score >= d.Threshold && score > best {
			bestIdx, best = i, score
		}
	}
	if bestIdx >= 0 {
		tokens = append(tokens[:bestIdx], tokens[bestIdx+1:]...)
	}
	return strings.Join(tokens, " ")
}

func normalize(text string) string {
	lowered := strings.ToLower(text)
	cleaned := nonAlnum.ReplaceAllString(lowered, "")
	return strings.TrimSpace(spaces.ReplaceAllString(cleaned, " "))
}
