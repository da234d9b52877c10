// Package language scores transcript and filing text for hedging and
// uncertainty using fixed lexicons, normalized per 1000 words.
package language

import (
	"regexp"
	"strings"
)

// Source sections a metrics row can be attributed to.
const (
	SectionPrepared = "Prepared"
	SectionQA       = "Q&A"
)

var (
	hedges = []string{
		"may", "might", "could", "approximately", "around", "about", "likely",
		"possible", "potential", "expect", "estimate", "anticipate", "forecast", "project",
	}
	negations   = []string{"not", "no", "never", "none", "without"}
	uncertainty = []string{"uncertain", "visibility", "headwinds", "challenging", "volatility", "risk", "cautious"}
	vague       = []string{"somewhat", "kind of", "relatively", "roughly", "sort of"}

	wordRe = regexp.MustCompile(`\W+`)
)

// Metrics is the result of one analysis run.
type Metrics struct {
	WordsTotal    int
	HedgesPerK    float64
	NegationsPerK float64
	UncertainPerK float64
	VaguePerK     float64
	SourceSection string
}

// Analyze tokenizes text and counts lexicon hits per 1000 words.
// Multi-word vague terms are counted by substring occurrence.
func Analyze(text, sourceSection string) Metrics {
	words := tokenize(text)
	return Metrics{
		WordsTotal:    len(words),
		HedgesPerK:    perThousand(words, hedges),
		NegationsPerK: perThousand(words, negations),
		UncertainPerK: perThousand(words, uncertainty),
		VaguePerK:     phrasesPerThousand(text, len(words), vague),
		SourceSection: sourceSection,
	}
}

func tokenize(text string) []string {
	parts := wordRe.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func perThousand(words []string, lexicon []string) float64 {
	set := make(map[string]bool, len(lexicon))
	for _, w := range lexicon {
		set[w] = true
	}
	total := len(words)
	if total == 0 {
		total = 1
	}
	hits := 0
	for _, w := range words {
		if set[strings.ToLower(w)] {
			hits++
		}
	}
	return float64(hits) * 1000 / float64(total)
}

func phrasesPerThousand(text string, totalWords int, phrases []string) float64 {
	if totalWords == 0 {
		totalWords = 1
	}
	lower := strings.ToLower(text)
	hits := 0
	for _, p := range phrases {
		hits += strings.Count(lower, p)
	}
	return float64(hits) * 1000 / float64(totalWords)
}
