package guidance

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Pattern families, in priority order:
//
//	(a) midpoint plus-or-minus percentage
//	(b) explicit dollar range with billion/million unit
//	(c) named-segment revenue range
//	(d) plain decimal EPS range, no currency-scale suffix
//
// Each family is an independent matcher returning a typed optional result.
// Revenue takes the first of (a), (b), (c); EPS uses (d).

const num = `([0-9]+(?:\.[0-9]+)?)`

var (
	unitToken = `(billion|bn|million|mm|[bm])`

	midpointRe = regexp.MustCompile(`(?i)\$\s*` + num + `\s*` + unitToken + `?\s*,?\s*(?:plus\s+or\s+minus|\+/-|\+or-)\s*` + num + `\s*(?:%|percent)`)

	dollarRangeRe = regexp.MustCompile(`(?i)\$\s*` + num + `\s*` + unitToken + `?\s*(?:-|to|and)\s*\$?\s*` + num + `\s*` + unitToken + `?\b`)

	segmentRangeRe = regexp.MustCompile(`(?i)\b([A-Z][A-Za-z&\- ]{1,40}?)\s+(?:segment\s+)?revenue\s+(?:of|is\s+expected\s+to\s+be|to\s+be|in\s+the\s+range\s+of|between)\s+(?:approximately\s+)?\$\s*` + num + `\s*` + unitToken + `?\s*(?:-|to|and)\s*\$?\s*` + num + `\s*` + unitToken + `?\b`)

	epsRangeRe = regexp.MustCompile(`\$\s*` + num + `\s*(?:-|to)\s*\$?\s*` + num)

	unitAfterRe = regexp.MustCompile(`(?i)^\s*(billion|bn|million|mm|[bm])\b`)
)

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// scaleToMillions converts a raw dollar figure with a unit token to
// canonical USD millions, rounded to 2 decimals.
func scaleToMillions(v float64, unit string) float64 {
	if isBillionUnit(unit) {
		v *= 1000
	}
	return math.Round(v*100) / 100
}

func isBillionUnit(unit string) bool {
	switch strings.ToLower(unit) {
	case "b", "bn", "billion":
		return true
	}
	return false
}

// MatchMidpointPct matches "approximately $5.2 billion, plus or minus 2%"
// style guidance: min/max = mid*(1 -/+ pct/100) in USD millions.
func MatchMidpointPct(sentence string) *Range {
	m := midpointRe.FindStringSubmatch(sentence)
	if m == nil {
		return nil
	}
	mid := scaleToMillions(parseFloat(m[1]), m[2])
	pct := parseFloat(m[3]) / 100
	return &Range{
		Min: math.Round(mid*(1-pct)*100) / 100,
		Max: math.Round(mid*(1+pct)*100) / 100,
	}
}

// MatchDollarRange matches an explicit dollar range carrying a
// billion/million unit on at least one bound, e.g. "$5.2B-$5.4B" or
// "between $500 million and $520 million". Values normalize to USD
// millions; a unit declared on only one bound applies to both.
func MatchDollarRange(sentence string) *Range {
	m := dollarRangeRe.FindStringSubmatch(sentence)
	if m == nil {
		return nil
	}
	loUnit, hiUnit := m[2], m[4]
	if loUnit == "" && hiUnit == "" {
		return nil
	}
	if loUnit == "" {
		loUnit = hiUnit
	}
	if hiUnit == "" {
		hiUnit = loUnit
	}
	lo := scaleToMillions(parseFloat(m[1]), loUnit)
	hi := scaleToMillions(parseFloat(m[3]), hiUnit)
	if lo > hi {
		lo, hi = hi, lo
	}
	return &Range{Min: lo, Max: hi}
}

// Words that mean the phrase before "revenue" is sentence structure, not a
// segment name.
var segmentStopwords = map[string]bool{
	"we": true, "our": true, "its": true, "the": true, "company": true,
	"total": true, "expect": true, "expects": true, "sees": true,
	"anticipate": true, "anticipates": true, "forecast": true,
	"forecasts": true, "project": true, "projects": true,
	"quarterly": true, "annual": true, "net": true,
}

// MatchSegmentRange matches a revenue range scoped to a named segment,
// e.g. "Data Center revenue of $3.9 billion to $4.1 billion". Phrases made
// of sentence structure ("We expect revenue of ...") are rejected so the
// plain dollar-range family handles them instead.
func MatchSegmentRange(sentence string) *Range {
	m := segmentRangeRe.FindStringSubmatch(sentence)
	if m == nil {
		return nil
	}
	loUnit, hiUnit := m[3], m[5]
	if loUnit == "" && hiUnit == "" {
		return nil
	}
	if loUnit == "" {
		loUnit = hiUnit
	}
	if hiUnit == "" {
		hiUnit = loUnit
	}
	lo := scaleToMillions(parseFloat(m[2]), loUnit)
	hi := scaleToMillions(parseFloat(m[4]), hiUnit)
	if lo > hi {
		lo, hi = hi, lo
	}
	segment := strings.TrimSpace(m[1])
	// Strip leading sentence fragments picked up by the greedy word class.
	if i := strings.LastIndex(segment, ","); i >= 0 {
		segment = strings.TrimSpace(segment[i+1:])
	}
	words := strings.Fields(segment)
	keepFrom := 0
	for i, w := range words {
		if segmentStopwords[strings.ToLower(w)] {
			keepFrom = i + 1
		}
	}
	segment = strings.Join(words[keepFrom:], " ")
	if segment == "" {
		return nil
	}
	return &Range{Min: lo, Max: hi, Segment: segment}
}

// MatchEPSRange matches a plain decimal dollar range with no
// billion/million suffix, the conventional shape of per-share guidance.
func MatchEPSRange(sentence string) *Range {
	for _, loc := range epsRangeRe.FindAllStringSubmatchIndex(sentence, -1) {
		if unitAfterRe.MatchString(sentence[loc[1]:]) {
			continue // scaled dollar range, not per-share
		}
		lo := parseFloat(sentence[loc[2]:loc[3]])
		hi := parseFloat(sentence[loc[4]:loc[5]])
		if lo > hi {
			lo, hi = hi, lo
		}
		return &Range{Min: lo, Max: hi}
	}
	return nil
}

// DetectBasis flags the accounting basis by substring match. "non-GAAP"
// wins over a bare "GAAP" mention.
func DetectBasis(sentence string) Basis {
	if regexp.MustCompile(`(?i)non-?GAAP`).MatchString(sentence) {
		return BasisNonGAAP
	}
	if strings.Contains(sentence, "GAAP") {
		return BasisGAAP
	}
	return BasisUnknown
}
