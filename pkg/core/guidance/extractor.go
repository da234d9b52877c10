package guidance

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	dashReplacer = strings.NewReplacer("–", "-", "—", "-", "−", "-", " ", " ")
	wsRe         = regexp.MustCompile(`\s+`)

	// Terminal punctuation must be followed by whitespace so decimals like
	// $1.20 survive the split.
	sentenceRe = regexp.MustCompile(`[.!?;]\s+|\n+`)

	keywordRe = regexp.MustCompile(`(?i)\b(guidance|outlook|expect\w*|sees|anticipat\w*|range|between|forecast\w*|project\w*|estimat\w*)\b`)

	// A results exhibit sometimes defers the numbers to the live call.
	deferralRe = regexp.MustCompile(`(?i)(?:provide|give|discuss|offer)[^.]{0,60}guidance[^.]{0,60}\b(?:on|during)\s+(?:the|its|today's|our)\s+(?:earnings\s+|conference\s+|quarterly\s+)?call`)

	fyRe = regexp.MustCompile(`(?i)FY\s*(\d{4})`)
	fpRe = regexp.MustCompile(`(?i)\b(Q[1-4]|FY)\b`)
)

// NormalizeText unifies dash variants and collapses whitespace runs.
func NormalizeText(text string) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(dashReplacer.Replace(text), " "))
}

// SplitSentences breaks normalized text into sentence-like chunks on
// terminal punctuation.
func SplitSentences(text string) []string {
	parts := sentenceRe.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DeferredToCall reports whether the document states that guidance will be
// given live on the earnings call instead of in the text itself.
func DeferredToCall(text string) bool {
	return deferralRe.MatchString(text)
}

// InferPeriod pulls fiscal-year and fiscal-period identity out of a
// guidance sentence. Either may be absent.
func InferPeriod(sentence string) (fy *int, fp string) {
	if m := fyRe.FindStringSubmatch(sentence); m != nil {
		if y, err := strconv.Atoi(m[1]); err == nil {
			fy = &y
		}
	}
	if m := fpRe.FindStringSubmatch(sentence); m != nil {
		fp = strings.ToUpper(m[1])
	}
	return fy, fp
}

// Extract applies the pattern families to raw document text and returns all
// guidance statements found. Candidate sentences must contain a
// guidance-indicating keyword. Revenue statements take the first matching
// family in priority order; the EPS family is applied independently.
// An empty result is a valid outcome, not an error.
func Extract(text, sourceURL string) []Statement {
	normalized := NormalizeText(text)
	statements := make([]Statement, 0)

	for _, sentence := range SplitSentences(normalized) {
		if !keywordRe.MatchString(sentence) {
			continue
		}
		basis := DetectBasis(sentence)
		fy, fp := InferPeriod(sentence)

		if r := matchRevenue(sentence); r != nil {
			statements = append(statements, Statement{
				Metric:    MetricRevenue,
				Min:       r.Min,
				Max:       r.Max,
				Units:     UnitsUSDMillions,
				Basis:     basis,
				Segment:   r.Segment,
				Text:      sentence,
				SourceURL: sourceURL,
				FY:        fy,
				FP:        fp,
			})
		}
		if r := MatchEPSRange(sentence); r != nil {
			statements = append(statements, Statement{
				Metric:    MetricEPSDiluted,
				Min:       r.Min,
				Max:       r.Max,
				Units:     UnitsEPS,
				Basis:     basis,
				Text:      sentence,
				SourceURL: sourceURL,
				FY:        fy,
				FP:        fp,
			})
		}
	}
	return statements
}

// matchRevenue tries the revenue families in priority order and keeps the
// first hit: midpoint-percentage, then explicit dollar range, then
// segment-scoped range.
func matchRevenue(sentence string) *Range {
	if r := MatchMidpointPct(sentence); r != nil {
		return r
	}
	if r := MatchSegmentRange(sentence); r != nil {
		return r
	}
	return MatchDollarRange(sentence)
}
