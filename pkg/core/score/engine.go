// Package score fuses guidance accuracy, error volatility and language
// risk into the composite guidance credibility index (GCI).
package score

import (
	"fmt"
	"math"
)

// Weights of the composite index.
const (
	weightTRA = 0.5
	weightCVP = 0.2
	weightLR  = 0.3

	// errCap bounds a single pair's relative error contribution.
	errCap = 0.5

	// dispersionFloor is the stddev of relative errors at which the
	// consistency sub-score reaches zero.
	dispersionFloor = 0.1

	// recentPeriods restricts scoring to the most recent period groups in
	// the caller-provided order.
	recentPeriods = 4
)

// Badge tiers.
const (
	BadgeHigh   = "High"
	BadgeMedium = "Medium"
	BadgeLow    = "Low"
)

// Pair is one guidance statement joined with its aligned actual, most
// recent first. Nil values mean the side is missing.
type Pair struct {
	FY          *int
	FP          string
	GuidedMid   *float64
	ActualValue *float64
}

// Language carries the inputs of the language-risk sub-score.
type Language struct {
	HedgesPerK    float64
	UncertainPerK float64
}

// Result is a computed score. Sub-scores and the composite are
// integer-rounded, matching what gets persisted.
type Result struct {
	TRA   float64
	CVP   float64
	LR    float64
	GCI   float64
	Badge string
}

// Compute derives TRA/CVP/LR/GCI from persisted pairs and the latest
// language metrics. It is a pure function: identical inputs always yield
// identical results.
func Compute(pairs []Pair, lang *Language) Result {
	// Group per-pair errors by (fy, fp), preserving first-seen order so
	// the recent-period slice follows the input ordering.
	type group struct {
		key    string
		errors []float64
	}
	groups := make([]*group, 0)
	byKey := make(map[string]*group)

	for _, p := range pairs {
		if p.GuidedMid == nil || p.ActualValue == nil || *p.GuidedMid == 0 {
			continue
		}
		e := clamp(math.Abs((*p.ActualValue-*p.GuidedMid) / *p.GuidedMid), 0, errCap)
		key := periodKey(p.FY, p.FP)
		g, ok := byKey[key]
		if !ok {
			g = &group{key: key}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.errors = append(g.errors, e)
	}

	if len(groups) > recentPeriods {
		groups = groups[:recentPeriods]
	}
	allErrors := make([]float64, 0)
	for _, g := range groups {
		allErrors = append(allErrors, g.errors...)
	}

	tra := 0.0
	if len(allErrors) > 0 {
		tra = 100 * (1 - mean(allErrors))
	}
	cvp := 100 * (1 - math.Min(stddev(allErrors)/dispersionFloor, 1))

	var h, u float64
	if lang != nil {
		h, u = lang.HedgesPerK, lang.UncertainPerK
	}
	lr := clamp(100-(0.5*h+1.0*u), 0, 100)

	gci := weightTRA*tra + weightCVP*cvp + weightLR*lr

	return Result{
		TRA:   math.Round(tra),
		CVP:   math.Round(cvp),
		LR:    math.Round(lr),
		GCI:   math.Round(gci),
		Badge: BadgeFor(gci),
	}
}

// BadgeFor maps a composite index to its categorical tier.
func BadgeFor(gci float64) string {
	switch {
	case gci >= 80:
		return BadgeHigh
	case gci >= 60:
		return BadgeMedium
	default:
		return BadgeLow
	}
}

// Rationale renders the one-line explanation persisted with a score.
func Rationale(r Result, pairCount int) string {
	return fmt.Sprintf(
		"Computed from %d guidance/actual pairs: accuracy %.0f, consistency %.0f, language risk %.0f.",
		pairCount, r.TRA, r.CVP, r.LR,
	)
}

func periodKey(fy *int, fp string) string {
	y := "NA"
	if fy != nil {
		y = fmt.Sprintf("%d", *fy)
	}
	p := fp
	if p == "" {
		p = "NA"
	}
	return y + "-" + p
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev is the population standard deviation.
func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	variance := 0.0
	for _, v := range values {
		variance += (v - m) * (v - m)
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}
