package score

import (
	"reflect"
	"testing"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func TestComputeSinglePair(t *testing.T) {
	// guided 100, actual 102 => e = 0.02 => TRA = 100*(1-0.02) = 98.
	// One error => stddev 0 => CVP = 100. No language => LR = 100.
	// GCI = 0.5*98 + 0.2*100 + 0.3*100 = 99 => High.
	pairs := []Pair{{FY: iptr(2025), FP: "Q3", GuidedMid: fptr(100), ActualValue: fptr(102)}}
	r := Compute(pairs, nil)

	if r.TRA != 98 {
		t.Errorf("expected TRA 98, got %f", r.TRA)
	}
	if r.CVP != 100 {
		t.Errorf("expected CVP 100, got %f", r.CVP)
	}
	if r.LR != 100 {
		t.Errorf("expected LR 100, got %f", r.LR)
	}
	if r.GCI != 99 {
		t.Errorf("expected GCI 99, got %f", r.GCI)
	}
	if r.Badge != BadgeHigh {
		t.Errorf("expected High badge, got %s", r.Badge)
	}
}

func TestComputeErrorCap(t *testing.T) {
	// guided 100, actual 300 => raw e = 2.0, capped at 0.5 => TRA = 50.
	pairs := []Pair{{FY: iptr(2025), FP: "Q1", GuidedMid: fptr(100), ActualValue: fptr(300)}}
	r := Compute(pairs, nil)
	if r.TRA != 50 {
		t.Errorf("expected capped TRA 50, got %f", r.TRA)
	}
}

func TestComputeNoPairs(t *testing.T) {
	r := Compute(nil, nil)
	if r.TRA != 0 {
		t.Errorf("expected TRA 0 with no pairs, got %f", r.TRA)
	}
	if r.CVP != 100 {
		t.Errorf("expected CVP 100 with no dispersion, got %f", r.CVP)
	}
	// GCI = 0.5*0 + 0.2*100 + 0.3*100 = 50 => Low.
	if r.GCI != 50 || r.Badge != BadgeLow {
		t.Errorf("expected GCI 50 Low, got %f %s", r.GCI, r.Badge)
	}
}

func TestComputeSkipsIncompletePairs(t *testing.T) {
	pairs := []Pair{
		{FY: iptr(2025), FP: "Q1", GuidedMid: fptr(100), ActualValue: nil},
		{FY: iptr(2025), FP: "Q2", GuidedMid: nil, ActualValue: fptr(90)},
		{FY: iptr(2025), FP: "Q3", GuidedMid: fptr(0), ActualValue: fptr(90)},
	}
	r := Compute(pairs, nil)
	if r.TRA != 0 {
		t.Errorf("expected TRA 0 when no pair is usable, got %f", r.TRA)
	}
}

func TestComputeRecentPeriodWindow(t *testing.T) {
	// Five period groups, most recent first. The fifth carries a huge miss
	// that must not affect the score.
	recent := []Pair{
		{FY: iptr(2025), FP: "Q4", GuidedMid: fptr(100), ActualValue: fptr(102)},
		{FY: iptr(2025), FP: "Q3", GuidedMid: fptr(100), ActualValue: fptr(102)},
		{FY: iptr(2025), FP: "Q2", GuidedMid: fptr(100), ActualValue: fptr(102)},
		{FY: iptr(2025), FP: "Q1", GuidedMid: fptr(100), ActualValue: fptr(102)},
	}
	withOld := append(append([]Pair{}, recent...),
		Pair{FY: iptr(2024), FP: "Q4", GuidedMid: fptr(100), ActualValue: fptr(500)})

	if got, want := Compute(withOld, nil), Compute(recent, nil); !reflect.DeepEqual(got, want) {
		t.Errorf("fifth period leaked into the window: %+v vs %+v", got, want)
	}
}

func TestComputeGroupsByPeriod(t *testing.T) {
	// Two metrics in the same quarter form one group, so a fifth pair in a
	// fourth distinct quarter still counts.
	pairs := []Pair{
		{FY: iptr(2025), FP: "Q4", GuidedMid: fptr(100), ActualValue: fptr(100)},
		{FY: iptr(2025), FP: "Q4", GuidedMid: fptr(1.20), ActualValue: fptr(1.20)},
		{FY: iptr(2025), FP: "Q3", GuidedMid: fptr(100), ActualValue: fptr(100)},
		{FY: iptr(2025), FP: "Q2", GuidedMid: fptr(100), ActualValue: fptr(100)},
		{FY: iptr(2025), FP: "Q1", GuidedMid: fptr(100), ActualValue: fptr(100)},
	}
	r := Compute(pairs, nil)
	if r.TRA != 100 {
		t.Errorf("expected TRA 100, got %f", r.TRA)
	}
}

func TestComputeLanguageRisk(t *testing.T) {
	// LR = clamp(100 - (0.5*10 + 1.0*20)) = 75.
	r := Compute(nil, &Language{HedgesPerK: 10, UncertainPerK: 20})
	if r.LR != 75 {
		t.Errorf("expected LR 75, got %f", r.LR)
	}

	// Heavy hedging clamps at zero.
	r = Compute(nil, &Language{HedgesPerK: 300, UncertainPerK: 100})
	if r.LR != 0 {
		t.Errorf("expected LR 0, got %f", r.LR)
	}
}

func TestComputeIsPure(t *testing.T) {
	pairs := []Pair{
		{FY: iptr(2025), FP: "Q3", GuidedMid: fptr(5200), ActualValue: fptr(5100)},
		{FY: iptr(2025), FP: "Q2", GuidedMid: fptr(5000), ActualValue: fptr(5050)},
	}
	lang := &Language{HedgesPerK: 4, UncertainPerK: 2}
	first := Compute(pairs, lang)
	second := Compute(pairs, lang)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical inputs produced different results: %+v vs %+v", first, second)
	}
}

func TestBadgeFor(t *testing.T) {
	if BadgeFor(82) != BadgeHigh {
		t.Error("82 should badge High")
	}
	if BadgeFor(80) != BadgeHigh {
		t.Error("80 should badge High")
	}
	if BadgeFor(65) != BadgeMedium {
		t.Error("65 should badge Medium")
	}
	if BadgeFor(60) != BadgeMedium {
		t.Error("60 should badge Medium")
	}
	if BadgeFor(40) != BadgeLow {
		t.Error("40 should badge Low")
	}
	if BadgeFor(59.9) != BadgeLow {
		t.Error("59.9 should badge Low")
	}
}

func TestRationale(t *testing.T) {
	r := Result{TRA: 98, CVP: 100, LR: 75}
	got := Rationale(r, 3)
	want := "Computed from 3 guidance/actual pairs: accuracy 98, consistency 100, language risk 75."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
