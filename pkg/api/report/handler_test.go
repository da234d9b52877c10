package report

import (
	"strings"
	"testing"

	"guidance_credibility/pkg/core/pipeline"
	"guidance_credibility/pkg/core/store"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }
func sptr(s string) *string   { return &s }

func TestRenderMarkdown(t *testing.T) {
	data := &pipeline.ReportData{
		Company: &store.Company{Ticker: "NVDA", CIK: "0001045810", Name: "NVIDIA CORP"},
		Pairs: []store.Pair{
			{FY: iptr(2026), FP: sptr("Q2"), Metric: "revenue", GuidedMid: fptr(45000), ActualValue: fptr(46743)},
			{FY: iptr(2026), FP: sptr("Q2"), Metric: "eps_diluted", GuidedMid: fptr(1.01), ActualValue: nil},
		},
		Language: &store.LanguageRow{WordsTotal: 1200, HedgesPerK: 4.5, SourceSection: "Prepared"},
		Score: &store.CurrentScore{
			Ticker: "NVDA",
			ScoreRow: store.ScoreRow{
				TRA: 96, CVP: 88, LR: 92, GCI: 93, Badge: "High",
				Rationale: "Computed from 2 guidance/actual pairs: accuracy 96, consistency 88, language risk 92.",
			},
		},
	}

	md := renderMarkdown(data)
	for _, want := range []string{
		"# Guidance Credibility: NVDA",
		"NVIDIA CORP (CIK 0001045810)",
		"## Score: 93 (High)",
		"| Track-record accuracy | 96 |",
		"| Q2 FY2026 | revenue | 45000.00 | 46743.00 |",
		"| Q2 FY2026 | eps_diluted | 1.01 | - |",
		"Analyzed 1200 words",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q\n%s", want, md)
		}
	}
}

func TestRenderMarkdownNoScore(t *testing.T) {
	data := &pipeline.ReportData{
		Company: &store.Company{Ticker: "AMD", CIK: "0000002488", Name: "Advanced Micro Devices"},
	}
	md := renderMarkdown(data)
	if !strings.Contains(md, "not yet computed") {
		t.Errorf("expected the missing-score notice, got\n%s", md)
	}
}

func TestPeriodLabel(t *testing.T) {
	if got := periodLabel(iptr(2026), sptr("Q2")); got != "Q2 FY2026" {
		t.Errorf("got %q", got)
	}
	if got := periodLabel(iptr(2026), nil); got != "FY2026" {
		t.Errorf("got %q", got)
	}
	if got := periodLabel(nil, sptr("FY")); got != "FY" {
		t.Errorf("got %q", got)
	}
	if got := periodLabel(nil, nil); got != "unknown" {
		t.Errorf("got %q", got)
	}
}
