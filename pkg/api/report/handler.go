// Package report serves the scores listing and a rendered per-company
// credibility report.
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"guidance_credibility/pkg/core/pipeline"
	"guidance_credibility/pkg/core/store"
)

type Handler struct {
	Svc *pipeline.Service
	md  goldmark.Markdown
}

func NewHandler(svc *pipeline.Service) *Handler {
	return &Handler{
		Svc: svc,
		md:  goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

func cors(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// HandleScores lists every persisted score.
func (h *Handler) HandleScores(w http.ResponseWriter, r *http.Request) {
	cors(w)
	scores, err := h.Svc.CurrentScores(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	type row struct {
		Ticker string  `json:"ticker"`
		FY     *int    `json:"fy"`
		FP     *string `json:"fp"`
		TRA    float64 `json:"tra"`
		CVP    float64 `json:"cvp"`
		LR     float64 `json:"lr"`
		GCI    float64 `json:"gci"`
		Badge  string  `json:"badge"`
	}
	out := make([]row, 0, len(scores))
	for _, s := range scores {
		out = append(out, row{s.Ticker, s.FY, s.FP, s.TRA, s.CVP, s.LR, s.GCI, s.Badge})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// HandleCompanyReport renders ?ticker= as an HTML report.
func (h *Handler) HandleCompanyReport(w http.ResponseWriter, r *http.Request) {
	cors(w)
	ticker := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("ticker")))
	if ticker == "" {
		http.Error(w, "ticker is required", http.StatusBadRequest)
		return
	}

	data, err := h.Svc.Report(r.Context(), ticker)
	if err != nil {
		if errors.Is(err, store.ErrCompanyNotFound) {
			http.Error(w, "Unknown company: "+ticker, http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var html bytes.Buffer
	if err := h.md.Convert([]byte(renderMarkdown(data)), &html); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html.Bytes())
}

func renderMarkdown(data *pipeline.ReportData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Guidance Credibility: %s\n\n", data.Company.Ticker)
	fmt.Fprintf(&b, "%s (CIK %s)\n\n", data.Company.Name, data.Company.CIK)

	if data.Score != nil {
		fmt.Fprintf(&b, "## Score: %.0f (%s)\n\n", data.Score.GCI, data.Score.Badge)
		b.WriteString("| Component | Value |\n|---|---|\n")
		fmt.Fprintf(&b, "| Track-record accuracy | %.0f |\n", data.Score.TRA)
		fmt.Fprintf(&b, "| Consistency | %.0f |\n", data.Score.CVP)
		fmt.Fprintf(&b, "| Language risk | %.0f |\n", data.Score.LR)
		fmt.Fprintf(&b, "\n%s\n\n", data.Score.Rationale)
	} else {
		b.WriteString("## Score: not yet computed\n\n")
	}

	if len(data.Pairs) > 0 {
		b.WriteString("## Guidance vs. actuals\n\n")
		b.WriteString("| Period | Metric | Guided midpoint | Actual |\n|---|---|---|---|\n")
		for _, p := range data.Pairs {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				periodLabel(p.FY, p.FP), p.Metric, floatCell(p.GuidedMid), floatCell(p.ActualValue))
		}
		b.WriteString("\n")
	}

	if data.Language != nil {
		b.WriteString("## Language profile\n\n")
		fmt.Fprintf(&b, "Analyzed %d words (%s section): hedges %.2f/1k, negations %.2f/1k, uncertainty %.2f/1k, vague %.2f/1k.\n",
			data.Language.WordsTotal, data.Language.SourceSection,
			data.Language.HedgesPerK, data.Language.NegationsPerK,
			data.Language.UncertainPerK, data.Language.VaguePerK)
	}
	return b.String()
}

func periodLabel(fy *int, fp *string) string {
	switch {
	case fy != nil && fp != nil:
		return fmt.Sprintf("%s FY%d", *fp, *fy)
	case fy != nil:
		return fmt.Sprintf("FY%d", *fy)
	case fp != nil:
		return *fp
	default:
		return "unknown"
	}
}

func floatCell(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
