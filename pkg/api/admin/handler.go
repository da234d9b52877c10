// Package admin exposes the pipeline operations over HTTP. Every endpoint
// is a batch: one failing ticker is reported in the response, never a 500.
package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"guidance_credibility/pkg/core/pipeline"
	"guidance_credibility/pkg/core/sec"
)

type Handler struct {
	Svc *pipeline.Service
}

func NewHandler(svc *pipeline.Service) *Handler {
	return &Handler{Svc: svc}
}

type BatchRequest struct {
	Tickers []string `json:"tickers"`
}

func cors(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// decodeBatch reads and normalizes the ticker list. Tickers are stored
// upper-case so request casing never splits a company in two.
func decodeBatch(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return nil, false
	}
	if len(req.Tickers) == 0 {
		http.Error(w, "tickers is required", http.StatusBadRequest)
		return nil, false
	}
	tickers := make([]string, 0, len(req.Tickers))
	for _, t := range req.Tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			tickers = append(tickers, t)
		}
	}
	return tickers, true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) batch(w http.ResponseWriter, r *http.Request, run func([]string) pipeline.BatchReport) {
	cors(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	tickers, ok := decodeBatch(w, r)
	if !ok {
		return
	}
	writeJSON(w, run(tickers))
}

func (h *Handler) HandleImportFilings(w http.ResponseWriter, r *http.Request) {
	h.batch(w, r, func(tickers []string) pipeline.BatchReport {
		return h.Svc.ImportFilings(r.Context(), tickers)
	})
}

func (h *Handler) HandleExtractGuidance(w http.ResponseWriter, r *http.Request) {
	h.batch(w, r, func(tickers []string) pipeline.BatchReport {
		return h.Svc.ExtractGuidance(r.Context(), tickers)
	})
}

func (h *Handler) HandlePullActuals(w http.ResponseWriter, r *http.Request) {
	h.batch(w, r, func(tickers []string) pipeline.BatchReport {
		return h.Svc.PullActuals(r.Context(), tickers)
	})
}

func (h *Handler) HandleAnalyzeLanguage(w http.ResponseWriter, r *http.Request) {
	h.batch(w, r, func(tickers []string) pipeline.BatchReport {
		return h.Svc.AnalyzeLanguage(r.Context(), tickers)
	})
}

func (h *Handler) HandleComputeScores(w http.ResponseWriter, r *http.Request) {
	cors(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	summaries, err := h.Svc.ComputeScores(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, summaries)
}

// HandleResolve resolves ?ticker= to its CIK and registrant name.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	cors(w)
	ticker := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("ticker")))
	if ticker == "" {
		http.Error(w, "ticker is required", http.StatusBadRequest)
		return
	}
	info, err := h.Svc.ResolveTicker(r.Context(), ticker)
	if err != nil {
		if errors.Is(err, sec.ErrNotFound) {
			http.Error(w, "Ticker not found: "+ticker, http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, map[string]string{
		"ticker": ticker,
		"cik":    info.CIK10,
		"name":   info.Name,
	})
}

// HandleDiagnostics reports row counts per table so operators can see at a
// glance which pipeline stage has not run yet.
func (h *Handler) HandleDiagnostics(w http.ResponseWriter, r *http.Request) {
	cors(w)
	counts, err := h.Svc.Diagnostics(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, counts)
}
