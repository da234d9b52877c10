// Package pipeline wires the extraction components into the operations the
// API layer exposes: import filings, extract guidance, pull actuals,
// analyze language and compute scores.
package pipeline

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/phuslu/log"

	"guidance_credibility/pkg/core/actuals"
	"guidance_credibility/pkg/core/adapters"
	"guidance_credibility/pkg/core/filings"
	"guidance_credibility/pkg/core/guidance"
	"guidance_credibility/pkg/core/language"
	"guidance_credibility/pkg/core/score"
	"guidance_credibility/pkg/core/sec"
	"guidance_credibility/pkg/core/store"
)

// resultsExhibitSlot is the exhibit number conventionally holding the
// numeric results press release. The deferral suppression rule only applies
// to this slot.
const resultsExhibitSlot = "99.1"

// Service runs the guidance pipeline for single tickers and batches.
// Each ticker is processed sequentially end-to-end; document evaluation
// order matters because first-match-wins lets later documents be skipped.
type Service struct {
	api        *sec.API
	discoverer *filings.Discoverer
	fetcher    *filings.Fetcher
	registry   *adapters.Registry

	companyRepo  *store.CompanyRepo
	periodRepo   *store.PeriodRepo
	guidanceRepo *store.GuidanceRepo
	exhibitRepo  *store.ExhibitRepo
	languageRepo *store.LanguageRepo
	scoreRepo    *store.ScoreRepo

	aligner *actuals.Aligner

	filingForm  string
	filingLimit int
}

// NewService builds a Service over the shared pool, SEC API and issuer
// adapter registry.
func NewService(pool *pgxpool.Pool, api *sec.API, registry *adapters.Registry, cfg Config) *Service {
	companyRepo := store.NewCompanyRepo(pool)
	periodRepo := store.NewPeriodRepo(pool)
	guidanceRepo := store.NewGuidanceRepo(pool)
	actualsRepo := store.NewActualsRepo(pool)

	return &Service{
		api:          api,
		discoverer:   filings.NewDiscoverer(api.Client()),
		fetcher:      filings.NewFetcher(api.Client(), cfg.CacheDir+"/exhibits"),
		registry:     registry,
		companyRepo:  companyRepo,
		periodRepo:   periodRepo,
		guidanceRepo: guidanceRepo,
		exhibitRepo:  store.NewExhibitRepo(pool),
		languageRepo: store.NewLanguageRepo(pool),
		scoreRepo:    store.NewScoreRepo(pool),
		aligner:      actuals.NewAligner(api, periodRepo, guidanceRepo, actualsRepo),
		filingForm:   cfg.FilingForm,
		filingLimit:  cfg.FilingLimit,
	}
}

// TickerOutcome is one ticker's result in a batch operation.
type TickerOutcome struct {
	Ticker string `json:"ticker"`
	Status string `json:"status"`
	Count  int    `json:"count"`
	Error  string `json:"error,omitempty"`
}

// BatchReport collects per-ticker outcomes; one failing ticker never aborts
// the batch.
type BatchReport struct {
	RunID   string          `json:"run_id"`
	Results []TickerOutcome `json:"results"`
}

func (s *Service) runBatch(ctx context.Context, op string, tickers []string, fn func(context.Context, string) (int, error)) BatchReport {
	report := BatchReport{RunID: uuid.NewString()}
	for _, ticker := range tickers {
		count, err := fn(ctx, ticker)
		outcome := TickerOutcome{Ticker: ticker, Status: "ok", Count: count}
		if err != nil {
			outcome.Status = "error"
			outcome.Error = err.Error()
			log.Warn().Str("op", op).Str("ticker", ticker).Err(err).Msg("ticker failed")
		} else {
			log.Info().Str("op", op).Str("ticker", ticker).Int("count", count).Msg("ticker done")
		}
		report.Results = append(report.Results, outcome)
	}
	return report
}

// KnownTickers lists every company already imported, in ticker order. The
// pipeline command falls back to it when no ticker universe is configured.
func (s *Service) KnownTickers(ctx context.Context) ([]string, error) {
	companies, err := s.companyRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	tickers := make([]string, 0, len(companies))
	for _, c := range companies {
		tickers = append(tickers, c.Ticker)
	}
	return tickers, nil
}

// ResolveTicker resolves a ticker to its CIK and registrant name.
func (s *Service) ResolveTicker(ctx context.Context, ticker string) (sec.TickerInfo, error) {
	return s.api.LookupTicker(ctx, ticker)
}

// ensureCompany resolves the ticker and upserts the company row.
func (s *Service) ensureCompany(ctx context.Context, ticker string) (*store.Company, error) {
	info, err := s.api.LookupTicker(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return s.companyRepo.Ensure(ctx, ticker, info.CIK10, info.Name)
}

// ImportFilings ensures company rows exist and warms the submissions cache.
// The per-ticker count is the number of candidate filings found.
func (s *Service) ImportFilings(ctx context.Context, tickers []string) BatchReport {
	return s.runBatch(ctx, "import-filings", tickers, func(ctx context.Context, ticker string) (int, error) {
		company, err := s.ensureCompany(ctx, ticker)
		if err != nil {
			return 0, err
		}
		subs, err := s.api.GetSubmissions(ctx, company.CIK)
		if err != nil {
			return 0, err
		}
		return len(filings.CandidateFilings(subs, s.filingForm, s.filingLimit)), nil
	})
}

// ExtractGuidance runs the full extraction pipeline per ticker and returns
// the number of statements persisted for each.
func (s *Service) ExtractGuidance(ctx context.Context, tickers []string) BatchReport {
	return s.runBatch(ctx, "extract-guidance", tickers, s.extractForTicker)
}

func (s *Service) extractForTicker(ctx context.Context, ticker string) (int, error) {
	company, err := s.ensureCompany(ctx, ticker)
	if err != nil {
		return 0, err
	}
	subs, err := s.api.GetSubmissions(ctx, company.CIK)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, cand := range filings.CandidateFilings(subs, s.filingForm, s.filingLimit) {
		n, err := s.extractFromFiling(ctx, company, cand)
		if err != nil {
			// One bad filing degrades to zero statements; keep walking.
			log.Warn().Str("ticker", ticker).Str("accession", cand.AccessionNumber).Err(err).Msg("filing extraction failed")
			continue
		}
		total += n
	}

	if total == 0 && s.registry.Supports(ticker) {
		statements := s.registry.Extract(ctx, ticker, s.api.Client())
		for _, stmt := range statements {
			urls := store.PeriodURLs{SourceExhibitURL: strPtr(stmt.SourceURL)}
			if _, err := s.persistStatement(ctx, company, stmt, urls); err != nil {
				return total, err
			}
		}
		total += len(statements)
	}
	return total, nil
}

// docFetcher fetches one document's text. The walk calls it lazily so a
// first match leaves later documents unfetched.
type docFetcher func(ex filings.Exhibit) (text, cachePath string, err error)

// docVisit records one evaluated document. Statements stays empty for
// unmatched or deferred documents.
type docVisit struct {
	Exhibit    filings.Exhibit
	CachePath  string
	Deferred   bool
	Statements []guidance.Statement
}

// walkExhibits evaluates a filing's documents in discovery order.
// First-match-wins: the first document yielding any statement ends the
// filing, so later documents in the same filing go unread. This trades
// possibly-better later matches for not double counting sources. A deferral
// notice on the results slot suppresses extraction for that document only;
// the walk continues. Fetch failures skip the document.
func walkExhibits(exhibits []filings.Exhibit, fetch docFetcher) []docVisit {
	visits := make([]docVisit, 0, len(exhibits))
	for _, ex := range exhibits {
		text, cachePath, err := fetch(ex)
		if err != nil {
			log.Warn().Str("url", ex.URL).Err(err).Msg("exhibit fetch failed")
			continue
		}

		deferred := ex.Number == resultsExhibitSlot && guidance.DeferredToCall(text)
		var statements []guidance.Statement
		if !deferred {
			statements = guidance.Extract(text, ex.URL)
		}

		visits = append(visits, docVisit{
			Exhibit:    ex,
			CachePath:  cachePath,
			Deferred:   deferred,
			Statements: statements,
		})
		if len(statements) > 0 {
			break
		}
	}
	return visits
}

// extractFromFiling walks a filing's exhibits and persists guidance rows
// plus one exhibit audit row per evaluated document.
func (s *Service) extractFromFiling(ctx context.Context, company *store.Company, cand filings.Candidate) (int, error) {
	exhibits, err := s.discoverer.Discover(ctx, company.CIK, cand.AccessionNumber, cand.PrimaryDocument)
	if err != nil {
		return 0, err
	}

	viewerURL := filings.ViewerURL(cand.AccessionNumber)
	visits := walkExhibits(exhibits, func(ex filings.Exhibit) (string, string, error) {
		return s.fetcher.FetchText(ctx, ex.URL, ex.ContentType)
	})

	total := 0
	for _, v := range visits {
		periodID := int64(0)
		if len(v.Statements) > 0 {
			for _, stmt := range v.Statements {
				urls := store.PeriodURLs{
					SourceFilingURL:  strPtr(viewerURL),
					SourceExhibitURL: strPtr(v.Exhibit.URL),
				}
				id, err := s.persistStatement(ctx, company, stmt, urls)
				if err != nil {
					return 0, err
				}
				if periodID == 0 {
					periodID = id
				}
			}
			total = len(v.Statements)
		} else {
			// Audit rows for unmatched or deferred documents hang off the
			// company's unresolved period so nothing is lost.
			id, err := s.periodRepo.Ensure(ctx, store.PeriodKey{CompanyID: company.ID},
				store.PeriodURLs{SourceFilingURL: strPtr(viewerURL)})
			if err != nil {
				return 0, err
			}
			periodID = id
		}

		if err := s.exhibitRepo.Insert(ctx, store.ExhibitRow{
			PeriodID:         periodID,
			ExhibitNo:        v.Exhibit.Number,
			URL:              v.Exhibit.URL,
			ContentType:      v.Exhibit.ContentType,
			FileName:         v.Exhibit.FileName,
			TextCachePath:    v.CachePath,
			DeferredGuidance: v.Deferred,
		}); err != nil {
			return 0, err
		}
	}
	return total, nil
}

func (s *Service) persistStatement(ctx context.Context, company *store.Company, stmt guidance.Statement, urls store.PeriodURLs) (int64, error) {
	var fp *string
	if stmt.FP != "" {
		fp = strPtr(stmt.FP)
	}
	periodID, err := s.periodRepo.Ensure(ctx, store.PeriodKey{
		CompanyID: company.ID,
		FY:        stmt.FY,
		FP:        fp,
	}, urls)
	if err != nil {
		return 0, err
	}

	minVal, maxVal := stmt.Min, stmt.Max
	row := store.GuidanceRow{
		PeriodID:      periodID,
		Metric:        string(stmt.Metric),
		MinValue:      &minVal,
		MaxValue:      &maxVal,
		Units:         string(stmt.Units),
		Basis:         string(stmt.Basis),
		ExtractedText: stmt.Text,
		SourceURL:     strPtr(stmt.SourceURL),
	}
	if stmt.Segment != "" {
		row.Segment = strPtr(stmt.Segment)
	}
	if err := s.guidanceRepo.Insert(ctx, row); err != nil {
		return 0, err
	}
	return periodID, nil
}

// PullActuals aligns reported values for every ticker's guided periods and
// mirrors the recent revenue series.
func (s *Service) PullActuals(ctx context.Context, tickers []string) BatchReport {
	return s.runBatch(ctx, "pull-actuals", tickers, func(ctx context.Context, ticker string) (int, error) {
		company, err := s.companyRepo.GetByTicker(ctx, ticker)
		if err != nil {
			return 0, err
		}
		if err := s.aligner.PullForCompany(ctx, company); err != nil {
			return 0, err
		}
		return 0, nil
	})
}

// AnalyzeLanguage scores the latest filing's primary-document text as a
// transcript proxy and stores one language_metrics row. The per-ticker
// count is the analyzed word total.
func (s *Service) AnalyzeLanguage(ctx context.Context, tickers []string) BatchReport {
	return s.runBatch(ctx, "analyze-language", tickers, s.analyzeLanguageForTicker)
}

func (s *Service) analyzeLanguageForTicker(ctx context.Context, ticker string) (int, error) {
	company, err := s.ensureCompany(ctx, ticker)
	if err != nil {
		return 0, err
	}
	subs, err := s.api.GetSubmissions(ctx, company.CIK)
	if err != nil {
		return 0, err
	}

	metrics := language.Metrics{SourceSection: language.SectionPrepared}
	cands := filings.CandidateFilings(subs, s.filingForm, 1)
	if len(cands) > 0 {
		url := filings.PrimaryDocumentURL(company.CIK, cands[0].AccessionNumber, cands[0].PrimaryDocument)
		text, _, err := s.fetcher.FetchText(ctx, url, "text/html")
		if err != nil {
			log.Warn().Str("ticker", ticker).Err(err).Msg("language source fetch failed, storing zero metrics")
		} else {
			metrics = language.Analyze(text, language.SectionPrepared)
		}
	}

	periodID, err := s.periodRepo.Ensure(ctx, store.PeriodKey{
		CompanyID: company.ID,
		FP:        strPtr("FY"),
	}, store.PeriodURLs{})
	if err != nil {
		return 0, err
	}
	err = s.languageRepo.Insert(ctx, store.LanguageRow{
		PeriodID:      periodID,
		WordsTotal:    metrics.WordsTotal,
		HedgesPerK:    metrics.HedgesPerK,
		NegationsPerK: metrics.NegationsPerK,
		UncertainPerK: metrics.UncertainPerK,
		VaguePerK:     metrics.VaguePerK,
		SourceSection: metrics.SourceSection,
	})
	if err != nil {
		return 0, err
	}
	return metrics.WordsTotal, nil
}

// ScoreSummary is one company's computed score.
type ScoreSummary struct {
	Ticker string  `json:"ticker"`
	FY     *int    `json:"fy"`
	FP     *string `json:"fp"`
	TRA    float64 `json:"tra"`
	CVP    float64 `json:"cvp"`
	LR     float64 `json:"lr"`
	GCI    float64 `json:"gci"`
	Badge  string  `json:"badge"`
}

// ComputeScores recomputes and persists scores for every company holding at
// least one guidance+actual pair, and returns the computed rows.
func (s *Service) ComputeScores(ctx context.Context) ([]ScoreSummary, error) {
	companies, err := s.companyRepo.ListWithPairs(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]ScoreSummary, 0, len(companies))
	for _, company := range companies {
		pairs, err := s.guidanceRepo.PairsForCompany(ctx, company.ID)
		if err != nil {
			return nil, err
		}
		if len(pairs) == 0 {
			continue
		}

		scorePairs := make([]score.Pair, 0, len(pairs))
		for _, p := range pairs {
			scorePairs = append(scorePairs, score.Pair{
				FY:          p.FY,
				FP:          fpString(p.FP),
				GuidedMid:   p.GuidedMid,
				ActualValue: p.ActualValue,
			})
		}

		var lang *score.Language
		langRow, err := s.languageRepo.LatestForCompany(ctx, company.ID)
		if err != nil {
			return nil, err
		}
		if langRow != nil {
			lang = &score.Language{HedgesPerK: langRow.HedgesPerK, UncertainPerK: langRow.UncertainPerK}
		}

		result := score.Compute(scorePairs, lang)

		// The score lands on the period of the most recent pair.
		mostRecent := pairs[0]
		if err := s.scoreRepo.Upsert(ctx, store.ScoreRow{
			PeriodID:  mostRecent.PeriodID,
			TRA:       result.TRA,
			CVP:       result.CVP,
			LR:        result.LR,
			GCI:       result.GCI,
			Badge:     result.Badge,
			Rationale: score.Rationale(result, len(scorePairs)),
		}); err != nil {
			return nil, err
		}

		summaries = append(summaries, ScoreSummary{
			Ticker: company.Ticker,
			FY:     mostRecent.FY,
			FP:     mostRecent.FP,
			TRA:    result.TRA,
			CVP:    result.CVP,
			LR:     result.LR,
			GCI:    result.GCI,
			Badge:  result.Badge,
		})
	}
	return summaries, nil
}

// CurrentScores lists every persisted score with its ticker.
func (s *Service) CurrentScores(ctx context.Context) ([]store.CurrentScore, error) {
	return s.scoreRepo.ListCurrent(ctx)
}

// Diagnostics returns per-table row counts.
func (s *Service) Diagnostics(ctx context.Context) (map[string]int64, error) {
	return s.scoreRepo.TableCounts(ctx)
}

// ReportData gathers everything the company report renders.
type ReportData struct {
	Company  *store.Company
	Pairs    []store.Pair
	Language *store.LanguageRow
	Score    *store.CurrentScore
}

// Report assembles the report inputs for one ticker. Score and Language stay
// nil when the pipeline has not produced them yet.
func (s *Service) Report(ctx context.Context, ticker string) (*ReportData, error) {
	company, err := s.companyRepo.GetByTicker(ctx, ticker)
	if err != nil {
		return nil, err
	}
	pairs, err := s.guidanceRepo.PairsForCompany(ctx, company.ID)
	if err != nil {
		return nil, err
	}
	langRow, err := s.languageRepo.LatestForCompany(ctx, company.ID)
	if err != nil {
		return nil, err
	}

	data := &ReportData{Company: company, Pairs: pairs, Language: langRow}
	scores, err := s.scoreRepo.ListCurrent(ctx)
	if err != nil {
		return nil, err
	}
	for i := range scores {
		if scores[i].Ticker == company.Ticker {
			data.Score = &scores[i]
			break
		}
	}
	return data, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func fpString(fp *string) string {
	if fp == nil {
		return ""
	}
	return *fp
}
