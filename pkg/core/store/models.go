package store

// Company is one tracked issuer. Ticker is the unique handle; the CIK never
// changes once set, while the display name may be refreshed.
type Company struct {
	ID     int64
	Ticker string
	CIK    string
	Name   string
}

// PeriodKey is the NULL-safe identity of a fiscal period. Two keys are the
// same period when every field matches, with NULL equal to NULL.
type PeriodKey struct {
	CompanyID int64
	FY        *int
	FP        *string
	PeriodEnd *string
}

// PeriodURLs are the source-link fields of a period. They are backfilled
// only while empty and never overwritten once populated.
type PeriodURLs struct {
	SourceFilingURL  *string
	SourceExhibitURL *string
	TranscriptURL    *string
}

// Period is one persisted fiscal period.
type Period struct {
	ID int64
	PeriodKey
	PeriodURLs
}

// GuidanceRow is one persisted guidance statement (append-only).
type GuidanceRow struct {
	ID            int64
	PeriodID      int64
	Metric        string
	MinValue      *float64
	MaxValue      *float64
	Units         string
	Basis         string
	ExtractedText string
	Segment       *string
	SourceURL     *string
}

// ActualRow is the single reported value for a (period, metric).
type ActualRow struct {
	PeriodID     int64
	Metric       string
	ActualValue  *float64
	Units        string
	SourceTag    string
	SourceAPIURL string
}

// ExhibitRow is one audit-trail entry for a processed exhibit document.
type ExhibitRow struct {
	PeriodID         int64
	ExhibitNo        string
	URL              string
	ContentType      string
	FileName         string
	TextCachePath    string
	DeferredGuidance bool
}

// LanguageRow is one language-analysis run for a period.
type LanguageRow struct {
	PeriodID      int64
	WordsTotal    int
	HedgesPerK    float64
	NegationsPerK float64
	UncertainPerK float64
	VaguePerK     float64
	SourceSection string
}

// ScoreRow is the current credibility score for a period.
type ScoreRow struct {
	PeriodID  int64
	TRA       float64
	CVP       float64
	LR        float64
	GCI       float64
	Badge     string
	Rationale string
}

// GuidedMetric identifies one guided (period, metric) needing actuals.
type GuidedMetric struct {
	PeriodID int64
	FY       *int
	FP       *string
	Metric   string
}

// Pair joins a guidance statement with its aligned actual for scoring.
// ActualValue is nil when no actual has been stored yet.
type Pair struct {
	PeriodID    int64
	FY          *int
	FP          *string
	Metric      string
	GuidedMid   *float64
	ActualValue *float64
}
