// Package guidance extracts forward-looking numeric guidance statements
// from normalized filing text using ordered heuristic pattern families.
// This is best-effort pattern matching, not a grammar-based extractor;
// coverage varies with each filer's disclosure style.
package guidance

// Metric identifies which financial measure a statement guides.
type Metric string

const (
	MetricRevenue    Metric = "revenue"
	MetricEPSDiluted Metric = "eps_diluted"
)

// Units is the canonical unit for a metric's values.
type Units string

const (
	// UnitsUSDMillions is the canonical revenue unit. Billion-scale raw
	// values are multiplied by 1000 during normalization.
	UnitsUSDMillions Units = "USD_M"
	UnitsEPS         Units = "EPS"
)

// Basis flags the accounting basis a statement was given on.
type Basis string

const (
	BasisGAAP    Basis = "GAAP"
	BasisNonGAAP Basis = "non-GAAP"
	BasisUnknown Basis = ""
)

// Statement is one extracted guidance range in canonical units.
// Min <= Max always holds after normalization.
type Statement struct {
	Metric    Metric
	Min       float64
	Max       float64
	Units     Units
	Basis     Basis
	Segment   string // optional named-segment scope
	Text      string // verbatim extracted sentence
	SourceURL string

	// Period identity inferred from the sentence, when present.
	FY *int
	FP string // "Q1".."Q4", "FY" or ""
}

// Range is the typed optional result a pattern matcher returns.
type Range struct {
	Min     float64
	Max     float64
	Segment string
}
