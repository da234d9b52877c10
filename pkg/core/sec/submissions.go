package sec

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/phuslu/log"
)

// =============================================================================
// SEC EDGAR DATA TYPES
// =============================================================================

// Submissions represents the top-level company submission response.
type Submissions struct {
	CIK        string   `json:"cik"`
	EntityType string   `json:"entityType"`
	Name       string   `json:"name"`
	Tickers    []string `json:"tickers"`
	Filings    Filings  `json:"filings"`
}

// Filings contains the recent filing list.
type Filings struct {
	Recent RecentFilings `json:"recent"`
}

// RecentFilings holds parallel arrays of filing attributes. Each index
// across the arrays describes one filing.
type RecentFilings struct {
	AccessionNumber []string `json:"accessionNumber"` // e.g. "0000320193-24-000069"
	FilingDate      []string `json:"filingDate"`      // e.g. "2024-05-03"
	ReportDate      []string `json:"reportDate"`
	Form            []string `json:"form"` // "10-K", "10-Q", "8-K"
	PrimaryDocument []string `json:"primaryDocument"`
}

// CompanyConcept is the us-gaap concept response: unit-keyed value series.
type CompanyConcept struct {
	CIK   json.Number               `json:"cik"`
	Tag   string                    `json:"tag"`
	Label string                    `json:"label"`
	Units map[string][]ConceptValue `json:"units"`
}

// ConceptValue is one reported value in a concept series.
type ConceptValue struct {
	Val   *float64 `json:"val"`
	FY    *int     `json:"fy"`
	FP    string   `json:"fp"` // "Q1".."Q4" or "FY"
	End   string   `json:"end"`
	Form  string   `json:"form"`
	Filed string   `json:"filed"`
}

// =============================================================================
// API: cached, throttled access to the data.sec.gov endpoints
// =============================================================================

// API combines the throttled client with the read-through response cache.
type API struct {
	client *Client
	cache  *FileCache

	tickerMu    sync.Mutex
	tickerCache map[string]TickerInfo
}

// TickerInfo is one entry of the SEC ticker directory.
type TickerInfo struct {
	CIK10 string
	Name  string
}

// NewAPI creates an API over the given client and cache.
func NewAPI(client *Client, cache *FileCache) *API {
	return &API{client: client, cache: cache}
}

// Client exposes the underlying throttled client for document fetches.
func (a *API) Client() *Client {
	return a.client
}

// getCachedJSON implements the read-through + stale-fallback policy shared
// by the JSON endpoints: fresh cache wins, then live fetch, then any cache
// entry regardless of age.
func (a *API) getCachedJSON(ctx context.Context, key, url string) ([]byte, error) {
	if data, ok := a.cache.Get(key); ok {
		return data, nil
	}
	body, err := a.client.GetJSON(ctx, url)
	if err != nil {
		if stale, ok := a.cache.GetStale(key); ok {
			log.Warn().Str("url", url).Err(err).Msg("live fetch failed, serving stale cache")
			return stale, nil
		}
		return nil, err
	}
	if err := a.cache.Put(key, body); err != nil {
		log.Warn().Str("key", key).Err(err).Msg("cache write failed")
	}
	return body, nil
}

// GetSubmissions fetches the filing index for a zero-padded 10-digit CIK.
func (a *API) GetSubmissions(ctx context.Context, cik10 string) (*Submissions, error) {
	cik10 = PadCIK(cik10)
	key := fmt.Sprintf("submissions-%s.json", cik10)
	url := fmt.Sprintf(SubmissionsURL, cik10)

	body, err := a.getCachedJSON(ctx, key, url)
	if err != nil {
		return nil, fmt.Errorf("submissions for CIK %s: %w", cik10, err)
	}
	var subs Submissions
	if err := json.Unmarshal(body, &subs); err != nil {
		return nil, fmt.Errorf("failed to parse submissions JSON: %w", err)
	}
	return &subs, nil
}

// GetCompanyConcept fetches the reported series for one us-gaap tag.
func (a *API) GetCompanyConcept(ctx context.Context, cik10, tag string) (*CompanyConcept, error) {
	cik10 = PadCIK(cik10)
	key := fmt.Sprintf("concept-%s-%s.json", cik10, tag)
	url := ConceptURL(cik10, tag)

	body, err := a.getCachedJSON(ctx, key, url)
	if err != nil {
		return nil, fmt.Errorf("concept %s for CIK %s: %w", tag, cik10, err)
	}
	var concept CompanyConcept
	if err := json.Unmarshal(body, &concept); err != nil {
		return nil, fmt.Errorf("failed to parse concept JSON: %w", err)
	}
	return &concept, nil
}

// LookupTicker resolves a ticker symbol to its CIK and registrant name using
// the SEC company_tickers.json directory. The directory is cached for 7 days.
func (a *API) LookupTicker(ctx context.Context, ticker string) (TickerInfo, error) {
	normalized := strings.ToUpper(strings.TrimSpace(ticker))

	a.tickerMu.Lock()
	defer a.tickerMu.Unlock()

	if a.tickerCache == nil {
		if err := a.loadTickerDirectory(ctx); err != nil {
			return TickerInfo{}, err
		}
	}
	info, ok := a.tickerCache[normalized]
	if !ok {
		return TickerInfo{}, fmt.Errorf("ticker %s: %w", ticker, ErrNotFound)
	}
	return info, nil
}

func (a *API) loadTickerDirectory(ctx context.Context) error {
	const key = "company_tickers.json"
	dirCache := NewFileCache(a.cache.Dir(), 7*24*time.Hour)

	body, ok := dirCache.Get(key)
	if !ok {
		var err error
		body, err = a.client.GetJSON(ctx, CompanyTickersURL)
		if err != nil {
			if stale, okStale := dirCache.GetStale(key); okStale {
				body = stale
			} else {
				return fmt.Errorf("failed to fetch company tickers: %w", err)
			}
		} else {
			dirCache.Put(key, body)
		}
	}

	// Format: {"0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."}, ...}
	type tickerEntry struct {
		CIK    int    `json:"cik_str"`
		Ticker string `json:"ticker"`
		Title  string `json:"title"`
	}
	var entries map[string]tickerEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return fmt.Errorf("failed to parse ticker directory: %w", err)
	}

	a.tickerCache = make(map[string]TickerInfo, len(entries))
	for _, e := range entries {
		a.tickerCache[strings.ToUpper(e.Ticker)] = TickerInfo{
			CIK10: fmt.Sprintf("%010d", e.CIK),
			Name:  e.Title,
		}
	}
	log.Info().Int("tickers", len(a.tickerCache)).Msg("loaded SEC ticker directory")
	return nil
}

// PadCIK zero-pads a CIK to the 10 digits the data APIs expect.
func PadCIK(cik string) string {
	return fmt.Sprintf("%010s", strings.TrimLeft(cik, "0"))
}

// ConceptURL builds the companyconcept endpoint URL for a tag.
func ConceptURL(cik10, tag string) string {
	return fmt.Sprintf(CompanyConceptURL, PadCIK(cik10), tag)
}
