package adapters

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"guidance_credibility/pkg/core/filings"
	"guidance_credibility/pkg/core/guidance"
)

// maxCrawledLinks caps how many discovered links a crawl strategy follows.
const maxCrawledLinks = 3

// PressURLStrategy fetches one known press/investor-relations URL.
type PressURLStrategy struct {
	StrategyName string
	URL          string
	Pattern      Pattern
}

func (s *PressURLStrategy) Name() string { return s.StrategyName }

func (s *PressURLStrategy) Extract(ctx context.Context, fetcher PageFetcher) ([]guidance.Statement, error) {
	body, _, err := fetcher.GetDocument(ctx, s.URL)
	if err != nil {
		return nil, fmt.Errorf("press page fetch: %w", err)
	}
	text := filings.HTMLBodyText(string(body))
	return s.Pattern(text, s.URL), nil
}

// LinkCrawlStrategy fetches a seed page, discovers same-domain links whose
// href or anchor text carries one of the keywords, and applies the pattern
// to each followed page until one matches.
type LinkCrawlStrategy struct {
	StrategyName string
	SeedURL      string
	Keywords     []string
	Pattern      Pattern
}

func (s *LinkCrawlStrategy) Name() string { return s.StrategyName }

func (s *LinkCrawlStrategy) Extract(ctx context.Context, fetcher PageFetcher) ([]guidance.Statement, error) {
	body, _, err := fetcher.GetDocument(ctx, s.SeedURL)
	if err != nil {
		return nil, fmt.Errorf("seed page fetch: %w", err)
	}

	links, err := discoverLinks(string(body), s.SeedURL, s.Keywords)
	if err != nil {
		return nil, err
	}

	for i, link := range links {
		if i >= maxCrawledLinks {
			break
		}
		if i > 0 {
			select {
			case <-time.After(FetchDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		pageBody, _, err := fetcher.GetDocument(ctx, link)
		if err != nil {
			continue
		}
		text := filings.HTMLBodyText(string(pageBody))
		if statements := s.Pattern(text, link); len(statements) > 0 {
			return statements, nil
		}
	}
	return nil, nil
}

// IndexPageStrategy is the last-resort step: apply the pattern to every
// link found on an index page, keyword filtering disabled.
type IndexPageStrategy struct {
	StrategyName string
	IndexURL     string
	Pattern      Pattern
}

func (s *IndexPageStrategy) Name() string { return s.StrategyName }

func (s *IndexPageStrategy) Extract(ctx context.Context, fetcher PageFetcher) ([]guidance.Statement, error) {
	crawl := &LinkCrawlStrategy{
		StrategyName: s.StrategyName,
		SeedURL:      s.IndexURL,
		Keywords:     nil,
		Pattern:      s.Pattern,
	}
	return crawl.Extract(ctx, fetcher)
}

// discoverLinks extracts same-domain links from a page, filtered by
// keywords when any are given. Keywords match against both the href and the
// anchor text, case-insensitively.
func discoverLinks(html, seedURL string, keywords []string) ([]string, error) {
	seed, err := url.Parse(seedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("seed page parse: %w", err)
	}

	seen := make(map[string]bool)
	links := make([]string, 0)
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		resolved, err := seed.Parse(href)
		if err != nil || resolved.Host != seed.Host {
			return
		}
		if len(keywords) > 0 && !matchesKeyword(strings.ToLower(href+" "+a.Text()), keywords) {
			return
		}
		u := resolved.String()
		if seen[u] || u == seedURL {
			return
		}
		seen[u] = true
		links = append(links, u)
	})
	return links, nil
}

func matchesKeyword(haystack string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(haystack, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// SegmentRevenuePattern extracts segment-scoped revenue ranges from issuer
// press pages, bypassing the keyword prefilter generic extraction uses.
func SegmentRevenuePattern(text, sourceURL string) []guidance.Statement {
	statements := make([]guidance.Statement, 0)
	for _, sentence := range guidance.SplitSentences(guidance.NormalizeText(text)) {
		r := guidance.MatchSegmentRange(sentence)
		if r == nil {
			continue
		}
		fy, fp := guidance.InferPeriod(sentence)
		statements = append(statements, guidance.Statement{
			Metric:    guidance.MetricRevenue,
			Min:       r.Min,
			Max:       r.Max,
			Units:     guidance.UnitsUSDMillions,
			Basis:     guidance.DetectBasis(sentence),
			Segment:   r.Segment,
			Text:      sentence,
			SourceURL: sourceURL,
			FY:        fy,
			FP:        fp,
		})
	}
	return statements
}

// PercentBandPattern extracts midpoint plus-or-minus percentage revenue
// bands, the other shape issuer press releases favor.
func PercentBandPattern(text, sourceURL string) []guidance.Statement {
	statements := make([]guidance.Statement, 0)
	for _, sentence := range guidance.SplitSentences(guidance.NormalizeText(text)) {
		r := guidance.MatchMidpointPct(sentence)
		if r == nil {
			continue
		}
		fy, fp := guidance.InferPeriod(sentence)
		statements = append(statements, guidance.Statement{
			Metric:    guidance.MetricRevenue,
			Min:       r.Min,
			Max:       r.Max,
			Units:     guidance.UnitsUSDMillions,
			Basis:     guidance.DetectBasis(sentence),
			Text:      sentence,
			SourceURL: sourceURL,
			FY:        fy,
			FP:        fp,
		})
	}
	return statements
}
