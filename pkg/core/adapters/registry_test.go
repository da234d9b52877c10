package adapters

import (
	"context"
	"errors"
	"testing"
	"time"

	"guidance_credibility/pkg/core/guidance"
)

type fakeFetcher struct {
	pages   map[string]string
	fetched []string
}

func (f *fakeFetcher) GetDocument(ctx context.Context, url string) ([]byte, string, error) {
	f.fetched = append(f.fetched, url)
	body, ok := f.pages[url]
	if !ok {
		return nil, "", errors.New("404")
	}
	return []byte(body), "text/html", nil
}

type stubStrategy struct {
	name       string
	statements []guidance.Statement
	err        error
	calls      int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Extract(ctx context.Context, fetcher PageFetcher) ([]guidance.Statement, error) {
	s.calls++
	return s.statements, s.err
}

func fastRegistry() *Registry {
	r := NewRegistry()
	r.delay = time.Millisecond
	return r
}

func oneStatement() []guidance.Statement {
	return []guidance.Statement{{Metric: guidance.MetricRevenue, Min: 3900, Max: 4100}}
}

func TestRegistryFirstMatchShortCircuits(t *testing.T) {
	first := &stubStrategy{name: "first", statements: oneStatement()}
	second := &stubStrategy{name: "second", statements: oneStatement()}

	r := fastRegistry()
	r.Register("NVDA", first, second)

	got := r.Extract(context.Background(), "nvda", &fakeFetcher{})
	if len(got) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(got))
	}
	if first.calls != 1 || second.calls != 0 {
		t.Errorf("expected only the first strategy to run, got %d/%d", first.calls, second.calls)
	}
}

func TestRegistryFailureFallsThrough(t *testing.T) {
	failing := &stubStrategy{name: "failing", err: errors.New("fetch failed")}
	empty := &stubStrategy{name: "empty"}
	matching := &stubStrategy{name: "matching", statements: oneStatement()}

	r := fastRegistry()
	r.Register("AMD", failing, empty, matching)

	got := r.Extract(context.Background(), "AMD", &fakeFetcher{})
	if len(got) != 1 {
		t.Fatalf("expected the third strategy to match, got %d statements", len(got))
	}
	if failing.calls != 1 || empty.calls != 1 || matching.calls != 1 {
		t.Errorf("expected every strategy to run once, got %d/%d/%d", failing.calls, empty.calls, matching.calls)
	}
}

func TestRegistrySupports(t *testing.T) {
	r := fastRegistry()
	r.Register("NVDA", &stubStrategy{name: "s"})
	if !r.Supports("NVDA") || !r.Supports("nvda") {
		t.Error("registered ticker must be supported in any case")
	}
	if r.Supports("TSLA") {
		t.Error("unregistered ticker must not be supported")
	}
}

func TestRegistryCancelledContext(t *testing.T) {
	first := &stubStrategy{name: "first"}
	second := &stubStrategy{name: "second", statements: oneStatement()}

	r := NewRegistry()
	r.delay = time.Hour // the inter-strategy pause must honor cancellation
	r.Register("NVDA", first, second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if got := r.Extract(ctx, "NVDA", &fakeFetcher{}); got != nil {
		t.Errorf("expected nil on cancellation, got %v", got)
	}
	if second.calls != 0 {
		t.Error("second strategy must not run after cancellation")
	}
}

func TestPressURLStrategy(t *testing.T) {
	page := "<html><body><p>We expect Data Center revenue of $3.9 billion to $4.1 billion for Q3 of FY2026.</p></body></html>"
	fetcher := &fakeFetcher{pages: map[string]string{"https://ir.example.com/press": page}}

	s := &PressURLStrategy{
		StrategyName: "press",
		URL:          "https://ir.example.com/press",
		Pattern:      SegmentRevenuePattern,
	}
	statements, err := s.Extract(context.Background(), fetcher)
	if err != nil {
		t.Fatal(err)
	}
	if len(statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(statements))
	}
	got := statements[0]
	if got.Segment != "Data Center" {
		t.Errorf("expected Data Center segment, got %q", got.Segment)
	}
	if got.Min != 3900 || got.Max != 4100 {
		t.Errorf("expected [3900, 4100], got [%f, %f]", got.Min, got.Max)
	}
	if got.FY == nil || *got.FY != 2026 || got.FP != "Q3" {
		t.Errorf("expected Q3 FY2026, got %v %q", got.FY, got.FP)
	}
	if got.SourceURL != "https://ir.example.com/press" {
		t.Errorf("unexpected source URL %q", got.SourceURL)
	}
}

func TestLinkCrawlStrategy(t *testing.T) {
	seed := `<html><body>
		<a href="/news/q3-outlook">Q3 outlook commentary</a>
		<a href="/news/unrelated">Board appointment</a>
		<a href="https://other.example.org/offsite">offsite outlook</a>
	</body></html>`
	outlook := "<html><body>Revenue outlook is $800 million +/- 5% for Q3.</body></html>"

	fetcher := &fakeFetcher{pages: map[string]string{
		"https://ir.example.com/news":            seed,
		"https://ir.example.com/news/q3-outlook": outlook,
	}}

	s := &LinkCrawlStrategy{
		StrategyName: "crawl",
		SeedURL:      "https://ir.example.com/news",
		Keywords:     []string{"outlook"},
		Pattern:      PercentBandPattern,
	}
	statements, err := s.Extract(context.Background(), fetcher)
	if err != nil {
		t.Fatal(err)
	}
	if len(statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(statements))
	}
	if statements[0].Min != 760 || statements[0].Max != 840 {
		t.Errorf("expected [760, 840], got [%f, %f]", statements[0].Min, statements[0].Max)
	}

	// The unrelated link fails the keyword filter and the offsite link
	// fails the same-host rule, so exactly two fetches happen.
	if len(fetcher.fetched) != 2 {
		t.Errorf("expected 2 fetches, got %v", fetcher.fetched)
	}
}
