package adapters

// DefaultRegistry returns the registry of shipped issuer adapters.
// Each issuer gets the same three-step shape: known press URL first, then a
// keyword-filtered crawl of the newsroom, then a bare index-page sweep.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	crawlKeywords := []string{"outlook", "transcript", "remarks", "guidance"}

	r.Register("NVDA",
		&PressURLStrategy{
			StrategyName: "nvda-press",
			URL:          "https://nvidianews.nvidia.com/news/latest-financial-results",
			Pattern:      SegmentRevenuePattern,
		},
		&LinkCrawlStrategy{
			StrategyName: "nvda-newsroom-crawl",
			SeedURL:      "https://nvidianews.nvidia.com/news",
			Keywords:     crawlKeywords,
			Pattern:      SegmentRevenuePattern,
		},
		&IndexPageStrategy{
			StrategyName: "nvda-index",
			IndexURL:     "https://investor.nvidia.com/financial-info/financial-reports/default.aspx",
			Pattern:      SegmentRevenuePattern,
		},
	)

	r.Register("AMD",
		&PressURLStrategy{
			StrategyName: "amd-press",
			URL:          "https://ir.amd.com/news-events/press-releases",
			Pattern:      PercentBandPattern,
		},
		&LinkCrawlStrategy{
			StrategyName: "amd-ir-crawl",
			SeedURL:      "https://ir.amd.com/news-events",
			Keywords:     crawlKeywords,
			Pattern:      PercentBandPattern,
		},
		&IndexPageStrategy{
			StrategyName: "amd-index",
			IndexURL:     "https://ir.amd.com",
			Pattern:      PercentBandPattern,
		},
	)

	return r
}
