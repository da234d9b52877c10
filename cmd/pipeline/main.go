// Command pipeline runs the full guidance pipeline once for the configured
// ticker universe: import, extract, actuals, language, scores.
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/phuslu/log"

	"guidance_credibility/pkg/core/adapters"
	"guidance_credibility/pkg/core/pipeline"
	"guidance_credibility/pkg/core/sec"
	"guidance_credibility/pkg/core/store"
)

func main() {
	godotenv.Load()

	cfgPath := flag.String("config", filepath.Join("config", "pipeline.yaml"), "pipeline config file")
	tickersArg := flag.String("tickers", "", "comma-separated tickers, overrides config")
	flag.Parse()

	cfg, err := pipeline.LoadConfig(*cfgPath)
	if err != nil {
		log.Warn().Str("path", *cfgPath).Err(err).Msg("config load failed, using defaults")
		cfg = pipeline.DefaultConfig()
	}

	tickers := cfg.Tickers
	if *tickersArg != "" {
		tickers = nil
		for _, t := range strings.Split(*tickersArg, ",") {
			t = strings.ToUpper(strings.TrimSpace(t))
			if t != "" {
				tickers = append(tickers, t)
			}
		}
	}
	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.InitDB(initCtx); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("database init failed")
	}
	cancel()
	defer store.Close()

	client := sec.NewClient()
	cache := sec.NewFileCache(filepath.Join(cfg.CacheDir, "sec"), sec.DefaultCacheTTL)
	api := sec.NewAPI(client, cache)
	svc := pipeline.NewService(store.GetPool(), api, adapters.DefaultRegistry(), cfg)

	ctx := context.Background()
	if len(tickers) == 0 {
		tickers, err = svc.KnownTickers(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("listing imported companies failed")
		}
		if len(tickers) == 0 {
			log.Fatal().Msg("no tickers configured and none imported yet")
		}
	}
	failed := false

	for _, stage := range []struct {
		name string
		run  func() pipeline.BatchReport
	}{
		{"import-filings", func() pipeline.BatchReport { return svc.ImportFilings(ctx, tickers) }},
		{"extract-guidance", func() pipeline.BatchReport { return svc.ExtractGuidance(ctx, tickers) }},
		{"pull-actuals", func() pipeline.BatchReport { return svc.PullActuals(ctx, tickers) }},
		{"analyze-language", func() pipeline.BatchReport { return svc.AnalyzeLanguage(ctx, tickers) }},
	} {
		report := stage.run()
		for _, res := range report.Results {
			if res.Status != "ok" {
				failed = true
			}
		}
		log.Info().Str("stage", stage.name).Str("run_id", report.RunID).Int("tickers", len(report.Results)).Msg("stage complete")
	}

	summaries, err := svc.ComputeScores(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("score computation failed")
	}
	for _, s := range summaries {
		log.Info().Str("ticker", s.Ticker).Float64("gci", s.GCI).Str("badge", s.Badge).Msg("score")
	}

	if failed {
		os.Exit(1)
	}
}
