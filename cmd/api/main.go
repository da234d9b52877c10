package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/phuslu/log"

	"guidance_credibility/pkg/api/admin"
	"guidance_credibility/pkg/api/report"
	"guidance_credibility/pkg/core/adapters"
	"guidance_credibility/pkg/core/pipeline"
	"guidance_credibility/pkg/core/sec"
	"guidance_credibility/pkg/core/store"
)

func main() {
	godotenv.Load()

	cfgPath := os.Getenv("PIPELINE_CONFIG")
	if cfgPath == "" {
		cfgPath = filepath.Join("config", "pipeline.yaml")
	}
	cfg, err := pipeline.LoadConfig(cfgPath)
	if err != nil {
		log.Warn().Str("path", cfgPath).Err(err).Msg("config load failed, using defaults")
		cfg = pipeline.DefaultConfig()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.InitDB(ctx); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("database init failed")
	}
	cancel()
	defer store.Close()

	client := sec.NewClient()
	cache := sec.NewFileCache(filepath.Join(cfg.CacheDir, "sec"), sec.DefaultCacheTTL)
	api := sec.NewAPI(client, cache)
	svc := pipeline.NewService(store.GetPool(), api, adapters.DefaultRegistry(), cfg)

	adminHandler := admin.NewHandler(svc)
	http.HandleFunc("/api/admin/import-filings", adminHandler.HandleImportFilings)
	http.HandleFunc("/api/admin/extract-guidance", adminHandler.HandleExtractGuidance)
	http.HandleFunc("/api/admin/pull-actuals", adminHandler.HandlePullActuals)
	http.HandleFunc("/api/admin/analyze-language", adminHandler.HandleAnalyzeLanguage)
	http.HandleFunc("/api/admin/compute-scores", adminHandler.HandleComputeScores)
	http.HandleFunc("/api/admin/resolve", adminHandler.HandleResolve)
	http.HandleFunc("/api/admin/diagnostics", adminHandler.HandleDiagnostics)

	reportHandler := report.NewHandler(svc)
	http.HandleFunc("/api/scores", reportHandler.HandleScores)
	http.HandleFunc("/api/report", reportHandler.HandleCompanyReport)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	log.Info().Str("addr", addr).Msg("API server starting")
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
