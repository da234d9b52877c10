package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	content := "tickers:\n  - NVDA\n  - AMD\ncache_dir: /tmp/guidance-cache\nfiling_limit: 4\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Tickers) != 2 || cfg.Tickers[0] != "NVDA" {
		t.Errorf("unexpected tickers %v", cfg.Tickers)
	}
	if cfg.CacheDir != "/tmp/guidance-cache" {
		t.Errorf("unexpected cache dir %q", cfg.CacheDir)
	}
	if cfg.FilingLimit != 4 {
		t.Errorf("unexpected filing limit %d", cfg.FilingLimit)
	}
	// Unset fields fall back to defaults.
	if cfg.FilingForm != "8-K" {
		t.Errorf("expected default form 8-K, got %q", cfg.FilingForm)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.FilingLimit != 8 {
		t.Errorf("expected default filing limit 8, got %d", cfg.FilingLimit)
	}
	if cfg.FilingForm != "8-K" {
		t.Errorf("expected default form 8-K, got %q", cfg.FilingForm)
	}
	if cfg.CacheDir == "" {
		t.Error("expected a default cache dir")
	}
}
