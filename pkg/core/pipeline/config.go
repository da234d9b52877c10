package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"guidance_credibility/pkg/core/filings"
)

// Config is the YAML pipeline configuration: the tracked ticker universe
// plus cache and extraction knobs.
type Config struct {
	Tickers     []string `yaml:"tickers"`
	CacheDir    string   `yaml:"cache_dir"`
	FilingLimit int      `yaml:"filing_limit"`
	FilingForm  string   `yaml:"filing_form"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		CacheDir:    ".cache",
		FilingLimit: filings.DefaultFilingLimit,
		FilingForm:  "8-K",
	}
}

// LoadConfig reads a YAML config file, filling unset fields with defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.FilingLimit <= 0 {
		cfg.FilingLimit = filings.DefaultFilingLimit
	}
	if cfg.FilingForm == "" {
		cfg.FilingForm = "8-K"
	}
	return cfg, nil
}
