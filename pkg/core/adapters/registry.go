// Package adapters holds per-issuer fallback extraction strategies, used
// only when the generic filing-based extraction yields no statements for a
// ticker. Each strategy fetches one or more issuer pages and applies an
// issuer-specific pattern; the first strategy returning any statement wins.
package adapters

import (
	"context"
	"strings"
	"time"

	"github.com/phuslu/log"

	"guidance_credibility/pkg/core/guidance"
)

// FetchDelay spaces successive fallback fetches so issuer sites are not
// hammered when several strategies run back to back.
const FetchDelay = 600 * time.Millisecond

// PageFetcher fetches a URL and returns its raw body and content type.
// *sec.Client satisfies this, so issuer fetches share the same polite
// transport as filing fetches.
type PageFetcher interface {
	GetDocument(ctx context.Context, url string) (body []byte, contentType string, err error)
}

// Pattern is a pure function from fetched page text to zero-or-more
// guidance statements.
type Pattern func(text, sourceURL string) []guidance.Statement

// Strategy is one ordered step of an issuer adapter.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, fetcher PageFetcher) ([]guidance.Statement, error)
}

// Registry maps tickers to their ordered strategy lists.
type Registry struct {
	adapters map[string][]Strategy
	delay    time.Duration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string][]Strategy),
		delay:    FetchDelay,
	}
}

// Register appends strategies for a ticker, preserving order.
func (r *Registry) Register(ticker string, strategies ...Strategy) {
	key := strings.ToUpper(ticker)
	r.adapters[key] = append(r.adapters[key], strategies...)
}

// Supports reports whether a fallback adapter exists for the ticker.
func (r *Registry) Supports(ticker string) bool {
	return len(r.adapters[strings.ToUpper(ticker)]) > 0
}

// Extract runs the ticker's strategies in order, pausing between fetch
// attempts. The first strategy producing any statement short-circuits the
// rest. Strategy failures are logged and treated as "no match".
func (r *Registry) Extract(ctx context.Context, ticker string, fetcher PageFetcher) []guidance.Statement {
	strategies := r.adapters[strings.ToUpper(ticker)]
	for i, s := range strategies {
		if i > 0 {
			select {
			case <-time.After(r.delay):
			case <-ctx.Done():
				return nil
			}
		}
		statements, err := s.Extract(ctx, fetcher)
		if err != nil {
			log.Warn().Str("ticker", ticker).Str("strategy", s.Name()).Err(err).Msg("issuer fallback strategy failed")
			continue
		}
		if len(statements) > 0 {
			log.Info().Str("ticker", ticker).Str("strategy", s.Name()).Int("statements", len(statements)).Msg("issuer fallback matched")
			return statements
		}
	}
	return nil
}
