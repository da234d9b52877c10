// Package sec provides a throttled client for the SEC EDGAR data APIs.
// All outbound requests to SEC hosts funnel through a single ordered queue
// enforcing the 10 requests/second ceiling SEC asks automated agents to
// respect. API Documentation: https://www.sec.gov/developer
package sec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/time/rate"
)

const (
	// SEC EDGAR API endpoints
	SubmissionsURL    = "https://data.sec.gov/submissions/CIK%s.json"
	CompanyConceptURL = "https://data.sec.gov/api/xbrl/companyconcept/CIK%s/us-gaap/%s.json"
	CompanyTickersURL = "https://www.sec.gov/files/company_tickers.json"
	ArchivesBaseURL   = "https://www.sec.gov/Archives/edgar/data/%d/%s"

	// MinRequestSpacing keeps us at or below 10 requests/second.
	MinRequestSpacing = 100 * time.Millisecond

	// DefaultTimeout is the transport-level timeout for SEC requests.
	DefaultTimeout = 30 * time.Second

	// UserAgentEnvVar overrides the default User-Agent. SEC requires a
	// contact address in the UA string.
	UserAgentEnvVar  = "SEC_UA"
	DefaultUserAgent = "GuidanceCredibility/1.0 (contact@example.com)"
)

// ErrUpstream indicates a non-success response from an SEC host.
var ErrUpstream = errors.New("sec: upstream unavailable")

// ErrNotFound indicates an identifier SEC does not know about.
var ErrNotFound = errors.New("sec: not found")

// Client performs rate-limited HTTP requests against SEC hosts.
// The limiter is an explicit object shared by every call site rather than
// ambient package state, so tests can substitute their own.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string

	// queueMu serializes request dispatch so bursts preserve submission
	// order instead of racing on the limiter.
	queueMu sync.Mutex
	queued  int64
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithUserAgent sets the User-Agent header sent to SEC hosts.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithRateLimit overrides the default request spacing.
func WithRateLimit(spacing time.Duration) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Every(spacing), 1)
	}
}

// NewClient creates a new SEC client.
func NewClient(opts ...ClientOption) *Client {
	ua := os.Getenv(UserAgentEnvVar)
	if ua == "" {
		ua = DefaultUserAgent
	}
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(MinRequestSpacing), 1),
		userAgent:  ua,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches a URL through the ordered throttle queue and returns the body.
// Non-2xx responses return the body alongside a wrapped ErrUpstream so
// callers can decide whether a stale cache entry should stand in.
func (c *Client) Get(ctx context.Context, url string, accept string) ([]byte, error) {
	atomic.AddInt64(&c.queued, 1)
	c.queueMu.Lock()
	err := c.limiter.Wait(ctx)
	c.queueMu.Unlock()
	depth := atomic.AddInt64(&c.queued, -1)
	if err != nil {
		return nil, fmt.Errorf("throttle wait: %w", err)
	}
	log.Debug().Str("url", url).Int64("queued", depth).Msg("sec request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, fmt.Errorf("%w: status %d for %s", ErrUpstream, resp.StatusCode, url)
	}
	return body, nil
}

// GetJSON fetches a URL with an application/json Accept header.
func (c *Client) GetJSON(ctx context.Context, url string) ([]byte, error) {
	return c.Get(ctx, url, "application/json")
}

// GetDocument fetches a filing document (HTML, PDF or plain text).
func (c *Client) GetDocument(ctx context.Context, url string) ([]byte, string, error) {
	atomic.AddInt64(&c.queued, 1)
	c.queueMu.Lock()
	err := c.limiter.Wait(ctx)
	c.queueMu.Unlock()
	atomic.AddInt64(&c.queued, -1)
	if err != nil {
		return nil, "", fmt.Errorf("throttle wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: status %d for %s", ErrUpstream, resp.StatusCode, url)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}
