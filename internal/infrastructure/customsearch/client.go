package customsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/storehelper/backend/internal/domain"
	"github.com/storehelper/backend/internal/metrics"
	"golang.org/x/time/rate"
)

// maxErrorBody caps how much of an error response ends up in the log
const maxErrorBody = 512

// Options configures a Client
type Options struct {
	APIKey      string
	EngineID    string
	BaseURL     string
	BaseQuery   string
	Stores      []string
	ResultCount int
	Timeout     time.Duration
	// Cooldown is the wait after the first 429; it doubles on each further 429
	Cooldown    time.Duration
	MaxAttempts int
	// RequestsPerSecond paces outbound calls; zero or less disables pacing
	RequestsPerSecond float64
}

// Client handles communication with the Custom Search JSON API
type Client struct {
	httpClient  *http.Client
	opts        Options
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new search API client
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 3
	}
	if opts.ResultCount <= 0 {
		opts.ResultCount = 10
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		opts:        opts,
		rateLimiter: rate.NewLimiter(limit, 1),
	}
}

// SetDebug enables logging of request URLs (without the API key)
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		log.Printf("[SEARCH][debug] "+format, args...)
	}
}

// Search runs one filtered query. HTTP 429 is retried with exponential
// backoff up to MaxAttempts; exhaustion yields domain.ErrRateLimited. Any
// other failure yields an error wrapping domain.ErrSearchFailed.
func (c *Client) Search(ctx context.Context, term string) (*domain.SearchResults, error) {
	q := BuildQuery(c.opts.BaseQuery, term, c.opts.Stores)
	log.Printf("[SEARCH] Searching: %q", term)

	params := url.Values{}
	params.Add("key", c.opts.APIKey)
	params.Add("cx", c.opts.EngineID)
	params.Add("q", q)
	params.Add("num", strconv.Itoa(c.opts.ResultCount))

	reqURL := fmt.Sprintf("%s?%s", c.opts.BaseURL, params.Encode())
	c.debugLog("GET %s q=%q", c.opts.BaseURL, q)

	for attempt := 1; attempt <= c.opts.MaxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			metrics.SearchRequestsTotal.WithLabelValues(metrics.OutcomeError).Inc()
			return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrSearchFailed, err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			log.Printf("[SEARCH] Search error: %v", err)
			metrics.SearchRequestsTotal.WithLabelValues(metrics.OutcomeError).Inc()
			return nil, err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			if attempt == c.opts.MaxAttempts {
				break
			}

			wait := exponentialBackoff(c.opts.Cooldown, attempt)
			log.Printf("[SEARCH] Rate limit reached (attempt %d/%d). Waiting %s...", attempt, c.opts.MaxAttempts, wait)
			metrics.SearchRetriesTotal.Inc()
			if err := sleep(ctx, wait); err != nil {
				metrics.SearchRequestsTotal.WithLabelValues(metrics.OutcomeError).Inc()
				return nil, fmt.Errorf("%w: %v", domain.ErrSearchFailed, err)
			}
			continue
		}

		results, err := decodeResponse(resp)
		if err != nil {
			log.Printf("[SEARCH] Search error: %v", err)
			metrics.SearchRequestsTotal.WithLabelValues(metrics.OutcomeError).Inc()
			return nil, err
		}

		metrics.SearchRequestsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
		c.debugLog("%d items for %q", len(results.Items), term)
		return results, nil
	}

	log.Printf("[SEARCH] Rate limited on all %d attempts for query: %q", c.opts.MaxAttempts, term)
	metrics.SearchRequestsTotal.WithLabelValues(metrics.OutcomeRateLimited).Inc()
	return nil, domain.ErrRateLimited
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", domain.ErrSearchFailed, err)
	}
	req.Header.Set("User-Agent", "StoreHelper/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchFailed, err)
	}

	return resp, nil
}

// decodeResponse checks the status and parses the body, closing it
func decodeResponse(resp *http.Response) (*domain.SearchResults, error) {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := readLimitedBody(resp.Body, maxErrorBody)
		return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrSearchFailed, resp.StatusCode, string(body))
	}

	var results domain.SearchResults
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrSearchFailed, err)
	}

	return &results, nil
}

// exponentialBackoff returns base * 2^(attempt-1)
func exponentialBackoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base << uint(attempt-1)
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

// sleep blocks for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
