// Package feeds fetches and parses the published-spreadsheet CSV exports
// that feed the dashboard: the shipment list, the revenue targets, the
// period calendar and the access list.
package feeds

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 30 * time.Second
	// maxFeedBytes caps a single feed download. The real exports are a few
	// hundred KB; anything near this size is a broken publish URL.
	maxFeedBytes = 32 << 20
)

// Client downloads one published CSV export per call. Published spreadsheet
// URLs sit behind aggressive edge caches, so every request carries a
// cache-busting timestamp parameter and no-cache headers.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger

	// now is swappable for tests of the cache-buster.
	now func() time.Time
}

// NewClient creates a feed client with the given request timeout. A
// non-positive timeout falls back to the default. Requests are rate limited
// to stay polite toward the spreadsheet host.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
		logger:     logger,
		now:        time.Now,
	}
}

// Fetch downloads one feed and returns its raw bytes. Non-200 responses and
// oversized bodies are errors; the caller decides whether to keep serving a
// previous snapshot.
func (c *Client) Fetch(ctx context.Context, feedURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	busted, err := cacheBust(feedURL, c.now())
	if err != nil {
		return nil, fmt.Errorf("invalid feed url %q: %w", feedURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, busted, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}
	if len(body) > maxFeedBytes {
		return nil, fmt.Errorf("feed body exceeds %d bytes", maxFeedBytes)
	}

	c.logger.Debug("feed fetched",
		slog.String("url", feedURL),
		slog.Int("bytes", len(body)),
		slog.Duration("elapsed", time.Since(start)))

	return body, nil
}

// cacheBust appends a timestamp query parameter so every fetch misses the
// publish cache.
func cacheBust(feedURL string, now time.Time) (string, error) {
	u, err := url.Parse(feedURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("t", strconv.FormatInt(now.UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
