package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/community-census-etl/internal/observability"
	"golang.org/x/time/rate"
)

// HTTPError is returned for a non-2xx response from the report host.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("report request %s: status %d", e.URL, e.StatusCode)
}

// Client downloads community profile reports over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a report client. A ratePerSecond of 0 disables rate limiting.
func NewClient(baseURL string, timeout time.Duration, ratePerSecond float64, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: newLimiter(ratePerSecond),
		metrics: metrics,
		logger:  logger,
	}
}

func newLimiter(ratePerSecond float64) *rate.Limiter {
	if ratePerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(ratePerSecond), 1)
}

// URL returns the report location for a slug.
func (c *Client) URL(slug string) string {
	return fmt.Sprintf("%s/%s.pdf", c.baseURL, url.PathEscape(slug))
}

// Download issues a single GET for the slug's report and returns the raw body.
func (c *Client) Download(ctx context.Context, slug string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}

	u := c.URL(slug)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.DownloadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ReportDownloads.WithLabelValues("network_error").Inc()
		return nil, fmt.Errorf("report request %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.ReportDownloads.WithLabelValues("http_error").Inc()
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &HTTPError{URL: u, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.ReportDownloads.WithLabelValues("network_error").Inc()
		return nil, fmt.Errorf("read report body %s: %w", u, err)
	}

	c.metrics.ReportDownloads.WithLabelValues("success").Inc()
	c.logger.Debug("report downloaded", "slug", slug, "bytes", len(body))
	return body, nil
}
