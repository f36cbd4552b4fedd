package inmet

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/inmet-scraper/internal/domain"
	"github.com/couchcryptid/inmet-scraper/internal/observability"
)

// Client downloads yearly archives from the INMET historical data portal.
// It implements pipeline.ArchiveFetcher.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an archive client. A zero timeout is rejected by config,
// so every download is bounded.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// FetchArchive downloads the whole archive for a year into memory. Every
// error it returns wraps domain.ErrTransport.
func (c *Client) FetchArchive(ctx context.Context, year int) ([]byte, error) {
	url := domain.ArchiveURL(c.baseURL, year)
	c.logger.Info("downloading archive", "year", year, "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", domain.ErrTransport, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %s for url: %s", domain.ErrTransport, resp.Status, url)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrTransport, err)
	}

	c.metrics.DownloadDuration.Observe(time.Since(start).Seconds())
	c.metrics.ArchiveBytes.Observe(float64(len(payload)))
	c.logger.Debug("archive downloaded", "year", year, "bytes", len(payload))

	return payload, nil
}
