package crawler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"mfasync/internal/config"
)

// ErrUnexpectedStatusCode indicates an HTTP response with unexpected status.
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

// Scraper fetches public listing pages over HTTP. A fetch failure is terminal
// for the whole run, so there is no retry logic; recovery is re-invocation.
type Scraper struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
}

// NewScraper creates a new scraper instance with default network settings.
func NewScraper() *Scraper {
	return NewScraperWithConfig(&config.NetworkConfig{
		TimeoutSec: 30,
		MaxBodyKb:  4096,
		UserAgent:  config.DefaultUserAgent,
	})
}

// NewScraperWithConfig creates a new scraper with custom network settings.
func NewScraperWithConfig(network *config.NetworkConfig) *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: network.GetTimeout(),
		},
		userAgent:    network.UserAgent,
		maxBodyBytes: network.MaxBodyBytes(),
	}
}

// FetchWithMetrics returns (content, statusCode, duration, error).
func (s *Scraper) FetchWithMetrics(url string) (string, int, time.Duration, error) {
	startTime := time.Now()

	req, err := http.NewRequest(http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", 0, time.Since(startTime), fmt.Errorf("failed to create request: %w", err)
	}

	// Set user agent to avoid being blocked
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		return "", 0, duration, fmt.Errorf("request failed: %w", err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, duration, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	reader := io.LimitReader(resp.Body, s.maxBodyBytes)

	body, err := io.ReadAll(reader)
	if err != nil {
		return "", resp.StatusCode, duration, fmt.Errorf("failed to read response body: %w", err)
	}

	return string(body), resp.StatusCode, duration, nil
}

// Fetch fetches and returns content from the given URL.
func (s *Scraper) Fetch(url string) (string, error) {
	content, _, _, err := s.FetchWithMetrics(url)

	return content, err
}
