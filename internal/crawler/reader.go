// Package crawler fetches public listing pages and extracts article entries.
package crawler

import (
	"fmt"

	"mfasync/internal/logger"
	"mfasync/internal/models"
)

// Reader fetches and extracts one public listing page at a time.
type Reader struct {
	scraper   *Scraper
	extractor *Extractor
	listURL   string
	logger    *logger.Logger
}

// NewReader creates a new reader for the given listing with default dependencies.
func NewReader(listURL string, log *logger.Logger) *Reader {
	return &Reader{
		scraper:   NewScraper(),
		extractor: NewExtractor(),
		listURL:   listURL,
		logger:    log,
	}
}

// NewReaderWithDeps creates a new reader with injected dependencies.
func NewReaderWithDeps(listURL string, scraper *Scraper, extractor *Extractor, log *logger.Logger) *Reader {
	return &Reader{
		scraper:   scraper,
		extractor: extractor,
		listURL:   listURL,
		logger:    log,
	}
}

// FetchPage fetches listing page number page and returns its articles in
// page order. An empty result with nil error means the listing has ended.
func (r *Reader) FetchPage(page int) ([]models.PublicArticle, error) {
	url := PageURL(r.listURL, page)

	r.logger.Info(fmt.Sprintf("Fetching public page %d: %s", page, url))

	content, status, duration, err := r.scraper.FetchWithMetrics(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page %d: %w", page, err)
	}

	r.logger.Debug(fmt.Sprintf("Fetched %d bytes in %v (status %d)", len(content), duration, status))

	items, err := r.extractor.Extract(content, url)
	if err != nil {
		return nil, fmt.Errorf("failed to extract page %d: %w", page, err)
	}

	if len(items) == 0 {
		r.logger.Info(fmt.Sprintf("No content found on page %d", page))

		return nil, nil
	}

	r.logger.Info(fmt.Sprintf("Found %d articles on page %d", len(items), page))

	return items, nil
}
