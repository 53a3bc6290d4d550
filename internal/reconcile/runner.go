// Package reconcile walks the public listing page range and records every
// article the CMS does not have.
package reconcile

import (
	"fmt"
	"time"

	"mfasync/internal/ledger"
	"mfasync/internal/logger"
	"mfasync/internal/models"
	"mfasync/internal/normalizer"
)

// PageReader fetches one public listing page. An empty result with nil error
// means the listing has ended.
type PageReader interface {
	FetchPage(page int) ([]models.PublicArticle, error)
}

// Verifier answers whether a title already exists in the CMS.
type Verifier interface {
	Exists(title string) (bool, error)
}

// Result summarizes one reconciliation run.
type Result struct {
	PagesFetched int
	Scanned      int
	Skipped      int
	Missing      int
}

// Runner compares public articles against the CMS in page order. Articles
// already in the ledger are skipped without a CMS lookup, and every missing
// article is durably recorded before the next one is checked.
type Runner struct {
	reader       PageReader
	verifier     Verifier
	ledger       *ledger.Ledger
	logger       *logger.Logger
	limitPerPage int
}

// NewRunner creates a runner with no per-page limit.
func NewRunner(reader PageReader, verifier Verifier, led *ledger.Ledger, log *logger.Logger) *Runner {
	return &Runner{
		reader:   reader,
		verifier: verifier,
		ledger:   led,
		logger:   log,
	}
}

// SetLimitPerPage caps how many articles of each page are processed. Zero or
// negative restores the default of processing every article.
func (r *Runner) SetLimitPerPage(n int) {
	r.limitPerPage = n
}

// Run processes pages startPage through endPage inclusive and returns the
// run counters. It stops at the first fetch failure or invalid session,
// returning the counters accumulated so far along with the error. A page
// past the end of the listing is counted as fetched and skipped over.
func (r *Runner) Run(startPage, endPage int) (*Result, error) {
	result := &Result{}

	for page := startPage; page <= endPage; page++ {
		items, err := r.reader.FetchPage(page)
		if err != nil {
			return result, err
		}

		result.PagesFetched++

		if len(items) == 0 {
			continue
		}

		if r.limitPerPage > 0 && len(items) > r.limitPerPage {
			items = items[:r.limitPerPage]
		}

		result.Scanned += len(items)

		for _, item := range items {
			clean := normalizer.Normalize(item.Title)

			r.logger.Info(fmt.Sprintf("Processing: %s", clean))

			if r.ledger.Contains(clean) {
				result.Skipped++

				continue
			}

			exists, err := r.verifier.Exists(clean)
			if err != nil {
				return result, fmt.Errorf("failed to check %q: %w", clean, err)
			}

			if exists {
				continue
			}

			rec := models.MissingRecord{
				Title:         clean,
				PublicURL:     item.URL,
				PublicListURL: item.ListURL,
				PublicDate:    item.DateText,
				CheckedAt:     time.Now().Format(ledger.CheckedAtLayout),
			}

			if err := r.ledger.Record(rec); err != nil {
				return result, fmt.Errorf("failed to record %q: %w", clean, err)
			}

			result.Missing++
		}
	}

	return result, nil
}
