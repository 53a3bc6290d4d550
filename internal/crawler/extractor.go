package crawler

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mfasync/internal/models"
	"mfasync/internal/normalizer"
)

// Selectors for the public listing markup.
const (
	contentSelector     = "section#main"
	articleLinkSelector = "#post-area article h2.entry-title a"
	postedOnSelector    = "footer .right .posted-on a"
)

// Extractor pulls article entries out of listing page HTML.
type Extractor struct{}

// NewExtractor creates a new extractor instance.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses one listing page and returns its articles in page order.
// A page without the main content region yields an empty result: that is the
// end of the listing, not an error. Entries without a usable title or link
// are dropped.
func (e *Extractor) Extract(pageHTML, listURL string) ([]models.PublicArticle, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page HTML: %w", err)
	}

	main := doc.Find(contentSelector)
	if main.Length() == 0 {
		return nil, nil
	}

	var items []models.PublicArticle

	main.Find(articleLinkSelector).Each(func(_ int, a *goquery.Selection) {
		title := normalizer.Normalize(a.Text())
		href := strings.TrimSpace(a.AttrOr("href", ""))

		if title == "" || href == "" {
			return
		}

		dateText := ""

		if article := a.Closest("article"); article.Length() > 0 {
			dateText = normalizer.Normalize(article.Find(postedOnSelector).First().Text())
		}

		items = append(items, models.PublicArticle{
			Title:    title,
			URL:      href,
			ListURL:  listURL,
			DateText: dateText,
		})
	})

	return items, nil
}
