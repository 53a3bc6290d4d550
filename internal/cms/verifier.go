package cms

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mfasync/internal/config"
	"mfasync/internal/logger"
	"mfasync/internal/normalizer"
)

// ErrSessionInvalid indicates the CMS answered without a recognizable results
// listing, which is how an expired or missing login presents itself.
var ErrSessionInvalid = errors.New("CMS results not visible; session may be invalid")

// Selectors for the Drupal admin content listing.
const (
	resultsTableSelector = "table.views-table"
	viewContentSelector  = ".view-content"
	titleLinkSelector    = "table.views-table tbody td.views-field-title a"

	noResultsText = "No content available"
)

// Verifier queries the CMS admin content listing over HTTP with an operator
// session and decides whether a title already exists there.
type Verifier struct {
	client    *http.Client
	baseURL   string
	userAgent string
	logger    *logger.Logger
}

// NewVerifier creates a verifier backed by the session's cookies.
func NewVerifier(session *Session, baseURL string, network *config.NetworkConfig, log *logger.Logger) (*Verifier, error) {
	client, err := session.Client(baseURL, network.GetTimeout())
	if err != nil {
		return nil, err
	}

	return &Verifier{
		client:    client,
		baseURL:   baseURL,
		userAgent: network.UserAgent,
		logger:    log,
	}, nil
}

// ContentURL returns the admin content listing URL for a CMS base URL.
func ContentURL(baseURL string) string {
	base := baseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	return base + "en/admin/content"
}

// Exists reports whether the CMS content listing has an entry matching the
// given title. The response page is interpreted in order: an explicit
// "No content available" notice means the title is absent; a page with
// neither a results table nor a view content region means the session is no
// longer valid and verification must stop; otherwise the table's title links
// decide the match, compared in normalized lowercase form.
func (v *Verifier) Exists(title string) (bool, error) {
	clean := normalizer.Normalize(title)

	v.logger.Info(fmt.Sprintf("Checking CMS for: %s", clean))

	doc, err := v.fetchListing(v.searchURL(clean))
	if err != nil {
		return false, err
	}

	if strings.Contains(doc.Text(), noResultsText) {
		v.logger.Debug("Not found in CMS")

		return false, nil
	}

	if doc.Find(resultsTableSelector).Length() == 0 && doc.Find(viewContentSelector).Length() == 0 {
		return false, ErrSessionInvalid
	}

	links := doc.Find(titleLinkSelector)
	if links.Length() == 0 {
		v.logger.Debug("No title links in CMS table")

		return false, nil
	}

	wanted := normalizer.Key(clean)
	found := false

	links.EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if normalizer.Key(a.Text()) == wanted {
			found = true

			return false
		}

		return true
	})

	return found, nil
}

// Probe fetches the unfiltered content listing to confirm the CMS accepts
// the session. It distinguishes only valid from invalid; no title is looked
// up.
func (v *Verifier) Probe() error {
	doc, err := v.fetchListing(ContentURL(v.baseURL))
	if err != nil {
		return err
	}

	if strings.Contains(doc.Text(), noResultsText) {
		return nil
	}

	if doc.Find(resultsTableSelector).Length() == 0 && doc.Find(viewContentSelector).Length() == 0 {
		return ErrSessionInvalid
	}

	return nil
}

// searchURL builds the filtered listing query for one title. Filters besides
// the title are pinned to All, in the order the admin UI submits them.
func (v *Verifier) searchURL(clean string) string {
	return fmt.Sprintf("%s?title=%s&type=All&status=All&langcode=All",
		ContentURL(v.baseURL), url.QueryEscape(clean))
}

// fetchListing fetches and parses one listing page. Status codes are not
// checked; whatever the CMS serves, including a login form, flows into the
// caller's interpretation.
func (v *Verifier) fetchListing(pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequest(http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", v.userAgent)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("CMS request failed: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CMS response: %w", err)
	}

	return doc, nil
}
