// Package models defines data structures shared by the crawler, verifier, and ledger.
package models

// PublicArticle represents one article entry extracted from a public listing page.
type PublicArticle struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	ListURL  string `json:"listUrl"`
	DateText string `json:"dateText"`
}

// MissingRecord represents one persisted row of the missing-articles ledger.
// Rows are append-only and never rewritten once stored.
type MissingRecord struct {
	Title         string `json:"title"`
	PublicURL     string `json:"publicUrl"`
	PublicListURL string `json:"publicListUrl"`
	PublicDate    string `json:"publicDate"`
	CheckedAt     string `json:"checkedAt"`
}
