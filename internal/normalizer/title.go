// Package normalizer provides title normalization for matching articles across systems.
package normalizer

import (
	"html"
	"strings"
)

// quoteCutset holds the quote characters stripped from both ends of a title.
const quoteCutset = `'"“”‘’„‟‹›«»`

// Normalize canonicalizes a raw article title:
// - Decode HTML entities
// - Replace non-breaking spaces with regular spaces
// - Strip leading/trailing whitespace
// - Strip wrapping quote characters
// - Collapse internal whitespace runs to a single space
func Normalize(raw string) string {
	s := html.UnescapeString(raw)

	// Non-breaking spaces must become regular spaces even inside the title
	s = strings.ReplaceAll(s, "\u00a0", " ")

	s = strings.TrimSpace(s)
	s = strings.Trim(s, quoteCutset)

	return strings.Join(strings.Fields(s), " ")
}

// Key returns the case-folded matching key for a title. Every comparison
// between the public site, the ledger, and the CMS goes through this.
func Key(raw string) string {
	return strings.ToLower(Normalize(raw))
}
