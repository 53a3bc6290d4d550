package crawler

import (
	"fmt"
	"strings"
)

// PageURL returns the pagination URL for a public listing page.
// Page 1 is the base listing itself; later pages append "page/N/".
func PageURL(baseListURL string, page int) string {
	base := baseListURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	if page <= 1 {
		return base
	}

	return fmt.Sprintf("%spage/%d/", base, page)
}
