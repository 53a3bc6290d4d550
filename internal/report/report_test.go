package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"mfasync/internal/models"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestCollect_AcrossRunFiles(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "missing_articles.csv")

	writeFile(t, filepath.Join(dir, "missing_articles_20250101_080000.csv"),
		"title,public_url,public_list_url,public_date,checked_at\n"+
			"Old Release,https://mfa.gov.lk/en/old/ ,https://mfa.gov.lk/en/category/media-releases/ ,\"Jan 1, 2025\",2025-01-01T08:00:00\n")

	writeFile(t, filepath.Join(dir, "missing_articles_20250301_090000.csv"),
		"title,public_url,public_list_url,public_date,checked_at\n"+
			"Newer Release,https://mfa.gov.lk/en/newer/ ,https://mfa.gov.lk/en/category/media-releases/ ,\"Mar 1, 2025\",2025-03-01T09:00:00\n")

	summary, err := Collect(dest)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if summary.Files != 2 {
		t.Errorf("Expected 2 files, got %d", summary.Files)
	}

	if len(summary.Records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(summary.Records))
	}

	// File order is oldest run first.
	if summary.Records[0].Title != "Old Release" {
		t.Errorf("Expected Old Release first, got %s", summary.Records[0].Title)
	}

	// The stored trailing space on URL fields is trimmed for display.
	if summary.Records[0].PublicURL != "https://mfa.gov.lk/en/old/" {
		t.Errorf("Expected trimmed URL, got %q", summary.Records[0].PublicURL)
	}

	if summary.Records[1].PublicDate != "Mar 1, 2025" {
		t.Errorf("Expected public date, got %q", summary.Records[1].PublicDate)
	}
}

func TestCollect_CountsMalformedRows(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "missing_articles.csv")

	writeFile(t, filepath.Join(dir, "missing_articles_20250101_080000.csv"),
		"title,public_url,public_list_url,public_date,checked_at\n"+
			"Good Release,https://mfa.gov.lk/en/good/ ,https://mfa.gov.lk/en/category/media-releases/ ,,2025-01-01T08:00:00\n"+
			"Short Row,missing-columns\n"+
			",https://mfa.gov.lk/en/untitled/ ,,,2025-01-01T08:05:00\n")

	summary, err := Collect(dest)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if len(summary.Records) != 1 {
		t.Errorf("Expected 1 usable record, got %d", len(summary.Records))
	}

	if summary.Malformed != 2 {
		t.Errorf("Expected 2 malformed rows, got %d", summary.Malformed)
	}
}

func TestCollect_SkipsUnreadableFiles(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "missing_articles.csv")

	writeFile(t, filepath.Join(dir, "missing_articles_20250101_080000.csv"),
		"title,public_url,public_list_url,public_date,checked_at\n"+
			"Good Release,,,,2025-01-01T08:00:00\n")

	// A file with a foreign header cannot serve the report.
	writeFile(t, filepath.Join(dir, "missing_articles_20250201_080000.csv"),
		"name,link\nsomething,else\n")

	summary, err := Collect(dest)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if summary.Files != 1 {
		t.Errorf("Expected 1 readable file, got %d", summary.Files)
	}

	if len(summary.BadFiles) != 1 {
		t.Fatalf("Expected 1 bad file, got %d", len(summary.BadFiles))
	}

	if filepath.Base(summary.BadFiles[0]) != "missing_articles_20250201_080000.csv" {
		t.Errorf("Expected the foreign-header file flagged, got %s", summary.BadFiles[0])
	}

	if len(summary.Records) != 1 {
		t.Errorf("Expected 1 record from the readable file, got %d", len(summary.Records))
	}
}

func TestCollect_NoRunFiles(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "missing_articles.csv")

	summary, err := Collect(dest)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if summary.Files != 0 || len(summary.Records) != 0 {
		t.Errorf("Expected empty summary, got %+v", summary)
	}
}

func TestRenderTable(t *testing.T) {
	records := []models.MissingRecord{
		{
			Title:      "Sri Lanka Japan Talks",
			PublicDate: "July 1, 2025",
			CheckedAt:  "2025-07-02T09:30:00",
			PublicURL:  "https://mfa.gov.lk/en/one/",
		},
		{
			Title:      "斯里兰卡与中国会谈",
			PublicDate: "June 28, 2025",
			CheckedAt:  "2025-07-02T09:31:00",
			PublicURL:  "https://mfa.gov.lk/en/two/",
		},
	}

	table := RenderTable(records)

	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected header, separator, and 2 rows, got %d lines", len(lines))
	}

	if !strings.HasPrefix(lines[0], "| Title") {
		t.Errorf("Expected header row first, got %q", lines[0])
	}

	if !strings.Contains(lines[1], "---") {
		t.Errorf("Expected separator row, got %q", lines[1])
	}

	// Wide characters must not skew the columns: every line has the same
	// display width.
	want := runewidth.StringWidth(lines[0])
	for i, line := range lines {
		if got := runewidth.StringWidth(line); got != want {
			t.Errorf("Line %d display width = %d, want %d: %q", i, got, want, line)
		}
	}

	if !strings.Contains(table, "斯里兰卡与中国会谈") {
		t.Error("Expected the wide-character title in the table")
	}
}

func TestRenderTable_Empty(t *testing.T) {
	table := RenderTable(nil)

	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected header and separator only, got %d lines", len(lines))
	}
}
