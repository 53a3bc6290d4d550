// Package report aggregates recorded missing articles across run files and
// renders them for operator review.
package report

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"

	"mfasync/internal/ledger"
	"mfasync/internal/models"
)

// columns lists the run file columns the report needs.
var columns = []string{"title", "public_url", "public_list_url", "public_date", "checked_at"}

// Summary holds every record found across a destination's run files.
type Summary struct {
	Records   []models.MissingRecord
	Files     int
	BadFiles  []string
	Malformed int
}

// Collect reads every run file beside the destination path and returns their
// records in file order, oldest run first. Files that cannot be read are
// listed in BadFiles and skipped; rows without the expected columns are
// counted in Malformed and dropped.
func Collect(destPath string) (*Summary, error) {
	files, err := ledger.SiblingFiles(destPath)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}

	for _, path := range files {
		records, malformed, err := readRunFile(path)
		if err != nil {
			summary.BadFiles = append(summary.BadFiles, path)

			continue
		}

		summary.Files++
		summary.Malformed += malformed
		summary.Records = append(summary.Records, records...)
	}

	return summary, nil
}

// RenderTable renders records as an aligned text table. Column widths use
// display width, so wide characters keep the columns straight.
func RenderTable(records []models.MissingRecord) string {
	rows := [][]string{{"Title", "Public Date", "Checked At", "Public URL"}}

	for _, rec := range records {
		rows = append(rows, []string{rec.Title, rec.PublicDate, rec.CheckedAt, rec.PublicURL})
	}

	widths := make([]int, len(rows[0]))

	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	for i := range widths {
		if widths[i] < 3 {
			widths[i] = 3
		}
	}

	var sb strings.Builder

	for i, row := range rows {
		writeRow(&sb, row, widths)

		if i == 0 {
			writeSeparator(&sb, widths)
		}
	}

	return sb.String()
}

func writeRow(sb *strings.Builder, row []string, widths []int) {
	sb.WriteString("|")

	for i, cell := range row {
		sb.WriteString(" ")
		sb.WriteString(cell)

		if padding := widths[i] - runewidth.StringWidth(cell); padding > 0 {
			sb.WriteString(strings.Repeat(" ", padding))
		}

		sb.WriteString(" |")
	}

	sb.WriteString("\n")
}

func writeSeparator(sb *strings.Builder, widths []int) {
	sb.WriteString("|")

	for _, w := range widths {
		sb.WriteString(" ")
		sb.WriteString(strings.Repeat("-", w))
		sb.WriteString(" |")
	}

	sb.WriteString("\n")
}

func readRunFile(path string) ([]models.MissingRecord, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	br := bufio.NewReader(f)

	// Skip a UTF-8 BOM left behind by spreadsheet tools.
	first3, _ := br.Peek(3)
	if len(first3) == 3 && first3[0] == 0xEF && first3[1] == 0xBB && first3[2] == 0xBF {
		_, _ = br.Discard(3)
	}

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, nil
		}

		return nil, 0, err
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}

	for _, col := range columns {
		if _, ok := idx[col]; !ok {
			return nil, 0, fmt.Errorf("missing column %q", col)
		}
	}

	var records []models.MissingRecord

	malformed := 0

	for {
		row, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return nil, 0, err
		}

		rec, ok := rowRecord(row, idx)
		if !ok {
			malformed++

			continue
		}

		records = append(records, rec)
	}

	return records, malformed, nil
}

// rowRecord converts one CSV row. URL fields are trimmed for display, which
// removes the trailing space the ledger stores.
func rowRecord(row []string, idx map[string]int) (models.MissingRecord, bool) {
	for _, col := range columns {
		if idx[col] >= len(row) {
			return models.MissingRecord{}, false
		}
	}

	rec := models.MissingRecord{
		Title:         strings.TrimSpace(row[idx["title"]]),
		PublicURL:     strings.TrimSpace(row[idx["public_url"]]),
		PublicListURL: strings.TrimSpace(row[idx["public_list_url"]]),
		PublicDate:    strings.TrimSpace(row[idx["public_date"]]),
		CheckedAt:     strings.TrimSpace(row[idx["checked_at"]]),
	}

	if rec.Title == "" {
		return models.MissingRecord{}, false
	}

	return rec, true
}
