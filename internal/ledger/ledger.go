// Package ledger stores missing-article records in append-only CSV run files
// and deduplicates titles across runs.
package ledger

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"mfasync/internal/models"
	"mfasync/internal/normalizer"
)

// ErrLedgerLocked indicates another process is writing to the same destination.
var ErrLedgerLocked = errors.New("ledger is already locked by another process")

// CheckedAtLayout is the timestamp format of the checked_at column.
const CheckedAtLayout = "2006-01-02T15:04:05"

// csvHeader lists the run file columns in order.
var csvHeader = []string{"title", "public_url", "public_list_url", "public_date", "checked_at"}

// Ledger appends missing articles to a timestamped run file and deduplicates
// against every earlier run file sharing the same destination stem. Each row
// is flushed and synced before the append returns, so a crash never loses an
// acknowledged record and never leaves a partial one.
type Ledger struct {
	destPath string
	runPath  string
	lock     *flock.Flock
	keys     map[string]struct{}
}

// Open prepares a ledger for the given destination path. The destination
// itself is never written; records go to a fresh <stem>_<timestamp><ext> file
// beside it. Previously recorded titles are loaded from all of the
// destination's sibling run files. Returns ErrLedgerLocked when another
// process holds the destination's lock.
func Open(destPath string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	lock := flock.New(destPath + ".lock")

	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire ledger lock: %w", err)
	}

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLedgerLocked, destPath)
	}

	siblings, err := SiblingFiles(destPath)
	if err != nil {
		_ = lock.Unlock()

		return nil, err
	}

	keys := make(map[string]struct{})

	for _, path := range siblings {
		if err := loadKeys(path, keys); err != nil {
			_ = lock.Unlock()

			return nil, fmt.Errorf("failed to load existing titles from %s: %w", path, err)
		}
	}

	return &Ledger{
		destPath: destPath,
		runPath:  timestampedPath(destPath, time.Now()),
		lock:     lock,
		keys:     keys,
	}, nil
}

// Contains reports whether the title was already recorded, in this run or any
// earlier one. Comparison uses the normalized lowercase form.
func (l *Ledger) Contains(title string) bool {
	_, ok := l.keys[normalizer.Key(title)]

	return ok
}

// Record appends one missing article to the run file and remembers its title.
// The row is on disk before Record returns.
func (l *Ledger) Record(rec models.MissingRecord) error {
	if err := l.ensureHeader(); err != nil {
		return err
	}

	if err := l.appendRow(recordRow(rec)); err != nil {
		return err
	}

	l.keys[normalizer.Key(rec.Title)] = struct{}{}

	return nil
}

// Len returns the number of distinct titles known to the ledger.
func (l *Ledger) Len() int {
	return len(l.keys)
}

// RunPath returns the timestamped file this ledger appends to.
func (l *Ledger) RunPath() string {
	return l.runPath
}

// Close releases the ledger lock.
func (l *Ledger) Close() error {
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("failed to release ledger lock: %w", err)
	}

	return nil
}

// SiblingFiles returns every run file sharing the destination's stem and
// extension, sorted by name. Run file names embed a sortable timestamp, so
// name order is creation order.
func SiblingFiles(destPath string) ([]string, error) {
	stem, ext := splitDest(destPath)

	matches, err := filepath.Glob(stem + "*" + ext)
	if err != nil {
		return nil, fmt.Errorf("failed to list run files: %w", err)
	}

	return matches, nil
}

// recordRow converts a record into CSV fields. Non-empty URL fields carry a
// trailing space, matching the historical run files.
func recordRow(rec models.MissingRecord) []string {
	row := []string{rec.Title, rec.PublicURL, rec.PublicListURL, rec.PublicDate, rec.CheckedAt}

	if row[1] != "" {
		row[1] += " "
	}

	if row[2] != "" {
		row[2] += " "
	}

	return row
}

func splitDest(destPath string) (stem, ext string) {
	ext = filepath.Ext(destPath)
	if ext == "" {
		ext = ".csv"
	}

	return strings.TrimSuffix(destPath, ext), ext
}

// timestampedPath derives the run file name for one invocation, for example
// missing_articles_20250823_140502.csv for destination missing_articles.csv.
func timestampedPath(destPath string, now time.Time) string {
	stem, ext := splitDest(destPath)

	return fmt.Sprintf("%s_%s%s", stem, now.Format("20060102_150405"), ext)
}

func (l *Ledger) ensureHeader() error {
	fi, err := os.Stat(l.runPath)
	if err == nil && fi.Size() > 0 {
		return nil
	}

	f, err := os.OpenFile(l.runPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create run file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()

		return fmt.Errorf("failed to write header: %w", err)
	}

	w.Flush()

	if err := w.Error(); err != nil {
		f.Close()

		return fmt.Errorf("failed to write header: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()

		return fmt.Errorf("failed to sync run file: %w", err)
	}

	return f.Close()
}

func (l *Ledger) appendRow(row []string) error {
	f, err := os.OpenFile(l.runPath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open run file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		f.Close()

		return fmt.Errorf("failed to append record: %w", err)
	}

	w.Flush()

	if err := w.Error(); err != nil {
		f.Close()

		return fmt.Errorf("failed to append record: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()

		return fmt.Errorf("failed to sync run file: %w", err)
	}

	return f.Close()
}

// loadKeys reads the title column of one run file into the dedup set. Titles
// are re-normalized on load, so files written before a normalization change
// still deduplicate correctly.
func loadKeys(path string, keys map[string]struct{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
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
			return nil
		}

		return err
	}

	idx := -1

	for i, h := range header {
		if strings.TrimSpace(h) == "title" {
			idx = i

			break
		}
	}

	if idx < 0 {
		return nil
	}

	for {
		row, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return err
		}

		if len(row) <= idx {
			continue
		}

		if key := normalizer.Key(row[idx]); key != "" {
			keys[key] = struct{}{}
		}
	}
}
