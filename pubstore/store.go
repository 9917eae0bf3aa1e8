package pubstore

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadRecords reads the line-delimited record store at path, one JSON
// object per line. A missing file is treated as an empty store, not an
// error. Blank lines are skipped.
func LoadRecords(path string) ([]PublicationRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("pubstore: open record store: %w", err)
	}
	defer file.Close()

	var records []PublicationRecord

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var record PublicationRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return nil, fmt.Errorf("pubstore: decode record line: %w", err)
		}

		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("pubstore: read record store: %w", err)
	}

	return records, nil
}

// SaveRecords fully rewrites the record store at path with the provided
// records, deduplicated by canonical URL (first occurrence wins).
// Records without a URL are kept as-is. The write is atomic: content is
// staged to a temporary file in the same directory and renamed over the
// destination, so a crash mid-write never leaves a truncated store.
func SaveRecords(path string, records []PublicationRecord) error {
	seen := make(map[string]struct{}, len(records))

	var buf strings.Builder

	for _, record := range records {
		canonical := CanonicalURL(record.PublicationURL)
		if canonical != "" {
			if _, exists := seen[canonical]; exists {
				continue
			}

			seen[canonical] = struct{}{}
		}

		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("pubstore: encode record: %w", err)
		}

		buf.Write(line)
		buf.WriteByte('\n')
	}

	return WriteAtomic(path, []byte(buf.String()))
}

// WriteAtomic writes data to path via a temporary file and rename.
// The parent directory is created if missing.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("pubstore: create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("pubstore: create temp file: %w", err)
	}

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return fmt.Errorf("pubstore: write temp file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("pubstore: close temp file: %w", err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("pubstore: replace %s: %w", path, err)
	}

	return nil
}
