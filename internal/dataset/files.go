// Package dataset reads and writes the record snapshot, the run statistics
// and the report on disk.
package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/taxon/internal/model"
)

// LoadRecords reads a JSON array of records.
func LoadRecords(path string) ([]model.Record, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from trusted config
	if err != nil {
		return nil, fmt.Errorf("failed to read records file: %w", err)
	}

	var records []model.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse records file %s: %w", path, err)
	}
	return records, nil
}

// SaveRecords writes records as an indented JSON array.
func SaveRecords(path string, records []model.Record) error {
	if records == nil {
		records = []model.Record{}
	}
	data, err := Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	return WriteFileAtomic(path, data, 0644)
}

// LoadStats reads statistics saved by a previous run.
func LoadStats(path string) (*model.RunStats, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from trusted config
	if err != nil {
		return nil, fmt.Errorf("failed to read statistics file: %w", err)
	}

	stats := model.NewRunStats(nil, nil)
	if err := json.Unmarshal(data, stats); err != nil {
		return nil, fmt.Errorf("failed to parse statistics file %s: %w", path, err)
	}
	return stats, nil
}

// SaveStats writes run statistics as indented JSON.
func SaveStats(path string, stats *model.RunStats) error {
	data, err := Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode statistics: %w", err)
	}
	return WriteFileAtomic(path, data, 0644)
}

// SaveReport writes a rendered report.
func SaveReport(path, content string) error {
	return WriteFileAtomic(path, []byte(content), 0644)
}

// Marshal encodes v as two-space indented JSON without HTML escaping,
// terminated by a newline. Map keys come out sorted, so equal values give
// equal bytes.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames it
// into place, so readers never see a half-written file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		cleanup()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
