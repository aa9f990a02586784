// Package watermark persists the last successfully processed day as a single
// ISO date line, read by future incremental runs to pick their window start.
package watermark

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/angelmondragon/edqm-seeder/pkg/model"
)

// Store reads and overwrites a single-line watermark file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Write overwrites the watermark with the given date. The write goes through
// a temp file and a rename, so a crash mid-write leaves the previous
// watermark intact.
func (s *Store) Write(date time.Time) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating watermark dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "watermark-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp watermark: %w", err)
	}
	tmpName := tmp.Name()

	_, writeErr := tmp.WriteString(date.Format(model.DateLayout))
	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing watermark: %w", writeErr)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publishing watermark: %w", err)
	}
	return nil
}

// Read returns the persisted date. The second return is false when no
// watermark exists yet.
func (s *Store) Read() (time.Time, bool, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("reading watermark: %w", err)
	}

	date, err := time.Parse(model.DateLayout, strings.TrimSpace(string(raw)))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parsing watermark: %w", err)
	}
	return date, true, nil
}
