// Package dataset renders named tabular datasets as delimited files the
// landing zone and the warehouse loader both understand.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// Dataset is a named tabular payload: a header plus zero or more rows, every
// row exactly as wide as the header.
type Dataset struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Filename returns the file name the dataset lands under.
func (d Dataset) Filename() string {
	return d.Name + ".csv"
}

// Validate checks the dataset is writable: a name, a header, and rows that
// match the header width.
func (d Dataset) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("dataset name is required")
	}
	if len(d.Header) == 0 {
		return fmt.Errorf("dataset %s: header is required", d.Name)
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Header) {
			return fmt.Errorf("dataset %s: row %d has %d columns, header has %d",
				d.Name, i, len(row), len(d.Header))
		}
	}
	return nil
}

// WriteCSV writes the dataset under dir and returns the full path. The file
// is written to a temp name first and renamed so a crash never leaves a
// half-written dataset behind.
func (d Dataset) WriteCSV(dir string) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating dataset dir: %w", err)
	}

	path := filepath.Join(dir, d.Filename())
	tmp, err := os.CreateTemp(dir, d.Name+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp dataset file: %w", err)
	}
	tmpName := tmp.Name()

	writer := csv.NewWriter(tmp)
	writeErr := writer.Write(d.Header)
	if writeErr == nil {
		writeErr = writer.WriteAll(d.Rows)
	}
	if writeErr == nil {
		writer.Flush()
		writeErr = writer.Error()
	}
	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("writing dataset %s: %w", d.Name, writeErr)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("publishing dataset %s: %w", d.Name, err)
	}
	return path, nil
}
