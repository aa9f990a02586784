package watermark

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestReadMissingWatermark(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "watermark.txt"))
	_, found, err := store.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("expected no watermark before first write")
	}
}

func TestWriteThenRead(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "watermark.txt"))
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	if err := store.Write(date); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, found, err := store.Read()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !found {
		t.Fatal("expected watermark to exist")
	}
	if !got.Equal(date) {
		t.Fatalf("expected %s, got %s", date, got)
	}

	raw, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("reading raw file: %v", err)
	}
	if string(raw) != "2025-06-01" {
		t.Fatalf("expected single ISO date line, got %q", string(raw))
	}
}

func TestWriteOverwrites(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "watermark.txt"))
	if err := store.Write(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if err := store.Write(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("second write failed: %v", err)
	}
	got, _, err := store.Read()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got.Format("2006-01-02") != "2025-06-01" {
		t.Fatalf("expected overwritten watermark, got %s", got)
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watermark.txt")
	if err := os.WriteFile(path, []byte("not-a-date"), 0o644); err != nil {
		t.Fatalf("seeding garbage: %v", err)
	}
	if _, _, err := NewStore(path).Read(); err == nil {
		t.Fatal("expected parse error for garbage watermark")
	}
}
