package localfs

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPlaceCreatesDirectoriesAndPreservesMtime(t *testing.T) {
	src := filepath.Join(t.TempDir(), "trip.pdf")
	if err := os.WriteFile(src, []byte("%PDF-1.4 body"), 0o640); err != nil {
		t.Fatalf("write source: %v", err)
	}
	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(src, mtime, mtime); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	destDir := filepath.Join(t.TempDir(), "EUROPE", "France", "Paris")
	written, err := NewPlacer().Place(context.Background(), src, destDir, "trip.pdf")
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	if written != filepath.Join(destDir, "trip.pdf") {
		t.Fatalf("unexpected path %q", written)
	}

	raw, err := os.ReadFile(written)
	if err != nil || string(raw) != "%PDF-1.4 body" {
		t.Fatalf("unexpected copy content %q err=%v", raw, err)
	}
	info, err := os.Stat(written)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.ModTime().Equal(mtime) {
		t.Fatalf("expected mtime %v, got %v", mtime, info.ModTime())
	}

	entries, _ := os.ReadDir(destDir)
	if len(entries) != 1 {
		t.Fatalf("temp files must not be left behind, got %d entries", len(entries))
	}
}

func TestPlaceOverwritesExistingTarget(t *testing.T) {
	src := filepath.Join(t.TempDir(), "trip.pdf")
	if err := os.WriteFile(src, []byte("new"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	destDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(destDir, "trip.pdf"), []byte("old"), 0o644); err != nil {
		t.Fatalf("write target: %v", err)
	}

	written, err := NewPlacer().Place(context.Background(), src, destDir, "trip.pdf")
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	raw, _ := os.ReadFile(written)
	if string(raw) != "new" {
		t.Fatalf("expected overwritten content, got %q", raw)
	}
	if raw, _ := os.ReadFile(src); string(raw) != "new" {
		t.Fatalf("source must be untouched")
	}
}

func TestPlaceMissingSource(t *testing.T) {
	_, err := NewPlacer().Place(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"), t.TempDir(), "missing.pdf")
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestStorageSave(t *testing.T) {
	storage, err := New(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	path, err := storage.Save(context.Background(), "id_trip.pdf", bytes.NewBufferString("payload"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !filepath.IsAbs(path) || filepath.Base(path) != "id_trip.pdf" {
		t.Fatalf("unexpected stored path %q", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(raw) != "payload" {
		t.Fatalf("unexpected content %q", raw)
	}
}
