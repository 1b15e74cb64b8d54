package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestExtractReturnsErrorForNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	if err := os.WriteFile(path, []byte("just some text, not a pdf"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	text, err := NewExtractor().Extract(context.Background(), path, 2)
	if err == nil {
		t.Fatalf("expected error")
	}
	if text != "" {
		t.Fatalf("expected empty text on failure, got %q", text)
	}
}

func TestExtractMissingFile(t *testing.T) {
	if _, err := NewExtractor().Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"), 2); err == nil {
		t.Fatalf("expected error")
	}
}
