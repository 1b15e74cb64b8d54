package plaintext

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestExtractHonorsPageLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "itinerary.txt")
	if err := os.WriteFile(path, []byte("page one\fpage two\fpage three"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	text, err := NewExtractor().Extract(context.Background(), path, 2)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "page one\npage two" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractRejectsBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.txt")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 0x00}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewExtractor().Extract(context.Background(), path, 2); err == nil {
		t.Fatalf("expected error for binary content")
	}
}
