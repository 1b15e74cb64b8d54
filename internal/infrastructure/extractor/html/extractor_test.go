package html

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractVisibleText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "booking.html")
	page := `<html><head><title>Booking</title><style>p{color:red}</style></head>
<body><h1>Your trip</h1><p>Hotel in   Lisbon,
 Portugal</p><script>var city = "Madrid";</script><p>Then Porto</p></body></html>`
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	text, err := NewExtractor().Extract(context.Background(), path, 2)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "Your trip\nHotel in Lisbon, Portugal\nThen Porto" {
		t.Fatalf("unexpected text %q", text)
	}
	if strings.Contains(text, "Madrid") || strings.Contains(text, "Booking") {
		t.Fatalf("script and head content must be skipped: %q", text)
	}
}

func TestExtractMissingFile(t *testing.T) {
	if _, err := NewExtractor().Extract(context.Background(), filepath.Join(t.TempDir(), "nope.html"), 1); err == nil {
		t.Fatalf("expected error")
	}
}
