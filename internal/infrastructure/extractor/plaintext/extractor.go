package plaintext

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// pageBreak separates pages in exported text itineraries.
const pageBreak = "\f"

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, path string, pageLimit int) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}

	if !utf8.Valid(raw) {
		return "", fmt.Errorf("unsupported binary format: %s", path)
	}

	pages := strings.Split(string(raw), pageBreak)
	if pageLimit > 0 && pageLimit < len(pages) {
		pages = pages[:pageLimit]
	}
	return strings.TrimSpace(strings.Join(pages, "\n")), nil
}
