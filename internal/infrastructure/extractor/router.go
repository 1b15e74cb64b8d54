package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kirillkom/destination-organizer/internal/core/domain"
	"github.com/kirillkom/destination-organizer/internal/core/ports"
)

// Router picks an extractor by file extension.
type Router struct {
	byExt map[string]ports.TextExtractor
}

func NewRouter() *Router {
	return &Router{byExt: make(map[string]ports.TextExtractor)}
}

// Register binds ext (with or without the leading dot) to extractor.
func (r *Router) Register(ext string, extractor ports.TextExtractor) *Router {
	r.byExt[normalizeExt(ext)] = extractor
	return r
}

func (r *Router) Extract(ctx context.Context, path string, pageLimit int) (string, error) {
	ext := normalizeExt(filepath.Ext(path))
	extractor, ok := r.byExt[ext]
	if !ok {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", fmt.Errorf("no extractor for %q", ext))
	}
	return extractor.Extract(ctx, path, pageLimit)
}

func (r *Router) Supports(ext string) bool {
	_, ok := r.byExt[normalizeExt(ext)]
	return ok
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
