// Package diagnostics keeps the human-readable run journal: one append-only
// file per category, shared START/END headers across all of them.
package diagnostics

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kirillkom/destination-organizer/internal/core/ports"
)

var fileNames = map[ports.DiagnosticCategory]string{
	ports.DiagnosticGeneral:     "general.log",
	ports.DiagnosticRawResponse: "raw_responses.log",
	ports.DiagnosticParseError:  "parse_errors.log",
}

// categoryOrder fixes the order headers are written in.
var categoryOrder = []ports.DiagnosticCategory{
	ports.DiagnosticGeneral,
	ports.DiagnosticRawResponse,
	ports.DiagnosticParseError,
}

type Journal struct {
	mu      sync.Mutex
	writers map[ports.DiagnosticCategory]io.Writer
	closers []io.Closer
	now     func() time.Time
}

// Open creates dir if needed and opens every category file for appending.
func Open(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	j := &Journal{
		writers: make(map[ports.DiagnosticCategory]io.Writer, len(fileNames)),
		now:     time.Now,
	}
	for _, category := range categoryOrder {
		path := filepath.Join(dir, fileNames[category])
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			_ = j.Close()
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		j.writers[category] = f
		j.closers = append(j.closers, f)
	}
	return j, nil
}

// NewWriterJournal routes every category to the given writers. Missing
// categories fall back to the general writer.
func NewWriterJournal(writers map[ports.DiagnosticCategory]io.Writer) *Journal {
	return &Journal{writers: writers, now: time.Now}
}

func (j *Journal) Write(category ports.DiagnosticCategory, message string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.writeLocked(j.writerFor(category), message)
}

// Header writes "=== TITLE | timestamp ===" to every category.
func (j *Journal) Header(title string) {
	block := fmt.Sprintf("\n\n=== %s | %s ===\n", title, j.now().Format("2006-01-02 15:04:05.000000"))

	j.mu.Lock()
	defer j.mu.Unlock()
	seen := make(map[io.Writer]bool, len(categoryOrder))
	for _, category := range categoryOrder {
		w := j.writerFor(category)
		if w == nil || seen[w] {
			continue
		}
		seen[w] = true
		j.writeLocked(w, block)
	}
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	var errs []error
	for _, c := range j.closers {
		errs = append(errs, c.Close())
	}
	j.closers = nil
	return errors.Join(errs...)
}

func (j *Journal) writerFor(category ports.DiagnosticCategory) io.Writer {
	if w, ok := j.writers[category]; ok {
		return w
	}
	return j.writers[ports.DiagnosticGeneral]
}

func (j *Journal) writeLocked(w io.Writer, message string) {
	if w == nil {
		return
	}
	if _, err := io.WriteString(w, message+"\n"); err != nil {
		slog.Warn("diagnostics_write_failed", "error", err)
	}
}
