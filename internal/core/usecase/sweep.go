package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/kirillkom/destination-organizer/internal/core/domain"
	"github.com/kirillkom/destination-organizer/internal/core/ports"
)

type SweepOptions struct {
	SourceDir      string
	Extensions     []string
	IgnoreKeywords []string
}

// SweepSourceUseCase walks the source directory once and organizes every
// eligible file, one at a time. Sources organized by an earlier sweep, as
// remembered in memory or recorded in the ledger, are not classified again.
type SweepSourceUseCase struct {
	organizer ports.DocumentOrganizer
	ledger    ports.PlacementLedger
	diag      ports.Diagnostics
	opts      SweepOptions

	mu        sync.Mutex
	entropy   *ulid.MonotonicEntropy
	organized map[string]struct{}
}

func NewSweepSourceUseCase(
	organizer ports.DocumentOrganizer,
	ledger ports.PlacementLedger,
	diag ports.Diagnostics,
	opts SweepOptions,
) *SweepSourceUseCase {
	if diag == nil {
		diag = nopDiagnostics{}
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{".pdf"}
	}
	return &SweepSourceUseCase{
		organizer: organizer,
		ledger:    ledger,
		diag:      diag,
		opts:      opts,
		entropy:   ulid.Monotonic(rand.Reader, 0),
		organized: make(map[string]struct{}),
	}
}

func (uc *SweepSourceUseCase) Sweep(ctx context.Context) (*domain.RunReport, error) {
	report := &domain.RunReport{
		RunID:     uc.newRunID(),
		StartedAt: time.Now().UTC(),
	}

	uc.diag.Header("START")
	defer uc.diag.Header("END")

	entries, err := os.ReadDir(uc.opts.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("read source dir: %w", err)
	}

	slog.Info("sweep_started", "run_id", report.RunID, "source_dir", uc.opts.SourceDir, "entries", len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = time.Now().UTC()
			return report, err
		}
		if entry.IsDir() || !uc.eligible(entry.Name()) {
			continue
		}
		report.Seen++

		if uc.ignored(entry.Name()) {
			report.Ignored++
			uc.diag.Write(ports.DiagnosticGeneral, fmt.Sprintf("[IGNORED] %s", entry.Name()))
			slog.Info("document_ignored", "run_id", report.RunID, "filename", entry.Name())
			continue
		}

		uc.organizeOne(ctx, report, entry.Name())
	}

	report.FinishedAt = time.Now().UTC()
	slog.Info("sweep_finished",
		"run_id", report.RunID,
		"seen", report.Seen,
		"ignored", report.Ignored,
		"no_text", report.NoText,
		"no_results", report.NoResults,
		"already_organized", report.AlreadyOrganized,
		"classified", report.Classified,
		"documents_failed", report.Failed,
		"placed", report.Outcomes.Placed,
		"skipped", report.Outcomes.Skipped,
		"rejected", report.Outcomes.Rejected,
		"failed", report.Outcomes.Failed,
	)
	return report, nil
}

func (uc *SweepSourceUseCase) organizeOne(ctx context.Context, report *domain.RunReport, name string) {
	source := absPath(filepath.Join(uc.opts.SourceDir, name))
	if uc.alreadyOrganized(ctx, report.RunID, source) {
		report.AlreadyOrganized++
		slog.Info("document_already_organized", "run_id", report.RunID, "filename", name)
		return
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:         uuid.NewString(),
		RunID:      report.RunID,
		Filename:   name,
		SourcePath: source,
		Status:     domain.StatusUploaded,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if uc.ledger != nil {
		if err := uc.ledger.RecordDocument(ctx, doc); err != nil {
			report.Failed++
			slog.Error("ledger_record_failed", "run_id", report.RunID, "filename", name, "error", err)
			return
		}
	}

	organized, err := uc.organizer.Organize(ctx, doc)
	if err != nil {
		slog.Error("document_organize_failed", "run_id", report.RunID, "document_id", doc.ID, "filename", name, "error", err)
	}
	if organized == nil {
		report.Failed++
		return
	}
	report.Outcomes.Add(organized.Outcomes)

	switch {
	case err != nil || organized.Status == domain.StatusFailed:
		report.Failed++
	case organized.Status == domain.StatusSkipped && organized.Note == noteNoText:
		report.NoText++
	case organized.Status == domain.StatusSkipped:
		report.NoResults++
	default:
		report.Classified++
	}
	if err == nil && organized.Status == domain.StatusOrganized {
		uc.markOrganized(source)
	}
}

// alreadyOrganized checks the in-process set first, then the ledger. A ledger
// error is logged and the file is organized again.
func (uc *SweepSourceUseCase) alreadyOrganized(ctx context.Context, runID, source string) bool {
	uc.mu.Lock()
	_, seen := uc.organized[source]
	uc.mu.Unlock()
	if seen || uc.ledger == nil {
		return seen
	}

	found, err := uc.ledger.HasOrganizedSource(ctx, source)
	if err != nil {
		slog.Warn("ledger_lookup_failed", "run_id", runID, "source", source, "error", err)
		return false
	}
	if found {
		uc.markOrganized(source)
	}
	return found
}

func (uc *SweepSourceUseCase) markOrganized(source string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.organized[source] = struct{}{}
}

func (uc *SweepSourceUseCase) eligible(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range uc.opts.Extensions {
		allowed = strings.ToLower(strings.TrimSpace(allowed))
		if !strings.HasPrefix(allowed, ".") {
			allowed = "." + allowed
		}
		if ext == allowed {
			return true
		}
	}
	return false
}

func (uc *SweepSourceUseCase) ignored(name string) bool {
	lower := strings.ToLower(name)
	for _, keyword := range uc.opts.IgnoreKeywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" && strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func (uc *SweepSourceUseCase) newRunID() string {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return ulid.MustNew(ulid.Now(), uc.entropy).String()
}
