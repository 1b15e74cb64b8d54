package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kirillkom/destination-organizer/internal/core/domain"
)

type organizerFake struct {
	seen   []string
	result func(doc *domain.Document) (*domain.Document, error)
}

func (f *organizerFake) Organize(_ context.Context, doc *domain.Document) (*domain.Document, error) {
	f.seen = append(f.seen, doc.Filename)
	if f.result != nil {
		return f.result(doc)
	}
	doc.Status = domain.StatusOrganized
	doc.Outcomes = []domain.PlacementOutcome{{Status: domain.OutcomePlaced}}
	return doc, nil
}

func writeSourceFiles(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.pdf"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	return dir
}

func TestSweepFiltersByExtensionAndKeyword(t *testing.T) {
	dir := writeSourceFiles(t, "a.pdf", "B.PDF", "notes.txt", "invoice-draft.pdf")
	organizer := &organizerFake{}
	ledger := &ledgerFake{}
	diag := &diagnosticsFake{}
	uc := NewSweepSourceUseCase(organizer, ledger, diag, SweepOptions{
		SourceDir:      dir,
		IgnoreKeywords: []string{"", "DRAFT"},
	})

	report, err := uc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if report.RunID == "" {
		t.Fatalf("expected run id")
	}
	if report.Seen != 3 || report.Ignored != 1 || report.Classified != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Outcomes.Placed != 2 {
		t.Fatalf("expected 2 placed outcomes, got %+v", report.Outcomes)
	}
	if len(organizer.seen) != 2 || organizer.seen[0] != "B.PDF" || organizer.seen[1] != "a.pdf" {
		t.Fatalf("unexpected organized files %v", organizer.seen)
	}
	if len(ledger.recorded) != 2 || ledger.recorded[0].RunID != report.RunID {
		t.Fatalf("expected ledger records tagged with run id, got %+v", ledger.recorded)
	}
	if len(diag.headers) != 2 || diag.headers[0] != "START" || diag.headers[1] != "END" {
		t.Fatalf("expected START/END headers, got %v", diag.headers)
	}
}

func TestSweepCountsSkippedDocuments(t *testing.T) {
	dir := writeSourceFiles(t, "empty.pdf", "nothing.pdf", "broken.pdf")
	organizer := &organizerFake{result: func(doc *domain.Document) (*domain.Document, error) {
		switch doc.Filename {
		case "empty.pdf":
			doc.Status, doc.Note = domain.StatusSkipped, noteNoText
		case "nothing.pdf":
			doc.Status, doc.Note = domain.StatusSkipped, noteNoDestinations
		default:
			return doc, errors.New("ledger down")
		}
		return doc, nil
	}}
	uc := NewSweepSourceUseCase(organizer, nil, nil, SweepOptions{SourceDir: dir, Extensions: []string{"pdf"}})

	report, err := uc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if report.NoText != 1 || report.NoResults != 1 || report.Seen != 3 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Failed != 1 || report.Classified != 0 {
		t.Fatalf("a document whose organize failed must count as failed, got %+v", report)
	}
}

func TestSweepCountsFailedStatusAndLedgerRecordErrors(t *testing.T) {
	dir := writeSourceFiles(t, "a.pdf")
	organizer := &organizerFake{result: func(doc *domain.Document) (*domain.Document, error) {
		doc.Status = domain.StatusFailed
		return doc, nil
	}}
	uc := NewSweepSourceUseCase(organizer, nil, nil, SweepOptions{SourceDir: dir})

	report, err := uc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if report.Failed != 1 || report.Classified != 0 {
		t.Fatalf("unexpected report %+v", report)
	}

	broken := NewSweepSourceUseCase(&organizerFake{}, &ledgerFake{recordErr: errors.New("disk full")}, nil, SweepOptions{SourceDir: dir})
	report, err = broken.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if report.Failed != 1 {
		t.Fatalf("ledger record errors must count as failed, got %+v", report)
	}
}

func TestSweepDoesNotReclassifyOrganizedSources(t *testing.T) {
	dir := writeSourceFiles(t, "paris.pdf", "tokyo.pdf")
	ledger := &ledgerFake{}
	classifier := &classifierFake{raw: `[{"city":"Paris","country":"France","continent":"europe"}]`}
	organizer, _, _, _ := newOrganizerForTest(&extractorFake{text: "Paris itinerary"}, classifier, ledger)
	uc := NewSweepSourceUseCase(organizer, ledger, nil, SweepOptions{SourceDir: dir})

	first, err := uc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("first Sweep() error = %v", err)
	}
	if first.Classified != 2 || classifier.calls != 2 {
		t.Fatalf("first sweep: report %+v, classifier calls %d", first, classifier.calls)
	}

	second, err := uc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("second Sweep() error = %v", err)
	}
	if classifier.calls != 2 {
		t.Fatalf("second sweep must not call the classifier, got %d calls", classifier.calls)
	}
	if second.AlreadyOrganized != 2 || second.Classified != 0 || len(ledger.recorded) != 2 {
		t.Fatalf("second sweep: report %+v, ledger rows %d", second, len(ledger.recorded))
	}

	// A fresh process sees the same sources through the ledger.
	restarted := NewSweepSourceUseCase(organizer, ledger, nil, SweepOptions{SourceDir: dir})
	third, err := restarted.Sweep(context.Background())
	if err != nil {
		t.Fatalf("third Sweep() error = %v", err)
	}
	if classifier.calls != 2 || third.AlreadyOrganized != 2 {
		t.Fatalf("restarted sweep: report %+v, classifier calls %d", third, classifier.calls)
	}
}

func TestSweepRetriesSourcesThatWereNotOrganized(t *testing.T) {
	dir := writeSourceFiles(t, "empty.pdf")
	classifier := &classifierFake{raw: "[]"}
	organizer, _, _, _ := newOrganizerForTest(&extractorFake{text: "no places here"}, classifier, nil)
	uc := NewSweepSourceUseCase(organizer, nil, nil, SweepOptions{SourceDir: dir})

	for i := 0; i < 2; i++ {
		if _, err := uc.Sweep(context.Background()); err != nil {
			t.Fatalf("Sweep() error = %v", err)
		}
	}
	if classifier.calls != 2 {
		t.Fatalf("skipped documents stay eligible, got %d classifier calls", classifier.calls)
	}
}

func TestSweepMissingSourceDir(t *testing.T) {
	uc := NewSweepSourceUseCase(&organizerFake{}, nil, nil, SweepOptions{SourceDir: filepath.Join(t.TempDir(), "missing")})

	if _, err := uc.Sweep(context.Background()); err == nil {
		t.Fatalf("expected error for missing source dir")
	}
}

func TestSweepStopsOnCancelledContext(t *testing.T) {
	dir := writeSourceFiles(t, "a.pdf", "b.pdf")
	organizer := &organizerFake{}
	uc := NewSweepSourceUseCase(organizer, nil, nil, SweepOptions{SourceDir: dir})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := uc.Sweep(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if report == nil || len(organizer.seen) != 0 {
		t.Fatalf("expected partial report and no organized files")
	}
}
