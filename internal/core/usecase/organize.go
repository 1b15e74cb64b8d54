package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/destination-organizer/internal/core/classification"
	"github.com/kirillkom/destination-organizer/internal/core/domain"
	"github.com/kirillkom/destination-organizer/internal/core/ports"
)

const (
	noteNoText          = "no readable text"
	noteNoDestinations  = "no destinations detected"
	noteUnavailable     = "classification unavailable"
	defaultPageLimit    = 2
	defaultClassifyWait = 2 * time.Minute
)

type OrganizeOptions struct {
	PageLimit       int
	ClassifyTimeout time.Duration
}

type OrganizeDocumentUseCase struct {
	extractor  ports.TextExtractor
	classifier ports.DestinationClassifier
	processor  ports.DestinationProcessor
	ledger     ports.PlacementLedger
	diag       ports.Diagnostics
	metrics    ports.OrganizerMetrics
	opts       OrganizeOptions
}

func NewOrganizeDocumentUseCase(
	extractor ports.TextExtractor,
	classifier ports.DestinationClassifier,
	processor ports.DestinationProcessor,
	ledger ports.PlacementLedger,
	diag ports.Diagnostics,
	metrics ports.OrganizerMetrics,
	opts OrganizeOptions,
) *OrganizeDocumentUseCase {
	if diag == nil {
		diag = nopDiagnostics{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if opts.PageLimit <= 0 {
		opts.PageLimit = defaultPageLimit
	}
	if opts.ClassifyTimeout <= 0 {
		opts.ClassifyTimeout = defaultClassifyWait
	}
	return &OrganizeDocumentUseCase{
		extractor:  extractor,
		classifier: classifier,
		processor:  processor,
		ledger:     ledger,
		diag:       diag,
		metrics:    metrics,
		opts:       opts,
	}
}

// Organize runs one document through the pipeline. Extraction and
// classification failures are recorded on the document, not returned; the
// error result only reports ledger failures.
func (uc *OrganizeDocumentUseCase) Organize(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	if doc == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "organize document", fmt.Errorf("document is nil"))
	}
	start := time.Now()

	if err := uc.markStatus(ctx, doc, domain.StatusProcessing, ""); err != nil {
		return doc, fmt.Errorf("set status=processing: %w", err)
	}

	records, note := uc.destinations(ctx, doc)
	if len(records) == 0 {
		uc.metrics.ObserveDocument(domain.StatusSkipped, time.Since(start).Seconds())
		slog.Info("document_skipped", "document_id", doc.ID, "filename", doc.Filename, "reason", note)
		if err := uc.markStatus(ctx, doc, domain.StatusSkipped, note); err != nil {
			return doc, fmt.Errorf("set status=skipped: %w", err)
		}
		return doc, nil
	}

	outcomes := uc.processor.ProcessNamed(ctx, doc.ID, doc.SourcePath, doc.Filename, records)
	doc.Outcomes = outcomes

	var counts domain.OutcomeCounts
	counts.Add(outcomes)
	slog.Info("document_processed",
		"document_id", doc.ID,
		"filename", doc.Filename,
		"destinations", len(records),
		"placed", counts.Placed,
		"skipped", counts.Skipped,
		"rejected", counts.Rejected,
		"failed", counts.Failed,
		"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
	)

	if uc.ledger != nil {
		if err := uc.ledger.RecordOutcomes(ctx, doc.ID, outcomes); err != nil {
			uc.metrics.ObserveDocument(domain.StatusFailed, time.Since(start).Seconds())
			if failErr := uc.markStatus(ctx, doc, domain.StatusFailed, err.Error()); failErr != nil {
				return doc, fmt.Errorf("record outcomes: %w; mark failed status: %v", err, failErr)
			}
			return doc, fmt.Errorf("record outcomes: %w", err)
		}
	}

	uc.metrics.ObserveDocument(domain.StatusOrganized, time.Since(start).Seconds())
	if err := uc.markStatus(ctx, doc, domain.StatusOrganized, ""); err != nil {
		return doc, fmt.Errorf("set status=organized: %w", err)
	}
	return doc, nil
}

// destinations extracts and classifies the document. It returns no records
// plus a note when there is nothing to place.
func (uc *OrganizeDocumentUseCase) destinations(ctx context.Context, doc *domain.Document) ([]domain.RawDestinationRecord, string) {
	text, err := uc.extractor.Extract(ctx, doc.SourcePath, uc.opts.PageLimit)
	if err != nil {
		uc.diag.Write(ports.DiagnosticGeneral, fmt.Sprintf("[ERROR] Cannot read '%s': %v", doc.SourcePath, err))
		slog.Warn("extract_failed", "document_id", doc.ID, "filename", doc.Filename, "error", err)
		text = ""
	}
	if strings.TrimSpace(text) == "" {
		return nil, noteNoText
	}

	uc.diag.Write(ports.DiagnosticGeneral, fmt.Sprintf("\n[DOCUMENT] %s", doc.Filename))

	classifyCtx, cancel := context.WithTimeout(ctx, uc.opts.ClassifyTimeout)
	defer cancel()
	raw, err := uc.classifier.Classify(classifyCtx, text, doc.Filename)
	if err != nil {
		uc.diag.Write(ports.DiagnosticGeneral, fmt.Sprintf("[API ERROR] %s -> %v", doc.Filename, err))
		_, kind := domain.KindOf(err)
		slog.Warn("classify_failed",
			"document_id", doc.ID,
			"filename", doc.Filename,
			"error_kind", kind,
			"error", domain.WrapError(domain.ErrClassificationUnavailable, "classify document", err),
		)
		return nil, noteUnavailable
	}
	uc.diag.Write(ports.DiagnosticRawResponse, fmt.Sprintf("\n\n[RAW - %s]\n%s", doc.Filename, raw))

	result := classification.Parse(raw)
	if !result.OK() {
		uc.diag.Write(ports.DiagnosticParseError, fmt.Sprintf("\n[JSON ERROR] %s\nParse error: %v\nReturned:\n%s\n", doc.Filename, result.Err, raw))
		slog.Warn("classification_parse_failed", "document_id", doc.ID, "filename", doc.Filename, "error", result.Err)
		return nil, noteUnavailable
	}
	if len(result.Records) == 0 {
		return nil, noteNoDestinations
	}
	return result.Records, ""
}

func (uc *OrganizeDocumentUseCase) markStatus(ctx context.Context, doc *domain.Document, status domain.DocumentStatus, note string) error {
	doc.Status = status
	doc.Note = note
	doc.UpdatedAt = time.Now().UTC()
	if uc.ledger == nil {
		return nil
	}
	return uc.ledger.UpdateStatus(ctx, doc.ID, status, note)
}
