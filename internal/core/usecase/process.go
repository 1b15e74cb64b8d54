package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/kirillkom/destination-organizer/internal/core/destination"
	"github.com/kirillkom/destination-organizer/internal/core/domain"
	"github.com/kirillkom/destination-organizer/internal/core/ports"
	"github.com/kirillkom/destination-organizer/internal/core/taxonomy"
)

type ClassificationResultProcessor struct {
	normalizer *taxonomy.Normalizer
	resolver   *destination.Resolver
	dedup      *destination.Deduplicator
	placer     ports.Placer
	diag       ports.Diagnostics
	metrics    ports.OrganizerMetrics
}

func NewClassificationResultProcessor(
	normalizer *taxonomy.Normalizer,
	resolver *destination.Resolver,
	dedup *destination.Deduplicator,
	placer ports.Placer,
	diag ports.Diagnostics,
	metrics ports.OrganizerMetrics,
) *ClassificationResultProcessor {
	if diag == nil {
		diag = nopDiagnostics{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &ClassificationResultProcessor{
		normalizer: normalizer,
		resolver:   resolver,
		dedup:      dedup,
		placer:     placer,
		diag:       diag,
		metrics:    metrics,
	}
}

func (p *ClassificationResultProcessor) Process(
	ctx context.Context,
	documentID, sourcePath string,
	records []domain.RawDestinationRecord,
) []domain.PlacementOutcome {
	return p.ProcessNamed(ctx, documentID, sourcePath, filepath.Base(sourcePath), records)
}

// ProcessNamed handles records in order. A bad record never stops the
// remaining ones; every record yields exactly one outcome. filename is reduced
// to its base name; one that still cannot name a file rejects every record.
func (p *ClassificationResultProcessor) ProcessNamed(
	ctx context.Context,
	documentID, sourcePath, filename string,
	records []domain.RawDestinationRecord,
) []domain.PlacementOutcome {
	outcomes := make([]domain.PlacementOutcome, 0, len(records))
	if len(records) == 0 {
		return outcomes
	}

	source := absPath(sourcePath)
	name, nameOK := destination.SafeFilename(filename)
	for _, raw := range records {
		var outcome domain.PlacementOutcome
		if nameOK {
			outcome = p.processRecord(ctx, documentID, source, name, raw)
		} else {
			outcome = p.reject(documentID, filename, raw, p.normalizer.Normalize(raw), &domain.Rejection{
				Reason:     domain.RejectUnsafeSegment,
				DocumentID: documentID,
				Record:     raw,
			})
		}
		p.metrics.ObserveOutcome(outcome.Status)
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (p *ClassificationResultProcessor) processRecord(
	ctx context.Context,
	documentID, source, filename string,
	raw domain.RawDestinationRecord,
) domain.PlacementOutcome {
	normalized := p.normalizer.Normalize(raw)
	outcome := domain.PlacementOutcome{
		DocumentID:  documentID,
		Destination: normalized,
		Record:      raw,
	}

	path, rejection := p.resolver.Resolve(documentID, raw, normalized)
	if rejection != nil {
		return p.reject(documentID, filename, raw, normalized, rejection)
	}

	target := absPath(path.File(filename))
	key := domain.PlacementKey{Source: source, Destination: target}
	if !p.dedup.ShouldPlace(key) {
		slog.Info("placement_skipped", "document_id", documentID, "filename", filename, "destination", path.String())
		outcome.Status = domain.OutcomeSkipped
		outcome.Reason = domain.SkipAlreadyPlaced
		outcome.Path = target
		return outcome
	}

	written, err := p.placer.Place(ctx, source, path.Dir(), filename)
	if err != nil {
		p.dedup.Forget(key)
		wrapped := domain.WrapError(domain.ErrPlacementFailure, "place document", err)
		p.diag.Write(ports.DiagnosticGeneral, fmt.Sprintf("[COPY ERROR] %s -> %s: %v", filename, path.Dir(), err))
		slog.Error("placement_failed", "document_id", documentID, "filename", filename, "destination", path.String(), "error", err)
		outcome.Status = domain.OutcomeFailed
		outcome.Path = target
		outcome.Err = wrapped
		outcome.Error = wrapped.Error()
		return outcome
	}

	p.diag.Write(ports.DiagnosticGeneral, fmt.Sprintf("[COPIED] %s -> %s", filename, written))
	slog.Info("placement_done", "document_id", documentID, "filename", filename, "path", written)
	outcome.Status = domain.OutcomePlaced
	outcome.Path = written
	return outcome
}

func (p *ClassificationResultProcessor) reject(
	documentID, filename string,
	raw domain.RawDestinationRecord,
	normalized domain.NormalizedDestination,
	rejection *domain.Rejection,
) domain.PlacementOutcome {
	rejection.Normalized = normalized
	p.diag.Write(ports.DiagnosticParseError, fmt.Sprintf("[%s] %s -> %s", rejection.Reason, filename, formatRecord(raw)))
	slog.Warn("destination_rejected",
		"document_id", documentID,
		"filename", filename,
		"reason", string(rejection.Reason),
		"city", raw.City,
		"country", raw.Country,
		"continent", raw.Continent,
	)
	return domain.PlacementOutcome{
		DocumentID:  documentID,
		Status:      domain.OutcomeRejected,
		Reason:      string(rejection.Reason),
		Destination: normalized,
		Record:      raw,
		Err:         rejection,
		Error:       rejection.Error(),
	}
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

func formatRecord(raw domain.RawDestinationRecord) string {
	if raw.Fields != nil {
		if encoded, err := json.Marshal(raw.Fields); err == nil {
			return string(encoded)
		}
	}
	return fmt.Sprintf("{city:%q country:%q continent:%q}", raw.City, raw.Country, raw.Continent)
}
