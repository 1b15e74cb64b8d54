package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kirillkom/destination-organizer/internal/core/domain"
	"github.com/kirillkom/destination-organizer/internal/core/ports"
)

// DocumentEventHandler organizes documents announced on the queue. The
// ledger row already exists; it was written by the producer.
type DocumentEventHandler struct {
	organizer ports.DocumentOrganizer
	ledger    ports.PlacementLedger
	timeout   time.Duration
}

func NewDocumentEventHandler(organizer ports.DocumentOrganizer, ledger ports.PlacementLedger, timeout time.Duration) *DocumentEventHandler {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &DocumentEventHandler{organizer: organizer, ledger: ledger, timeout: timeout}
}

// Handle organizes the document an event names. Events that carry only an id
// are completed from the ledger.
func (h *DocumentEventHandler) Handle(ctx context.Context, event domain.DocumentEvent) (*domain.Document, error) {
	if strings.TrimSpace(event.DocumentID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "handle document event", fmt.Errorf("document id is required"))
	}
	if strings.TrimSpace(event.SourcePath) == "" {
		if err := h.completeFromLedger(ctx, &event); err != nil {
			return nil, err
		}
	}

	filename := event.Filename
	if filename == "" {
		filename = filepath.Base(event.SourcePath)
	}

	processCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	return h.organizer.Organize(processCtx, &domain.Document{
		ID:         event.DocumentID,
		RunID:      event.RunID,
		Filename:   filename,
		SourcePath: event.SourcePath,
		Status:     domain.StatusUploaded,
	})
}

func (h *DocumentEventHandler) completeFromLedger(ctx context.Context, event *domain.DocumentEvent) error {
	if h.ledger == nil {
		return domain.WrapError(domain.ErrInvalidInput, "handle document event", fmt.Errorf("source path is required without a ledger"))
	}
	stored, err := h.ledger.GetDocument(ctx, event.DocumentID)
	if err != nil {
		return fmt.Errorf("load document %s: %w", event.DocumentID, err)
	}
	if strings.TrimSpace(stored.SourcePath) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "handle document event", fmt.Errorf("document %s has no source path", event.DocumentID))
	}
	event.SourcePath = stored.SourcePath
	if event.Filename == "" {
		event.Filename = stored.Filename
	}
	if event.RunID == "" {
		event.RunID = stored.RunID
	}
	return nil
}
