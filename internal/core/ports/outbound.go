package ports

import (
	"context"
	"io"

	"github.com/kirillkom/destination-organizer/internal/core/domain"
)

// TextExtractor extracts plain text from the first pageLimit pages of a file.
type TextExtractor interface {
	Extract(ctx context.Context, path string, pageLimit int) (string, error)
}

// DestinationClassifier asks the model for destinations and returns its raw text.
type DestinationClassifier interface {
	Classify(ctx context.Context, text, documentName string) (string, error)
}

// Placer copies a source file into destDir, creating it when missing, and
// returns the written path.
type Placer interface {
	Place(ctx context.Context, sourcePath, destDir, filename string) (string, error)
}

// ObjectStorage stores uploaded source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) (string, error)
}

// MessageQueue publishes/consumes document events.
type MessageQueue interface {
	PublishDocument(ctx context.Context, event domain.DocumentEvent) error
	SubscribeDocuments(ctx context.Context, handler func(context.Context, domain.DocumentEvent) error) error
}

// PlacementLedger persists document state and placement outcomes.
type PlacementLedger interface {
	RecordDocument(ctx context.Context, doc *domain.Document) error
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, note string) error
	RecordOutcomes(ctx context.Context, documentID string, outcomes []domain.PlacementOutcome) error
	GetDocument(ctx context.Context, id string) (*domain.Document, error)
	// HasOrganizedSource reports whether any document read from sourcePath
	// finished with status organized.
	HasOrganizedSource(ctx context.Context, sourcePath string) (bool, error)
}

type DiagnosticCategory string

const (
	DiagnosticGeneral     DiagnosticCategory = "general"
	DiagnosticRawResponse DiagnosticCategory = "raw-response"
	DiagnosticParseError  DiagnosticCategory = "parse-error"
)

// Diagnostics is an append-only text sink. Nothing reads it back.
type Diagnostics interface {
	Write(category DiagnosticCategory, message string)
	Header(title string)
}

// OrganizerMetrics observes document and placement activity.
type OrganizerMetrics interface {
	ObserveDocument(status domain.DocumentStatus, seconds float64)
	ObserveOutcome(status domain.OutcomeStatus)
}
