package ports

import (
	"context"
	"io"

	"github.com/kirillkom/destination-organizer/internal/core/domain"
)

// DestinationProcessor places one document under each classified destination.
// ProcessNamed places the copy under filename instead of the source base name.
type DestinationProcessor interface {
	Process(ctx context.Context, documentID, sourcePath string, records []domain.RawDestinationRecord) []domain.PlacementOutcome
	ProcessNamed(ctx context.Context, documentID, sourcePath, filename string, records []domain.RawDestinationRecord) []domain.PlacementOutcome
}

// DocumentOrganizer runs the full extract -> classify -> place pipeline for one file.
type DocumentOrganizer interface {
	Organize(ctx context.Context, doc *domain.Document) (*domain.Document, error)
}

// SourceSweeper enumerates the source directory and organizes every eligible file.
type SourceSweeper interface {
	Sweep(ctx context.Context) (*domain.RunReport, error)
}

// DocumentIngestor is the inbound contract for document uploads.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename string, body io.Reader) (*domain.Document, error)
}

// DocumentReader is the inbound read model for document state.
type DocumentReader interface {
	GetDocument(ctx context.Context, id string) (*domain.Document, error)
}
