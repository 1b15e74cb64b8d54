package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusOrganized  DocumentStatus = "organized"
	StatusSkipped    DocumentStatus = "skipped"
	StatusFailed     DocumentStatus = "failed"
)

type Document struct {
	ID         string             `json:"id"`
	RunID      string             `json:"run_id,omitempty"`
	Filename   string             `json:"filename"`
	SourcePath string             `json:"source_path"`
	Status     DocumentStatus     `json:"status"`
	Note       string             `json:"note,omitempty"`
	Outcomes   []PlacementOutcome `json:"outcomes,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// RunReport summarizes one sweep over the source directory.
type RunReport struct {
	RunID   string `json:"run_id"`
	Seen    int    `json:"seen"`
	Ignored int    `json:"ignored"`
	// AlreadyOrganized counts sources organized by an earlier sweep.
	AlreadyOrganized int           `json:"already_organized"`
	NoText           int           `json:"no_text"`
	NoResults        int           `json:"no_results"`
	Classified       int           `json:"classified"`
	Failed           int           `json:"failed"`
	Outcomes         OutcomeCounts `json:"outcomes"`
	StartedAt        time.Time     `json:"started_at"`
	FinishedAt       time.Time     `json:"finished_at"`
}

// DocumentEvent asks a worker to organize one source file.
type DocumentEvent struct {
	DocumentID string    `json:"document_id"`
	RunID      string    `json:"run_id,omitempty"`
	Filename   string    `json:"filename"`
	SourcePath string    `json:"source_path"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}
