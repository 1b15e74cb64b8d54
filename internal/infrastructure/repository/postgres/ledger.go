package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/destination-organizer/internal/core/domain"
	"github.com/kirillkom/destination-organizer/internal/infrastructure/repository"
)

// Ledger keeps document state and placement outcomes in Postgres.
type Ledger struct {
	db *sql.DB
}

func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *Ledger) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101701)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL DEFAULT '',
	filename TEXT NOT NULL,
	source_path TEXT NOT NULL,
	status TEXT NOT NULL,
	note TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS placements (
	id BIGSERIAL PRIMARY KEY,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	status TEXT NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	path TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	country TEXT NOT NULL DEFAULT '',
	continent TEXT NOT NULL DEFAULT '',
	record JSONB NOT NULL DEFAULT '{}'::jsonb,
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
CREATE INDEX IF NOT EXISTS idx_documents_run_id ON documents(run_id);
CREATE INDEX IF NOT EXISTS idx_documents_source ON documents(source_path, status);
CREATE INDEX IF NOT EXISTS idx_placements_document ON placements(document_id, position);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *Ledger) RecordDocument(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (id, run_id, filename, source_path, status, note, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
		doc.ID, doc.RunID, doc.Filename, doc.SourcePath, string(doc.Status), doc.Note, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *Ledger) HasOrganizedSource(ctx context.Context, sourcePath string) (bool, error) {
	var found bool
	err := r.db.QueryRowContext(ctx, `
SELECT EXISTS (SELECT 1 FROM documents WHERE source_path = $1 AND status = $2)
`, sourcePath, string(domain.StatusOrganized)).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("lookup organized source: %w", err)
	}
	return found, nil
}

func (r *Ledger) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, note string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, note = $3, updated_at = $4
WHERE id = $1
`, id, string(status), note, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return ensureAffected(res, "update document status", id)
}

// RecordOutcomes replaces the placement rows of a document in one transaction.
func (r *Ledger) RecordOutcomes(ctx context.Context, documentID string, outcomes []domain.PlacementOutcome) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin outcomes tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM placements WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("clear placements: %w", err)
	}

	now := time.Now().UTC()
	for idx, outcome := range outcomes {
		recordJSON, err := repository.EncodeRecord(outcome.Record)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO placements (
	document_id, position, status, reason, path, city, country, continent, record, error_message, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`,
			documentID, idx, string(outcome.Status), outcome.Reason, outcome.Path,
			outcome.Destination.City, outcome.Destination.Country, string(outcome.Destination.Continent),
			recordJSON, repository.OutcomeError(outcome), now,
		)
		if err != nil {
			return fmt.Errorf("insert placement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit outcomes tx: %w", err)
	}
	return nil
}

func (r *Ledger) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, run_id, filename, source_path, status, note, created_at, updated_at
FROM documents
WHERE id = $1
`, id)

	var doc domain.Document
	var status string
	err := row.Scan(&doc.ID, &doc.RunID, &doc.Filename, &doc.SourcePath, &status, &doc.Note, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	doc.Status = domain.DocumentStatus(status)

	rows, err := r.db.QueryContext(ctx, `
SELECT status, reason, path, city, country, continent, record, error_message
FROM placements
WHERE document_id = $1
ORDER BY position ASC
`, id)
	if err != nil {
		return nil, fmt.Errorf("query placements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		outcome := domain.PlacementOutcome{DocumentID: id}
		var outcomeStatus, continent string
		var recordRaw []byte
		if err := rows.Scan(
			&outcomeStatus, &outcome.Reason, &outcome.Path,
			&outcome.Destination.City, &outcome.Destination.Country, &continent,
			&recordRaw, &outcome.Error,
		); err != nil {
			return nil, fmt.Errorf("scan placement: %w", err)
		}
		outcome.Status = domain.OutcomeStatus(outcomeStatus)
		outcome.Destination.Continent = domain.Continent(continent)
		if outcome.Record, err = repository.DecodeRecord(recordRaw); err != nil {
			return nil, err
		}
		doc.Outcomes = append(doc.Outcomes, outcome)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate placements: %w", err)
	}
	return &doc, nil
}

func ensureAffected(res sql.Result, op, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, op, fmt.Errorf("id=%s", id))
	}
	return nil
}
