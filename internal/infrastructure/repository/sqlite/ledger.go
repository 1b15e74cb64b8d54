package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kirillkom/destination-organizer/internal/core/domain"
	"github.com/kirillkom/destination-organizer/internal/infrastructure/repository"
)

// Ledger is the single-file ledger used by local batch runs.
type Ledger struct {
	db *sql.DB
}

// Open opens (or creates) the database at path with WAL and foreign keys on,
// and creates the schema.
func Open(ctx context.Context, path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	ledger := &Ledger{db: db}
	if err := ledger.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return ledger, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) initSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL DEFAULT '',
	filename TEXT NOT NULL,
	source_path TEXT NOT NULL,
	status TEXT NOT NULL,
	note TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS placements (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	status TEXT NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	path TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	country TEXT NOT NULL DEFAULT '',
	continent TEXT NOT NULL DEFAULT '',
	record TEXT NOT NULL DEFAULT '{}',
	error_message TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	FOREIGN KEY(document_id) REFERENCES documents(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_documents_run_id ON documents(run_id);
CREATE INDEX IF NOT EXISTS idx_documents_source ON documents(source_path, status);
CREATE INDEX IF NOT EXISTS idx_placements_document ON placements(document_id, position);
`
	if _, err := l.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}
	return nil
}

func (l *Ledger) RecordDocument(ctx context.Context, doc *domain.Document) error {
	_, err := l.db.ExecContext(ctx, `
INSERT INTO documents (id, run_id, filename, source_path, status, note, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
		doc.ID, doc.RunID, doc.Filename, doc.SourcePath, string(doc.Status), doc.Note,
		formatTime(doc.CreatedAt), formatTime(doc.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (l *Ledger) HasOrganizedSource(ctx context.Context, sourcePath string) (bool, error) {
	var found int
	err := l.db.QueryRowContext(ctx, `
SELECT EXISTS (SELECT 1 FROM documents WHERE source_path = ? AND status = ?)
`, sourcePath, string(domain.StatusOrganized)).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("lookup organized source: %w", err)
	}
	return found == 1, nil
}

func (l *Ledger) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, note string) error {
	res, err := l.db.ExecContext(ctx, `
UPDATE documents SET status = ?, note = ?, updated_at = ? WHERE id = ?
`, string(status), note, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document status rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, "update document status", fmt.Errorf("id=%s", id))
	}
	return nil
}

func (l *Ledger) RecordOutcomes(ctx context.Context, documentID string, outcomes []domain.PlacementOutcome) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin outcomes tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM placements WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("clear placements: %w", err)
	}

	now := formatTime(time.Now())
	for idx, outcome := range outcomes {
		record, err := repository.EncodeRecord(outcome.Record)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO placements (
	document_id, position, status, reason, path, city, country, continent, record, error_message, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
			documentID, idx, string(outcome.Status), outcome.Reason, outcome.Path,
			outcome.Destination.City, outcome.Destination.Country, string(outcome.Destination.Continent),
			string(record), repository.OutcomeError(outcome), now,
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

func (l *Ledger) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	var doc domain.Document
	var status, createdAt, updatedAt string
	err := l.db.QueryRowContext(ctx, `
SELECT id, run_id, filename, source_path, status, note, created_at, updated_at
FROM documents WHERE id = ?
`, id).Scan(&doc.ID, &doc.RunID, &doc.Filename, &doc.SourcePath, &status, &doc.Note, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	doc.Status = domain.DocumentStatus(status)
	doc.CreatedAt = parseTime(createdAt)
	doc.UpdatedAt = parseTime(updatedAt)

	rows, err := l.db.QueryContext(ctx, `
SELECT status, reason, path, city, country, continent, record, error_message
FROM placements WHERE document_id = ? ORDER BY position ASC
`, id)
	if err != nil {
		return nil, fmt.Errorf("query placements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		outcome := domain.PlacementOutcome{DocumentID: id}
		var outcomeStatus, continent, record string
		if err := rows.Scan(
			&outcomeStatus, &outcome.Reason, &outcome.Path,
			&outcome.Destination.City, &outcome.Destination.Country, &continent,
			&record, &outcome.Error,
		); err != nil {
			return nil, fmt.Errorf("scan placement: %w", err)
		}
		outcome.Status = domain.OutcomeStatus(outcomeStatus)
		outcome.Destination.Continent = domain.Continent(continent)
		if outcome.Record, err = repository.DecodeRecord([]byte(record)); err != nil {
			return nil, err
		}
		doc.Outcomes = append(doc.Outcomes, outcome)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate placements: %w", err)
	}
	return &doc, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
