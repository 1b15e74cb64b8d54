package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kirillkom/destination-organizer/internal/core/domain"
)

func newLedgerWithMock(t *testing.T) (*Ledger, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &Ledger{db: db}, mock, func() { _ = db.Close() }
}

func TestGetDocumentReturnsDomainNotFound(t *testing.T) {
	ledger, mock, done := newLedgerWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, run_id, filename, source_path").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := ledger.GetDocument(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetDocumentLoadsPlacements(t *testing.T) {
	ledger, mock, done := newLedgerWithMock(t)
	defer done()

	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, run_id, filename, source_path").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "run_id", "filename", "source_path", "status", "note", "created_at", "updated_at"}).
			AddRow("doc-1", "run-1", "trip.pdf", "/in/trip.pdf", "organized", "", now, now))
	mock.ExpectQuery("FROM placements").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "reason", "path", "city", "country", "continent", "record", "error_message"}).
			AddRow("placed", "", "/out/EUROPE/France/Paris/trip.pdf", "Paris", "France", "EUROPE", []byte(`{"city":"paris","country":"fr","continent":"europe"}`), "").
			AddRow("rejected", "INCOMPLETE", "", "", "", "", []byte(`{"city":"Rome"}`), "incomplete destination"))

	doc, err := ledger.GetDocument(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if doc.Status != domain.StatusOrganized || len(doc.Outcomes) != 2 {
		t.Fatalf("unexpected document %+v", doc)
	}
	if doc.Outcomes[0].Destination.Continent != domain.ContinentEurope || doc.Outcomes[0].Record.City != "paris" {
		t.Fatalf("unexpected first outcome %+v", doc.Outcomes[0])
	}
	if doc.Outcomes[1].Reason != string(domain.RejectIncomplete) {
		t.Fatalf("unexpected second outcome %+v", doc.Outcomes[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateStatusReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	ledger, mock, done := newLedgerWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE documents").
		WithArgs("missing", string(domain.StatusProcessing), "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := ledger.UpdateStatus(context.Background(), "missing", domain.StatusProcessing, "")
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecordOutcomesReplacesRowsInTransaction(t *testing.T) {
	ledger, mock, done := newLedgerWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM placements").WithArgs("doc-1").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO placements").
		WithArgs("doc-1", 0, "placed", "", "/out/ASIA/Japan/Tokyo/a.pdf", "Tokyo", "Japan", "ASIA", sqlmock.AnyArg(), "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO placements").
		WithArgs("doc-1", 1, "failed", "", sqlmock.AnyArg(), "Lima", "Peru", "LATAM", sqlmock.AnyArg(), "disk full", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := ledger.RecordOutcomes(context.Background(), "doc-1", []domain.PlacementOutcome{
		{
			Status:      domain.OutcomePlaced,
			Path:        "/out/ASIA/Japan/Tokyo/a.pdf",
			Destination: domain.NormalizedDestination{City: "Tokyo", Country: "Japan", Continent: domain.ContinentAsia},
		},
		{
			Status:      domain.OutcomeFailed,
			Path:        "/out/LATAM/Peru/Lima/a.pdf",
			Destination: domain.NormalizedDestination{City: "Lima", Country: "Peru", Continent: domain.ContinentLATAM},
			Err:         errors.New("disk full"),
		},
	})
	if err != nil {
		t.Fatalf("RecordOutcomes() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecordOutcomesRollsBackOnInsertError(t *testing.T) {
	ledger, mock, done := newLedgerWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM placements").WithArgs("doc-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO placements").WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	err := ledger.RecordOutcomes(context.Background(), "doc-1", []domain.PlacementOutcome{{Status: domain.OutcomePlaced}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestHasOrganizedSource(t *testing.T) {
	ledger, mock, done := newLedgerWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("/in/a.pdf", string(domain.StatusOrganized)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	found, err := ledger.HasOrganizedSource(context.Background(), "/in/a.pdf")
	if err != nil {
		t.Fatalf("HasOrganizedSource() error = %v", err)
	}
	if !found {
		t.Fatalf("expected organized source")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
