package repository

import (
	"errors"
	"testing"

	"github.com/kirillkom/destination-organizer/internal/core/domain"
)

func TestEncodeRecordKeepsOriginalFields(t *testing.T) {
	raw, err := EncodeRecord(domain.RawDestinationRecord{
		City:   "Lisboa",
		Fields: map[string]any{"cidade": "Lisboa", "pais": "Portugal"},
	})
	if err != nil {
		t.Fatalf("EncodeRecord() error = %v", err)
	}
	record, err := DecodeRecord(raw)
	if err != nil {
		t.Fatalf("DecodeRecord() error = %v", err)
	}
	if record.Fields["cidade"] != "Lisboa" || record.Fields["pais"] != "Portugal" {
		t.Fatalf("unexpected fields %+v", record.Fields)
	}
}

func TestEncodeRecordWithoutFields(t *testing.T) {
	raw, err := EncodeRecord(domain.RawDestinationRecord{City: "Oslo", Country: "Norway", Continent: "europe"})
	if err != nil {
		t.Fatalf("EncodeRecord() error = %v", err)
	}
	record, err := DecodeRecord(raw)
	if err != nil {
		t.Fatalf("DecodeRecord() error = %v", err)
	}
	if record.City != "Oslo" || record.Country != "Norway" || record.Continent != "europe" {
		t.Fatalf("unexpected record %+v", record)
	}
}

func TestDecodeRecordRejectsGarbage(t *testing.T) {
	if _, err := DecodeRecord([]byte("{oops")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestOutcomeErrorPrefersMessage(t *testing.T) {
	if got := OutcomeError(domain.PlacementOutcome{Error: "a", Err: errors.New("b")}); got != "a" {
		t.Fatalf("expected message, got %q", got)
	}
	if got := OutcomeError(domain.PlacementOutcome{Err: errors.New("b")}); got != "b" {
		t.Fatalf("expected wrapped error text, got %q", got)
	}
}
