// Package repository holds helpers shared by the ledger backends.
package repository

import (
	"encoding/json"
	"fmt"

	"github.com/kirillkom/destination-organizer/internal/core/domain"
)

// EncodeRecord serializes the raw model record as it was received.
func EncodeRecord(record domain.RawDestinationRecord) ([]byte, error) {
	fields := record.Fields
	if fields == nil {
		fields = map[string]any{
			"city":      record.City,
			"country":   record.Country,
			"continent": record.Continent,
		}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal placement record: %w", err)
	}
	return raw, nil
}

func DecodeRecord(raw []byte) (domain.RawDestinationRecord, error) {
	var fields map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &fields); err != nil {
			return domain.RawDestinationRecord{}, fmt.Errorf("unmarshal placement record: %w", err)
		}
	}
	record := domain.RawDestinationRecord{Fields: fields}
	record.City, _ = fields["city"].(string)
	record.Country, _ = fields["country"].(string)
	record.Continent, _ = fields["continent"].(string)
	return record, nil
}

func OutcomeError(outcome domain.PlacementOutcome) string {
	if outcome.Error != "" {
		return outcome.Error
	}
	if outcome.Err != nil {
		return outcome.Err.Error()
	}
	return ""
}
