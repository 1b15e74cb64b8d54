// Package classification turns the classifier's raw text response into
// destination records.
package classification

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/destination-organizer/internal/core/domain"
)

// Accepted keys per field, tried in order. The first non-empty string wins.
var (
	cityKeys      = []string{"city", "cidade", "ciudad"}
	countryKeys   = []string{"country", "pais", "país"}
	continentKeys = []string{"continent", "continente"}
)

var errEmptyResponse = errors.New("empty classifier response")

// ParseResult is either a list of records or a parse failure. A failure is
// handled as "no destinations".
type ParseResult struct {
	Records []domain.RawDestinationRecord
	Err     error
}

func (r ParseResult) OK() bool {
	return r.Err == nil
}

func Parse(raw string) ParseResult {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return failed(errEmptyResponse)
	}

	var payload any
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		candidate := extractJSONArray(cleaned)
		if candidate == cleaned {
			return failed(fmt.Errorf("decode classifier json: %w", err))
		}
		if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
			return failed(fmt.Errorf("decode classifier json: %w", err))
		}
	}

	switch value := payload.(type) {
	case nil:
		return ParseResult{Records: []domain.RawDestinationRecord{}}
	case []any:
		return ParseResult{Records: recordsFromList(value)}
	case map[string]any:
		if nested, ok := value["destinations"].([]any); ok {
			return ParseResult{Records: recordsFromList(nested)}
		}
		return ParseResult{Records: []domain.RawDestinationRecord{recordFromObject(value)}}
	default:
		return failed(fmt.Errorf("decode classifier json: unexpected top-level %T", payload))
	}
}

func failed(err error) ParseResult {
	return ParseResult{Records: []domain.RawDestinationRecord{}, Err: domain.WrapError(domain.ErrClassificationUnavailable, "parse classification", err)}
}

func recordsFromList(items []any) []domain.RawDestinationRecord {
	out := make([]domain.RawDestinationRecord, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			// Kept as an empty record so it is reported as rejected.
			out = append(out, domain.RawDestinationRecord{Fields: map[string]any{"value": item}})
			continue
		}
		out = append(out, recordFromObject(obj))
	}
	return out
}

func recordFromObject(obj map[string]any) domain.RawDestinationRecord {
	lowered := make(map[string]any, len(obj))
	for key, value := range obj {
		lowered[strings.ToLower(strings.TrimSpace(key))] = value
	}
	return domain.RawDestinationRecord{
		City:      firstString(lowered, cityKeys),
		Country:   firstString(lowered, countryKeys),
		Continent: firstString(lowered, continentKeys),
		Fields:    obj,
	}
}

func firstString(obj map[string]any, keys []string) string {
	for _, key := range keys {
		value, ok := obj[key].(string)
		if ok && strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func stripFences(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```JSON", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

func extractJSONArray(raw string) string {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
