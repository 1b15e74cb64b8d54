package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTemporary        = errors.New("temporary failure")

	ErrIncompleteDestination     = errors.New("incomplete destination")
	ErrUnsafeSegment             = errors.New("unsafe destination path segment")
	ErrPlacementFailure          = errors.New("placement failure")
	ErrClassificationUnavailable = errors.New("classification unavailable")
)

// errorKinds is ordered: the first match wins when an error carries several
// kinds, so ErrTemporary outranks what it wraps.
var errorKinds = []struct {
	kind  error
	label string
}{
	{ErrTemporary, "temporary"},
	{ErrInvalidInput, "invalid_input"},
	{ErrDocumentNotFound, "not_found"},
	{ErrClassificationUnavailable, "classification_unavailable"},
	{ErrPlacementFailure, "placement_failure"},
	{ErrUnsafeSegment, "unsafe_segment"},
	{ErrIncompleteDestination, "incomplete_destination"},
}

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// KindOf returns the first known kind err carries and a stable label for logs.
// Errors without a kind yield (nil, "internal").
func KindOf(err error) (error, string) {
	for _, k := range errorKinds {
		if errors.Is(err, k.kind) {
			return k.kind, k.label
		}
	}
	return nil, "internal"
}
