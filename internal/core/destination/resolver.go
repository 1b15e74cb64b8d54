package destination

import (
	"path/filepath"
	"strings"

	"github.com/kirillkom/destination-organizer/internal/core/domain"
)

// Resolver maps a normalized destination onto a directory under root.
type Resolver struct {
	root string
}

func NewResolver(root string) *Resolver {
	return &Resolver{root: filepath.Clean(root)}
}

// Resolve returns the destination path, or a rejection when a segment is
// empty or could escape its parent directory.
func (r *Resolver) Resolve(
	documentID string,
	raw domain.RawDestinationRecord,
	normalized domain.NormalizedDestination,
) (domain.DestinationPath, *domain.Rejection) {
	if !normalized.Complete() {
		return domain.DestinationPath{}, &domain.Rejection{
			Reason:     domain.RejectIncomplete,
			DocumentID: documentID,
			Record:     raw,
			Normalized: normalized,
		}
	}

	for _, segment := range []string{string(normalized.Continent), normalized.Country, normalized.City} {
		if !safeSegment(segment) {
			return domain.DestinationPath{}, &domain.Rejection{
				Reason:     domain.RejectUnsafeSegment,
				DocumentID: documentID,
				Record:     raw,
				Normalized: normalized,
			}
		}
	}

	return domain.DestinationPath{
		Root:      r.root,
		Continent: normalized.Continent,
		Country:   normalized.Country,
		City:      normalized.City,
	}, nil
}

// SafeFilename reduces name to its last element and reports whether the
// result can be used as a file name inside a destination directory.
func SafeFilename(name string) (string, bool) {
	base := filepath.Base(filepath.FromSlash(strings.ReplaceAll(name, "\\", "/")))
	if base == "" || base == string(filepath.Separator) {
		return base, false
	}
	return base, safeSegment(base)
}

func safeSegment(segment string) bool {
	if segment == "." || segment == ".." {
		return false
	}
	return !strings.ContainsAny(segment, "/\\\x00")
}
