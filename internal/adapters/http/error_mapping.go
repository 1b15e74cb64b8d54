package httpadapter

import (
	"net/http"

	"github.com/kirillkom/destination-organizer/internal/core/domain"
)

var statusByKind = map[error]int{
	domain.ErrInvalidInput:              http.StatusBadRequest,
	domain.ErrDocumentNotFound:          http.StatusNotFound,
	domain.ErrTemporary:                 http.StatusServiceUnavailable,
	domain.ErrClassificationUnavailable: http.StatusServiceUnavailable,
}

// mapErrorToHTTPStatus also returns the kind label used in error logs.
func mapErrorToHTTPStatus(err error) (int, string) {
	kind, label := domain.KindOf(err)
	if status, ok := statusByKind[kind]; ok {
		return status, label
	}
	return http.StatusInternalServerError, label
}
