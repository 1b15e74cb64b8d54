package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/destination-organizer/internal/config"
	"github.com/kirillkom/destination-organizer/internal/core/domain"
)

type ingestErrFake struct {
	err error
}

func (f ingestErrFake) Upload(context.Context, string, io.Reader) (*domain.Document, error) {
	return nil, f.err
}

type docsFake struct {
	err error
}

func (f docsFake) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Document{
		ID:       id,
		Filename: "trip.pdf",
		Status:   domain.StatusOrganized,
		Outcomes: []domain.PlacementOutcome{{
			DocumentID:  id,
			Status:      domain.OutcomePlaced,
			Path:        "/out/EUROPE/France/Paris/trip.pdf",
			Destination: domain.NormalizedDestination{City: "Paris", Country: "France", Continent: domain.ContinentEurope},
		}},
	}, nil
}

func TestGetDocumentByIDReturnsOutcomes(t *testing.T) {
	handler := NewRouter(config.Config{}, nil, docsFake{}, nil).Handler()

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/documents/doc-9", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var doc domain.Document
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if doc.ID != "doc-9" || len(doc.Outcomes) != 1 || doc.Outcomes[0].Destination.City != "Paris" {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestGetDocumentByIDReturns404ForNotFound(t *testing.T) {
	handler := NewRouter(
		config.Config{},
		nil,
		docsFake{err: domain.WrapError(domain.ErrDocumentNotFound, "get", errors.New("id=missing"))},
		nil,
	).Handler()

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/documents/missing", nil))
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestGetDocumentRejectsNestedPath(t *testing.T) {
	handler := NewRouter(config.Config{}, nil, docsFake{}, nil).Handler()

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/documents/a/b", nil))
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestUploadMapsTemporaryErrorTo503(t *testing.T) {
	handler := NewRouter(
		config.Config{},
		ingestErrFake{err: domain.WrapError(domain.ErrTemporary, "nats publish", errors.New("no servers"))},
		docsFake{},
		nil,
	).Handler()

	req, contentType := multipartUpload(t, "trip.pdf", "%PDF")
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
}

func TestUploadHidesInternalErrors(t *testing.T) {
	handler := NewRouter(
		config.Config{},
		ingestErrFake{err: errors.New("pq: password authentication failed")},
		docsFake{},
		nil,
	).Handler()

	req, contentType := multipartUpload(t, "trip.pdf", "%PDF")
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
	if strings.Contains(res.Body.String(), "password") {
		t.Fatalf("internal error leaked: %s", res.Body.String())
	}
}
