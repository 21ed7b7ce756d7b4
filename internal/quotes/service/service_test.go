package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"conciergerie_backend/internal/quotes/repository"
	"conciergerie_backend/internal/quotes/transport"
	"conciergerie_backend/internal/render"
	requestsvc "conciergerie_backend/internal/requests/service"
	"conciergerie_backend/platform/apperr"
	"conciergerie_backend/platform/logger"
	"conciergerie_backend/platform/validator"

	"github.com/google/uuid"

	reqrepo "conciergerie_backend/internal/requests/repository"
)

type fakeQuoteStore struct {
	counterErr error
	counter    int
	quotes     []*repository.Quote
}

func (f *fakeQuoteStore) NextQuoteNumber(_ context.Context, year int) (string, error) {
	if f.counterErr != nil {
		return "", f.counterErr
	}
	f.counter++
	return "DEVIS-2025-001", nil
}

func (f *fakeQuoteStore) Insert(_ context.Context, quote *repository.Quote) error {
	f.quotes = append(f.quotes, quote)
	return nil
}

func (f *fakeQuoteStore) GetByID(context.Context, uuid.UUID) (*repository.Quote, error) {
	return nil, apperr.NotFound("devis introuvable")
}

type fakeGateway struct {
	detail    *requestsvc.RequestDetail
	finalized []uuid.UUID
}

func (f *fakeGateway) GetByID(_ context.Context, id uuid.UUID) (*requestsvc.RequestDetail, error) {
	if f.detail == nil {
		return nil, apperr.NotFound("demande introuvable")
	}
	return f.detail, nil
}

func (f *fakeGateway) Finalize(_ context.Context, id, quoteID uuid.UUID, expectedVersion int, metadata map[string]any) error {
	f.finalized = append(f.finalized, quoteID)
	return nil
}

type fakeEngine struct {
	calls int
}

func (f *fakeEngine) RenderPDF(_ context.Context, html string) ([]byte, error) {
	f.calls++
	return []byte("%PDF-fake"), nil
}

type fakeObjectStore struct {
	uploads []string
}

func (f *fakeObjectStore) EnsureBucketExists(context.Context, string) error { return nil }

func (f *fakeObjectStore) UploadPDF(_ context.Context, bucket, key string, payload []byte) (string, error) {
	f.uploads = append(f.uploads, key)
	return key, nil
}

func (f *fakeObjectStore) Download(context.Context, string, string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func readyDetail() *requestsvc.RequestDetail {
	name := "Marie Dupont"
	return &requestsvc.RequestDetail{
		QuoteRequest: reqrepo.QuoteRequest{
			ID:          uuid.New(),
			ClientName:  &name,
			ClientEmail: "marie@example.ch",
			ClientType:  "particulier",
			ServiceType: "nettoyage de fin de bail",
			Status:      "in_review",
			Version:     2,
		},
	}
}

func validFinalize() *transport.FinalizeRequest {
	rate := 0.081
	return &transport.FinalizeRequest{
		Reference:   "2023-DEMANDE-1",
		ServiceDate: "15.07.2025",
		Items: []transport.DocumentItem{
			{Description: "Nettoyage complet", Quantity: 2, Unit: "h", UnitPrice: 50},
		},
		VATRate: &rate,
	}
}

func newFinalizeFixture(store *fakeQuoteStore, gateway *fakeGateway, objects *fakeObjectStore) *Service {
	svc := New(store, gateway, render.New(&fakeEngine{}), objects, "documents", validator.New(), logger.Discard())
	svc.now = func() time.Time { return time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestFinalizeHappyPath(t *testing.T) {
	store := &fakeQuoteStore{}
	gateway := &fakeGateway{detail: readyDetail()}
	objects := &fakeObjectStore{}
	svc := newFinalizeFixture(store, gateway, objects)

	result, err := svc.Finalize(context.Background(), gateway.detail.ID, validFinalize())
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if result.QuoteNumber != "DEVIS-2025-001" {
		t.Fatalf("quote number = %q", result.QuoteNumber)
	}

	if len(store.quotes) != 1 {
		t.Fatalf("expected 1 quote row, got %d", len(store.quotes))
	}
	quote := store.quotes[0]
	if quote.Status != "sent" {
		t.Fatalf("quote status = %q, want sent", quote.Status)
	}
	if quote.Subtotal != 100 {
		t.Fatalf("subtotal = %v, want 100", quote.Subtotal)
	}
	if quote.VATAmount != 8.1 {
		t.Fatalf("vat = %v, want 8.1", quote.VATAmount)
	}
	if quote.Total != 108.1 {
		t.Fatalf("total = %v, want 108.1", quote.Total)
	}

	if len(objects.uploads) != 1 {
		t.Fatalf("expected 1 upload, got %d", len(objects.uploads))
	}
	if !strings.HasPrefix(objects.uploads[0], "devis/finalises/") {
		t.Fatalf("upload key %q should live under devis/finalises/", objects.uploads[0])
	}
	if !strings.Contains(objects.uploads[0], "2025-demande-1") {
		t.Fatalf("upload key %q should carry the normalized reference", objects.uploads[0])
	}

	if len(gateway.finalized) != 1 || gateway.finalized[0] != quote.ID {
		t.Fatalf("request should be transitioned with the quote id")
	}
}

func TestFinalizeMissingEmail(t *testing.T) {
	store := &fakeQuoteStore{}
	detail := readyDetail()
	detail.ClientEmail = ""
	gateway := &fakeGateway{detail: detail}
	objects := &fakeObjectStore{}
	svc := newFinalizeFixture(store, gateway, objects)

	_, err := svc.Finalize(context.Background(), detail.ID, validFinalize())
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
	fields, ok := appErr.Details.(apperr.FieldErrors)
	if !ok || len(fields["clientEmail"]) == 0 {
		t.Fatalf("expected clientEmail field error, got %v", appErr.Details)
	}

	if len(store.quotes) != 0 {
		t.Fatalf("no quote row should be written")
	}
	if len(objects.uploads) != 0 {
		t.Fatalf("nothing should be uploaded")
	}
	if len(gateway.finalized) != 0 {
		t.Fatalf("the request status must stay unchanged")
	}
}

func TestFinalizeRejectsNegativeUnitPrice(t *testing.T) {
	store := &fakeQuoteStore{}
	gateway := &fakeGateway{detail: readyDetail()}
	objects := &fakeObjectStore{}
	svc := newFinalizeFixture(store, gateway, objects)

	input := validFinalize()
	input.Items[0].UnitPrice = -50

	_, err := svc.Finalize(context.Background(), gateway.detail.ID, input)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
	if _, ok := appErr.Details.(apperr.FieldErrors); !ok {
		t.Fatalf("expected field errors, got %v", appErr.Details)
	}

	if len(store.quotes) != 0 {
		t.Fatalf("no quote row should be written")
	}
	if len(objects.uploads) != 0 {
		t.Fatalf("nothing should be uploaded")
	}
}

func TestFinalizeKeepsZeroVATRate(t *testing.T) {
	store := &fakeQuoteStore{}
	gateway := &fakeGateway{detail: readyDetail()}
	objects := &fakeObjectStore{}
	svc := newFinalizeFixture(store, gateway, objects)

	input := validFinalize()
	zero := 0.0
	input.VATRate = &zero

	if _, err := svc.Finalize(context.Background(), gateway.detail.ID, input); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	quote := store.quotes[0]
	if quote.VATRate != 0 {
		t.Fatalf("vat rate = %v, want 0", quote.VATRate)
	}
	if quote.VATAmount != 0 {
		t.Fatalf("vat amount = %v, want 0", quote.VATAmount)
	}
	if quote.Total != 100 {
		t.Fatalf("total = %v, want 100", quote.Total)
	}
}

func TestFinalizeDefaultsOmittedVATRate(t *testing.T) {
	store := &fakeQuoteStore{}
	gateway := &fakeGateway{detail: readyDetail()}
	svc := newFinalizeFixture(store, gateway, &fakeObjectStore{})

	input := validFinalize()
	input.VATRate = nil

	if _, err := svc.Finalize(context.Background(), gateway.detail.ID, input); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if store.quotes[0].VATRate != 0.081 {
		t.Fatalf("vat rate = %v, want the standard rate", store.quotes[0].VATRate)
	}
}

func TestFinalizeCounterFallback(t *testing.T) {
	store := &fakeQuoteStore{counterErr: errors.New("counter unavailable")}
	gateway := &fakeGateway{detail: readyDetail()}
	objects := &fakeObjectStore{}
	svc := newFinalizeFixture(store, gateway, objects)

	result, err := svc.Finalize(context.Background(), gateway.detail.ID, validFinalize())
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if !strings.HasPrefix(result.QuoteNumber, "DEVIS-") {
		t.Fatalf("fallback number = %q", result.QuoteNumber)
	}
	if strings.HasPrefix(result.QuoteNumber, "DEVIS-2025-") {
		t.Fatalf("fallback should be a timestamp number, got %q", result.QuoteNumber)
	}
}

func TestFinalizeTotalMismatchKeepsClientTotal(t *testing.T) {
	store := &fakeQuoteStore{}
	gateway := &fakeGateway{detail: readyDetail()}
	objects := &fakeObjectStore{}
	svc := newFinalizeFixture(store, gateway, objects)

	input := validFinalize()
	clientTotal := 120.0
	input.TotalAmount = &clientTotal

	if _, err := svc.Finalize(context.Background(), gateway.detail.ID, input); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if store.quotes[0].Total != 120 {
		t.Fatalf("client total must be trusted, got %v", store.quotes[0].Total)
	}
}

func TestFinalizeUnknownRequest(t *testing.T) {
	store := &fakeQuoteStore{}
	gateway := &fakeGateway{}
	svc := newFinalizeFixture(store, gateway, &fakeObjectStore{})

	_, err := svc.Finalize(context.Background(), uuid.New(), validFinalize())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSaveDocumentUploadsUnderTypePrefix(t *testing.T) {
	store := &fakeQuoteStore{}
	objects := &fakeObjectStore{}
	svc := newFinalizeFixture(store, &fakeGateway{}, objects)

	input := &transport.SaveDocumentRequest{
		Type: "invoice",
		Data: transport.DocumentPayload{
			Reference: "FACT-12",
			Client:    transport.DocumentClient{Name: "Régie Dupont"},
			Items: []transport.DocumentItem{
				{Description: "Conciergerie mensuelle", Quantity: 1, UnitPrice: 950},
			},
			VATRate: 0.081,
		},
	}

	path, err := svc.SaveDocument(context.Background(), input)
	if err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}
	if !strings.HasPrefix(path, "factures/") {
		t.Fatalf("invoice path %q should live under factures/", path)
	}

	quotePath, err := svc.SaveDocument(context.Background(), &transport.SaveDocumentRequest{
		Type: "quote",
		Data: input.Data,
	})
	if err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}
	if !strings.HasPrefix(quotePath, "devis/") {
		t.Fatalf("quote path %q should live under devis/", quotePath)
	}

	if len(store.quotes) != 0 {
		t.Fatalf("document save must not write quote rows")
	}
}
