// Package service implements the staff finalization pipeline and the
// document save action.
package service

import (
	"context"
	"fmt"
	"math"
	"path"
	"time"

	"conciergerie_backend/internal/quotes/repository"
	"conciergerie_backend/internal/quotes/transport"
	"conciergerie_backend/internal/render"
	requestsvc "conciergerie_backend/internal/requests/service"
	"conciergerie_backend/internal/storage"
	"conciergerie_backend/platform/apperr"
	"conciergerie_backend/platform/logger"
	"conciergerie_backend/platform/sanitize"
	"conciergerie_backend/platform/validator"

	"github.com/google/uuid"
)

const defaultVATRate = 0.081

// RequestGateway is the slice of the requests service the finalization
// pipeline needs. Satisfied by requests/service.Service.
type RequestGateway interface {
	GetByID(ctx context.Context, id uuid.UUID) (*requestsvc.RequestDetail, error)
	Finalize(ctx context.Context, id, quoteID uuid.UUID, expectedVersion int, metadata map[string]any) error
}

// FinalizeResult reports a finalized quote.
type FinalizeResult struct {
	QuoteID     uuid.UUID
	QuoteNumber string
	PDFPath     string
}

// Service implements quote finalization and document rendering/archiving.
type Service struct {
	repo     repository.Store
	requests RequestGateway
	renderer *render.Renderer
	store    storage.ObjectStore
	bucket   string
	val      *validator.Validator
	log      *logger.Logger

	now func() time.Time
}

// New creates the quotes service.
func New(repo repository.Store, requests RequestGateway, renderer *render.Renderer, store storage.ObjectStore, bucket string, val *validator.Validator, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		requests: requests,
		renderer: renderer,
		store:    store,
		bucket:   bucket,
		val:      val,
		log:      log,
		now:      time.Now,
	}
}

// Finalize runs the full pipeline for one quote request: preconditions,
// totals, PDF, archive, quote row, request transition. Steps run strictly
// in that order so nothing is uploaded or written before the inputs are
// known good, and the quote row exists before the request points at it.
func (s *Service) Finalize(ctx context.Context, requestID uuid.UUID, input *transport.FinalizeRequest) (*FinalizeResult, error) {
	if err := s.val.Struct(input); err != nil {
		return nil, apperr.ValidationFields("validation échouée", validator.Fields(err))
	}

	detail, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	fields := apperr.FieldErrors{}
	if detail.ClientEmail == "" {
		fields.Add("clientEmail", "l'email du client est requis pour finaliser")
	}
	if detail.ClientType == "" {
		fields.Add("clientType", "le type de client est requis pour finaliser")
	}
	if detail.ServiceType == "" {
		fields.Add("serviceType", "le type de prestation est requis pour finaliser")
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields("la demande est incomplète", fields)
	}

	now := s.now()

	number, err := s.repo.NextQuoteNumber(ctx, now.Year())
	if err != nil || number == "" {
		// The counter is an optimization, not a dependency. Timestamp
		// numbers stay unique without it.
		s.log.Warn("quote number counter unavailable, using timestamp fallback", "error", err)
		number = fmt.Sprintf("DEVIS-%d", now.UnixMilli())
	}

	reference := NormalizeReference(input.Reference, now)
	if reference == "" {
		reference = number
	}

	// An omitted rate defaults to the standard Swiss rate; an explicit 0
	// is a VAT-exempt quote and is kept as-is.
	vatRate := defaultVATRate
	if input.VATRate != nil {
		vatRate = *input.VATRate
	}

	items := resolveItems(input.Items)
	subtotal := render.Round2(sumItems(items))
	if input.Subtotal != nil {
		subtotal = render.Round2(*input.Subtotal)
	}
	vatAmount := render.Round2(subtotal * vatRate)
	total := render.Round2(subtotal + vatAmount)
	if input.TotalAmount != nil {
		total = render.Round2(*input.TotalAmount)
		if math.Abs(total-(subtotal+vatAmount)) > 0.01 {
			s.log.Warn("quote total disagrees with computed total",
				"request_id", requestID, "total", total, "computed", render.Round2(subtotal+vatAmount))
		}
	}

	doc := s.buildDocument(detail, input, reference, items, subtotal, vatRate, vatAmount, total, now)
	pdf, err := s.renderer.RenderDocument(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("render quote pdf: %w", err)
	}

	key := storage.ObjectKey(storage.PrefixDevisFinalises, reference, now)
	pdfPath, err := s.store.UploadPDF(ctx, s.bucket, key, pdf)
	if err != nil {
		return nil, fmt.Errorf("upload quote pdf: %w", err)
	}

	quote := s.buildQuote(detail, input, number, items, subtotal, vatRate, vatAmount, total, pdfPath, now)
	if err := s.repo.Insert(ctx, quote); err != nil {
		return nil, err
	}

	expected := input.Version
	if expected == 0 {
		expected = detail.Version
	}
	metadata := map[string]any{
		"quote_number": number,
		"reference":    reference,
		"pdf_path":     pdfPath,
	}
	if input.ServiceDate != "" {
		metadata["service_date"] = input.ServiceDate
	}
	if input.FinalizedBy != "" {
		metadata["finalized_by"] = sanitize.Text(input.FinalizedBy)
	}
	if err := s.requests.Finalize(ctx, requestID, quote.ID, expected, metadata); err != nil {
		return nil, err
	}

	s.log.Info("quote finalized", "request_id", requestID, "quote_number", number)
	return &FinalizeResult{QuoteID: quote.ID, QuoteNumber: number, PDFPath: pdfPath}, nil
}

// SaveDocument renders a document payload and archives the PDF under the
// prefix matching its type. Nothing is written to the database.
func (s *Service) SaveDocument(ctx context.Context, input *transport.SaveDocumentRequest) (string, error) {
	if err := s.val.Struct(input); err != nil {
		return "", apperr.ValidationFields("validation échouée", validator.Fields(err))
	}

	now := s.now()
	doc := payloadToDocument(&input.Data, now)
	doc.Type = render.TypeQuote
	prefix := storage.PrefixDevis
	if input.Type == "invoice" {
		doc.Type = render.TypeInvoice
		prefix = storage.PrefixFactures
	}

	pdf, err := s.renderer.RenderDocument(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("render document pdf: %w", err)
	}

	name := doc.Reference
	if name == "" {
		name = "document"
	}
	key := storage.ObjectKey(prefix, name, now)
	pdfPath, err := s.store.UploadPDF(ctx, s.bucket, key, pdf)
	if err != nil {
		return "", fmt.Errorf("upload document pdf: %w", err)
	}

	s.log.Info("document saved", "type", input.Type, "path", pdfPath)
	return pdfPath, nil
}

func (s *Service) buildDocument(detail *requestsvc.RequestDetail, input *transport.FinalizeRequest, reference string, items []repository.QuoteItem, subtotal, vatRate, vatAmount, total float64, now time.Time) *render.Document {
	doc := &render.Document{
		Type:      render.TypeQuote,
		Reference: reference,
		Client: render.Client{
			Name:    deref(detail.ClientName),
			Email:   detail.ClientEmail,
			Phone:   deref(detail.ClientPhone),
			Company: deref(detail.ClientCompany),
			Address: deref(detail.ClientAddress),
		},
		ServiceDate:  input.ServiceDate,
		VATRate:      vatRate,
		Subtotal:     &subtotal,
		VATAmount:    &vatAmount,
		Total:        &total,
		PaymentTerms: input.PaymentTerms,
		Notes:        sanitize.Text(input.Notes),
		GeneratedAt:  now,
	}
	doc.Items = make([]render.Item, len(items))
	for i, item := range items {
		itemTotal := item.Total
		doc.Items[i] = render.Item{
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			Total:       &itemTotal,
		}
	}
	return doc
}

func (s *Service) buildQuote(detail *requestsvc.RequestDetail, input *transport.FinalizeRequest, number string, items []repository.QuoteItem, subtotal, vatRate, vatAmount, total float64, pdfPath string, now time.Time) *repository.Quote {
	requestID := detail.ID
	filename := path.Base(pdfPath)
	return &repository.Quote{
		ID:            uuid.New(),
		QuoteNumber:   number,
		RequestID:     &requestID,
		ClientName:    detail.ClientName,
		ClientEmail:   detail.ClientEmail,
		ClientPhone:   detail.ClientPhone,
		ClientCompany: detail.ClientCompany,
		ClientAddress: detail.ClientAddress,
		ServiceType:   &detail.ServiceType,
		ServiceDate:   optional(input.ServiceDate),
		Items:         items,
		Subtotal:      subtotal,
		VATRate:       vatRate,
		VATAmount:     vatAmount,
		Total:         total,
		PaymentTerms:  optional(sanitize.Text(input.PaymentTerms)),
		Notes:         optional(sanitize.Text(input.Notes)),
		PDFPath:       &pdfPath,
		PDFFilename:   &filename,
		Status:        "sent",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// resolveItems fills absent line totals from quantity × unit price.
func resolveItems(items []transport.DocumentItem) []repository.QuoteItem {
	resolved := make([]repository.QuoteItem, len(items))
	for i, item := range items {
		total := render.Round2(item.Quantity * item.UnitPrice)
		if item.Total != nil {
			total = render.Round2(*item.Total)
		}
		resolved[i] = repository.QuoteItem{
			Description: sanitize.Text(item.Description),
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			Total:       total,
		}
	}
	return resolved
}

func sumItems(items []repository.QuoteItem) float64 {
	var sum float64
	for _, item := range items {
		sum += item.Total
	}
	return sum
}

func payloadToDocument(payload *transport.DocumentPayload, now time.Time) *render.Document {
	doc := &render.Document{
		Type:      payload.Type,
		Reference: payload.Reference,
		Client: render.Client{
			Name:    payload.Client.Name,
			Email:   payload.Client.Email,
			Phone:   payload.Client.Phone,
			Company: payload.Client.Company,
			Address: payload.Client.Address,
		},
		ServiceDate:  payload.ServiceDate,
		Subtotal:     payload.Subtotal,
		VATRate:      payload.VATRate,
		VATAmount:    payload.VATAmount,
		Total:        payload.TotalAmount,
		PaymentTerms: payload.PaymentTerms,
		Notes:        sanitize.Text(payload.Notes),
		GeneratedAt:  now,
	}
	doc.Items = make([]render.Item, len(payload.Items))
	for i, item := range payload.Items {
		doc.Items[i] = render.Item{
			Description: sanitize.Text(item.Description),
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		}
	}
	return doc
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
