// Package repository provides database operations for quotes and the
// per-year quote-number counter.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"conciergerie_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuoteItem is one stored billable line. All values are resolved by the
// time a quote is written; there are no optional fields here.
type QuoteItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit,omitempty"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

// Quote is the database model for one finalized quote. Rows are
// insert-only: the quote is the immutable record of what was sent.
type Quote struct {
	ID            uuid.UUID      `json:"id"`
	QuoteNumber   string         `json:"quoteNumber"`
	RequestID     *uuid.UUID     `json:"requestId,omitempty"`
	ClientName    *string        `json:"clientName,omitempty"`
	ClientEmail   string         `json:"clientEmail"`
	ClientPhone   *string        `json:"clientPhone,omitempty"`
	ClientCompany *string        `json:"clientCompany,omitempty"`
	ClientAddress *string        `json:"clientAddress,omitempty"`
	ServiceType   *string        `json:"serviceType,omitempty"`
	ServiceDate   *string        `json:"serviceDate,omitempty"`
	Items         []QuoteItem    `json:"items"`
	Subtotal      float64        `json:"subtotal"`
	VATRate       float64        `json:"vatRate"`
	VATAmount     float64        `json:"vatAmount"`
	Total         float64        `json:"total"`
	PaymentTerms  *string        `json:"paymentTerms,omitempty"`
	Notes         *string        `json:"notes,omitempty"`
	PDFPath       *string        `json:"pdfPath,omitempty"`
	PDFFilename   *string        `json:"pdfFilename,omitempty"`
	Status        string         `json:"status"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// Store is the persistence surface of the quotes service.
type Store interface {
	// NextQuoteNumber atomically draws the next sequential number for the
	// given year.
	NextQuoteNumber(ctx context.Context, year int) (string, error)
	Insert(ctx context.Context, quote *Quote) error
	GetByID(ctx context.Context, id uuid.UUID) (*Quote, error)
}

const quoteNotFoundMsg = "devis introuvable"

// Repository provides database operations for quotes.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates the quotes repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// NextQuoteNumber draws the next number from the year-keyed counter with a
// single atomic upsert, so concurrent finalizations never collide.
func (r *Repository) NextQuoteNumber(ctx context.Context, year int) (string, error) {
	var nextNum int
	query := `
		INSERT INTO quote_counters (year, last_number)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_number = quote_counters.last_number + 1
		RETURNING last_number`

	if err := r.pool.QueryRow(ctx, query, year).Scan(&nextNum); err != nil {
		return "", fmt.Errorf("generate quote number: %w", err)
	}

	return fmt.Sprintf("DEVIS-%d-%03d", year, nextNum), nil
}

// Insert writes one quote row.
func (r *Repository) Insert(ctx context.Context, quote *Quote) error {
	items, err := json.Marshal(quote.Items)
	if err != nil {
		return fmt.Errorf("marshal quote items: %w", err)
	}
	metadata, err := marshalMap(quote.Metadata)
	if err != nil {
		return fmt.Errorf("marshal quote metadata: %w", err)
	}

	query := `
		INSERT INTO quotes (
			id, quote_number, request_id,
			client_name, client_email, client_phone, client_company, client_address,
			service_type, service_date, items,
			subtotal, vat_rate, vat_amount, total,
			payment_terms, notes, pdf_path, pdf_filename,
			status, metadata, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23
		)`

	_, err = r.pool.Exec(ctx, query,
		quote.ID, quote.QuoteNumber, quote.RequestID,
		quote.ClientName, quote.ClientEmail, quote.ClientPhone, quote.ClientCompany, quote.ClientAddress,
		quote.ServiceType, quote.ServiceDate, items,
		quote.Subtotal, quote.VATRate, quote.VATAmount, quote.Total,
		quote.PaymentTerms, quote.Notes, quote.PDFPath, quote.PDFFilename,
		quote.Status, metadata, quote.CreatedAt, quote.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

// GetByID returns one quote.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Quote, error) {
	query := `
		SELECT id, quote_number, request_id,
		       client_name, client_email, client_phone, client_company, client_address,
		       service_type, service_date, items,
		       subtotal, vat_rate, vat_amount, total,
		       payment_terms, notes, pdf_path, pdf_filename,
		       status, metadata, created_at, updated_at
		FROM quotes
		WHERE id = $1`

	var (
		quote    Quote
		items    []byte
		metadata []byte
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&quote.ID, &quote.QuoteNumber, &quote.RequestID,
		&quote.ClientName, &quote.ClientEmail, &quote.ClientPhone, &quote.ClientCompany, &quote.ClientAddress,
		&quote.ServiceType, &quote.ServiceDate, &items,
		&quote.Subtotal, &quote.VATRate, &quote.VATAmount, &quote.Total,
		&quote.PaymentTerms, &quote.Notes, &quote.PDFPath, &quote.PDFFilename,
		&quote.Status, &metadata, &quote.CreatedAt, &quote.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(quoteNotFoundMsg)
		}
		return nil, fmt.Errorf("get quote: %w", err)
	}

	if len(items) > 0 {
		if err := json.Unmarshal(items, &quote.Items); err != nil {
			return nil, fmt.Errorf("unmarshal quote items: %w", err)
		}
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &quote.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal quote metadata: %w", err)
		}
	}
	return &quote, nil
}

func marshalMap(m map[string]any) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}
