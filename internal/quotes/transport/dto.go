// Package transport defines the request/response DTOs for the quotes
// module. The field names follow the document payload schema the staff
// assistant emits, so the portal can forward a generated payload verbatim.
package transport

// DocumentClient is the client block printed on a document.
type DocumentClient struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Address string `json:"address"`
}

// DocumentItem is one billable line. Total is optional and derived from
// quantity × unit price when absent.
type DocumentItem struct {
	Description string   `json:"description" validate:"required,max=500"`
	Quantity    float64  `json:"quantity" validate:"min=0"`
	Unit        string   `json:"unit" validate:"omitempty,max=50"`
	UnitPrice   float64  `json:"unit_price" validate:"min=0"`
	Total       *float64 `json:"total,omitempty"`
}

// DocumentPayload is the full renderer-facing document. The financial
// fields are pointers so an absent value is distinguishable from zero and
// can be filled from the fallback chain.
type DocumentPayload struct {
	Type         string         `json:"type" validate:"omitempty,oneof=quote invoice"`
	Reference    string         `json:"reference" validate:"omitempty,max=100"`
	Client       DocumentClient `json:"client"`
	ServiceDate  string         `json:"service_date" validate:"omitempty,max=100"`
	Items        []DocumentItem `json:"items" validate:"required,min=1,dive"`
	Subtotal     *float64       `json:"subtotal"`
	VATRate      float64        `json:"vat_rate" validate:"min=0,max=1"`
	VATAmount    *float64       `json:"vat_amount"`
	TotalAmount  *float64       `json:"total_amount"`
	PaymentTerms string         `json:"payment_terms" validate:"omitempty,max=500"`
	Notes        string         `json:"notes" validate:"omitempty,max=5000"`
}

// FinalizeRequest turns a reviewed quote request into a sent quote. The
// client block is not accepted here: it is snapshotted from the stored
// request so staff cannot finalize against divergent client data.
type FinalizeRequest struct {
	Reference    string         `json:"reference" validate:"omitempty,max=100"`
	ServiceDate  string         `json:"service_date" validate:"omitempty,max=100"`
	Items        []DocumentItem `json:"items" validate:"required,min=1,dive"`
	Subtotal     *float64       `json:"subtotal"`
	VATRate      *float64       `json:"vat_rate" validate:"omitempty,min=0,max=1"`
	TotalAmount  *float64       `json:"total_amount"`
	PaymentTerms string         `json:"payment_terms" validate:"omitempty,max=500"`
	Notes        string         `json:"notes" validate:"omitempty,max=5000"`
	FinalizedBy  string         `json:"finalized_by" validate:"omitempty,max=200"`
	Version      int            `json:"version" validate:"omitempty,min=1"`
}

// FinalizeResponse reports a finalized quote.
type FinalizeResponse struct {
	Success     bool   `json:"success"`
	QuoteID     string `json:"quoteId"`
	QuoteNumber string `json:"quoteNumber"`
	PDFPath     string `json:"pdfPath"`
}

// SaveDocumentRequest renders and archives a document without touching
// the database.
type SaveDocumentRequest struct {
	Type string          `json:"type" validate:"required,oneof=quote invoice"`
	Data DocumentPayload `json:"data" validate:"required"`
}

// SaveDocumentResponse reports the storage path of a saved document.
type SaveDocumentResponse struct {
	Success bool   `json:"success"`
	Path    string `json:"path"`
}
