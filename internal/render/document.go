// Package render builds self-contained HTML documents (devis/factures) and
// converts them to PDF through a headless browser or a Gotenberg instance.
package render

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Document types.
const (
	TypeQuote   = "quote"
	TypeInvoice = "invoice"
)

// Client is the client sub-record printed on a document.
type Client struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Address string
}

// Item is one billable line. Total is optional; when absent it is derived
// from Quantity × UnitPrice.
type Item struct {
	Description string
	Quantity    float64
	Unit        string
	UnitPrice   float64
	Total       *float64
}

// Document is the renderer-facing payload shared by the chat save path and
// the staff finalization path. The derivable financial fields are pointers
// so "absent" is distinguishable from zero.
type Document struct {
	Type         string
	Reference    string
	Client       Client
	ServiceDate  string
	Items        []Item
	Subtotal     *float64
	VATRate      float64
	VATAmount    *float64
	Total        *float64
	PaymentTerms string
	Notes        string
	GeneratedAt  time.Time
	LogoDataURI  string
}

// Round2 rounds to 2 decimals, the precision of every stored financial field.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// NormalizeTotals fills every absent financial field from the fallback
// chain: item total ← quantity × unit price, subtotal ← sum of item totals,
// VAT amount ← subtotal × VAT rate, total ← subtotal + VAT amount.
// Explicitly supplied values are trusted and never recomputed.
func NormalizeTotals(d *Document) {
	for i := range d.Items {
		if d.Items[i].Total == nil {
			total := Round2(d.Items[i].Quantity * d.Items[i].UnitPrice)
			d.Items[i].Total = &total
		}
	}

	if d.Subtotal == nil {
		var sum float64
		for i := range d.Items {
			sum += *d.Items[i].Total
		}
		sum = Round2(sum)
		d.Subtotal = &sum
	}

	if d.VATAmount == nil {
		vat := Round2(*d.Subtotal * d.VATRate)
		d.VATAmount = &vat
	}

	if d.Total == nil {
		total := Round2(*d.Subtotal + *d.VATAmount)
		d.Total = &total
	}
}

// FormatCHF formats an amount in the fixed fr-CH style used on every
// document: apostrophe thousands grouping, 2 decimals, CHF prefix.
func FormatCHF(v float64) string {
	neg := v < 0
	s := strconv.FormatFloat(math.Abs(Round2(v)), 'f', 2, 64)

	intPart, fracPart, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('\'')
		}
		b.WriteRune(digit)
	}

	out := "CHF " + b.String() + "." + fracPart
	if neg {
		out = "CHF -" + b.String() + "." + fracPart
	}
	return out
}
