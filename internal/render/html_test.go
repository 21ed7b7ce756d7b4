package render

import (
	"strings"
	"testing"
	"time"
)

func TestBuildDocumentHTMLSelfContained(t *testing.T) {
	doc := &Document{
		Type:      TypeQuote,
		Reference: "2025-DEMANDE-1",
		Client: Client{
			Name:    "Régie Dupont",
			Email:   "contact@dupont.ch",
			Address: "Rue du Lac 12, 1003 Lausanne",
		},
		VATRate: 0.081,
		Items: []Item{
			{Description: "Nettoyage de bureaux", Quantity: 2, Unit: "passages", UnitPrice: 50},
		},
		PaymentTerms: "30 jours net",
		GeneratedAt:  time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC),
	}

	html, err := BuildDocumentHTML(doc)
	if err != nil {
		t.Fatalf("BuildDocumentHTML returned error: %v", err)
	}

	for _, want := range []string{
		"Devis 2025-DEMANDE-1",
		"Régie Dupont",
		"CHF 100.00",
		"CHF 8.10",
		"CHF 108.10",
		"8.1%",
		"14.03.2025",
		"30 jours net",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered HTML missing %q", want)
		}
	}

	if strings.Contains(html, "<link") || strings.Contains(html, "src=\"http") {
		t.Error("rendered HTML must not reference external assets")
	}
}

func TestBuildDocumentHTMLEscapesUserText(t *testing.T) {
	doc := &Document{
		Type:      TypeInvoice,
		Reference: "2025-FACT-7",
		Client:    Client{Name: `<script>alert("x")</script>`},
		VATRate:   0.081,
		Items: []Item{
			{Description: "<img src=x onerror=alert(1)>", Quantity: 1, UnitPrice: 10},
		},
		Notes: "Accès par l'entrée <b>arrière</b>",
	}

	html, err := BuildDocumentHTML(doc)
	if err != nil {
		t.Fatalf("BuildDocumentHTML returned error: %v", err)
	}

	if strings.Contains(html, "<script>") || strings.Contains(html, "<img src=x") || strings.Contains(html, "<b>arrière</b>") {
		t.Fatal("user-supplied text must be escaped")
	}
	if !strings.Contains(html, "Facture 2025-FACT-7") {
		t.Fatal("invoice title missing")
	}
}
