package render

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// documentTemplate is a fully self-contained page: inline styles only, the
// logo travels as a data URI, no external assets. User-supplied text passes
// through html/template escaping.
var documentTemplate = template.Must(template.New("document").Funcs(template.FuncMap{
	"chf": FormatCHF,
	"pct": func(rate float64) string { return fmt.Sprintf("%.1f%%", rate*100) },
	"deref": func(v *float64) float64 {
		if v == nil {
			return 0
		}
		return *v
	},
}).Parse(`<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<title>{{.Title}} {{.Doc.Reference}}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #1a1a2e; margin: 0; padding: 40px; font-size: 12px; }
  .header { display: flex; justify-content: space-between; align-items: flex-start; margin-bottom: 32px; }
  .logo { max-height: 64px; }
  h1 { font-size: 22px; margin: 0 0 4px 0; color: #0f3460; }
  .meta { color: #555; font-size: 11px; }
  .client { margin: 24px 0; padding: 12px 16px; background: #f4f6fb; border-radius: 6px; }
  table { width: 100%; border-collapse: collapse; margin-top: 16px; }
  th { text-align: left; font-size: 11px; text-transform: uppercase; color: #0f3460; border-bottom: 2px solid #0f3460; padding: 6px 8px; }
  th.num, td.num { text-align: right; }
  td { padding: 8px; border-bottom: 1px solid #e3e3e3; vertical-align: top; }
  .totals { margin-top: 16px; margin-left: auto; width: 45%; }
  .totals td { border: none; padding: 4px 8px; }
  .totals .grand td { font-weight: bold; font-size: 14px; border-top: 2px solid #0f3460; }
  .section { margin-top: 24px; }
  .section h2 { font-size: 12px; text-transform: uppercase; color: #0f3460; margin-bottom: 4px; }
  .footer { margin-top: 48px; font-size: 10px; color: #888; text-align: center; }
</style>
</head>
<body>
  <div class="header">
    <div>
      <h1>{{.Title}} {{.Doc.Reference}}</h1>
      <div class="meta">Généré le {{.Generated}}{{if .Doc.ServiceDate}} · Date de prestation&nbsp;: {{.Doc.ServiceDate}}{{end}}</div>
    </div>
    {{if .Logo}}<img class="logo" src="{{.Logo}}" alt="logo">{{end}}
  </div>

  <div class="client">
    <strong>{{.Doc.Client.Name}}</strong>{{if .Doc.Client.Company}}<br>{{.Doc.Client.Company}}{{end}}
    {{if .Doc.Client.Address}}<br>{{.Doc.Client.Address}}{{end}}
    {{if .Doc.Client.Email}}<br>{{.Doc.Client.Email}}{{end}}
    {{if .Doc.Client.Phone}}<br>{{.Doc.Client.Phone}}{{end}}
  </div>

  <table>
    <thead>
      <tr>
        <th>Description</th>
        <th class="num">Quantité</th>
        <th class="num">Prix unitaire</th>
        <th class="num">Total</th>
      </tr>
    </thead>
    <tbody>
      {{range .Doc.Items}}
      <tr>
        <td>{{.Description}}</td>
        <td class="num">{{.Quantity}}{{if .Unit}} {{.Unit}}{{end}}</td>
        <td class="num">{{chf .UnitPrice}}</td>
        <td class="num">{{chf (deref .Total)}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>

  <table class="totals">
    <tr><td>Sous-total</td><td class="num">{{chf (deref .Doc.Subtotal)}}</td></tr>
    <tr><td>TVA ({{pct .Doc.VATRate}})</td><td class="num">{{chf (deref .Doc.VATAmount)}}</td></tr>
    <tr class="grand"><td>Total</td><td class="num">{{chf (deref .Doc.Total)}}</td></tr>
  </table>

  {{if .Doc.PaymentTerms}}
  <div class="section">
    <h2>Conditions de paiement</h2>
    <div>{{.Doc.PaymentTerms}}</div>
  </div>
  {{end}}

  {{if .Doc.Notes}}
  <div class="section">
    <h2>Remarques</h2>
    <div>{{.Doc.Notes}}</div>
  </div>
  {{end}}

  <div class="footer">Document généré automatiquement — merci de votre confiance.</div>
</body>
</html>`))

type templateData struct {
	Doc       *Document
	Title     string
	Generated string
	// Logo is typed so html/template keeps the data URI intact.
	Logo template.URL
}

// BuildDocumentHTML normalizes the document's totals and renders the full
// HTML page, ready for headless conversion.
func BuildDocumentHTML(doc *Document) (string, error) {
	NormalizeTotals(doc)

	generatedAt := doc.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	title := "Devis"
	if doc.Type == TypeInvoice {
		title = "Facture"
	}

	var buf bytes.Buffer
	err := documentTemplate.Execute(&buf, templateData{
		Doc:       doc,
		Title:     title,
		Generated: generatedAt.Format("02.01.2006"),
		Logo:      template.URL(doc.LogoDataURI),
	})
	if err != nil {
		return "", fmt.Errorf("render document template: %w", err)
	}
	return buf.String(), nil
}
