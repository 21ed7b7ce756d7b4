package render

import "context"

// Engine converts a finished HTML page to PDF bytes.
type Engine interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

// Renderer pairs the HTML builder with a PDF engine.
type Renderer struct {
	engine Engine
}

// New creates a renderer backed by the given engine.
func New(engine Engine) *Renderer {
	return &Renderer{engine: engine}
}

// RenderDocument builds the document HTML and converts it to PDF.
func (r *Renderer) RenderDocument(ctx context.Context, doc *Document) ([]byte, error) {
	html, err := BuildDocumentHTML(doc)
	if err != nil {
		return nil, err
	}
	return r.engine.RenderPDF(ctx, html)
}
